package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/printforge/slicerd/pkg/profile"
	"github.com/printforge/slicerd/pkg/slicer"
)

// truthyValues are the accepted spellings of an enabled form toggle.
var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"on":   true,
	"yes":  true,
}

// Slice serves the slice submission and status endpoints.
type Slice struct {
	orchestrator *slicer.Orchestrator
	logger       *zap.Logger
}

// NewSlice returns the slice endpoint set.
func NewSlice(orchestrator *slicer.Orchestrator, logger *zap.Logger) *Slice {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slice{orchestrator: orchestrator, logger: logger}
}

// Status serves GET /api/slice/status. Never blocks on the execution slot.
func (h *Slice) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Status())
}

// Submit serves POST /api/slice: a multipart upload with a "model" part
// and printer/process/filament form fields naming stored profiles. The
// response body is the produced GCODE; slice diagnostics travel in
// headers so the artifact streams unwrapped.
func (h *Slice) Submit(w http.ResponseWriter, r *http.Request) {
	model, filename, err := readUpload(r, "model")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	printer := strings.TrimSpace(r.FormValue("printer"))
	process := strings.TrimSpace(r.FormValue("process"))
	filament := strings.TrimSpace(r.FormValue("filament"))
	if printer == "" || process == "" || filament == "" {
		respondWithError(w, r, fmt.Errorf("%w: all three profile names required: printer, process, filament", profile.ErrInvalidName))
		return
	}

	req := slicer.Request{
		ModelName: filename,
		Model:     model,
		Printer:   printer,
		Process:   process,
		Filament:  filament,
		Orient:    truthyValues[strings.ToLower(strings.TrimSpace(r.FormValue("orient")))],
		BedType:   strings.TrimSpace(r.FormValue("bed_type")),
	}

	result, err := h.orchestrator.Submit(r.Context(), req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.GCodeName))
	w.Header().Set("X-Slice-Time-Seconds", fmt.Sprintf("%.2f", result.Elapsed.Seconds()))
	w.Header().Set("X-Slicer-Stdout", result.StdoutExcerpt)
	_, _ = w.Write(result.GCode)
}
