package handlers

import (
	"fmt"
	"net/http"
)

type helpExample struct {
	Title   string `json:"title"`
	Command string `json:"command"`
}

// Help serves GET /api/help: copy-pasteable curl examples for every
// endpoint, built against the request's own host.
func Help(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := fmt.Sprintf("%s://%s", scheme, r.Host)

	examples := []helpExample{
		{"Health check", fmt.Sprintf("curl %s/api/health", base)},
		{"List printer profiles", fmt.Sprintf("curl %s/api/profiles/printer", base)},
		{"Upload a printer profile", fmt.Sprintf("curl -X POST %s/api/profiles/printer -F 'file=@printer.json' -F 'name=my-printer'", base)},
		{"Upload a process profile", fmt.Sprintf("curl -X POST %s/api/profiles/process -F 'file=@process.json' -F 'name=my-process'", base)},
		{"Upload a filament profile", fmt.Sprintf("curl -X POST %s/api/profiles/filament -F 'file=@filament.json' -F 'name=my-filament'", base)},
		{"Download a profile", fmt.Sprintf("curl -O %s/api/profiles/printer/my-printer", base)},
		{"Replace a profile", fmt.Sprintf("curl -X PUT %s/api/profiles/printer/my-printer -F 'file=@printer.json'", base)},
		{"Rename a profile", fmt.Sprintf(`curl -X PATCH %s/api/profiles/printer/my-printer -H 'Content-Type: application/json' -d '{"new_name": "new-name"}'`, base)},
		{"Delete a profile", fmt.Sprintf("curl -X DELETE %s/api/profiles/printer/my-printer", base)},
		{"Check slicer status", fmt.Sprintf("curl %s/api/slice/status", base)},
		{"Slice a model", fmt.Sprintf("curl -X POST %s/api/slice -F 'model=@model.stl' -F 'printer=my-printer' -F 'process=my-process' -F 'filament=my-filament' -o output.gcode", base)},
		{"Slice with bed type and auto-orient", fmt.Sprintf("curl -X POST %s/api/slice -F 'model=@model.stl' -F 'printer=my-printer' -F 'process=my-process' -F 'filament=my-filament' -F 'bed_type=Textured PEI Plate' -F 'orient=1' -o output.gcode", base)},
	}

	writeJSON(w, http.StatusOK, map[string]any{"examples": examples})
}
