// Package handlers implements the HTTP endpoints of the slicer service.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/printforge/slicerd/internal/errors"
	"github.com/printforge/slicerd/pkg/catalog"
	"github.com/printforge/slicerd/pkg/profile"
)

// multipartMemoryLimit is the in-memory parse budget; larger parts spill
// to temp files.
const multipartMemoryLimit = 32 << 20

// Profiles serves the profile store CRUD endpoints.
type Profiles struct {
	store  *profile.Store
	system *catalog.Catalog
	logger *zap.Logger
}

// NewProfiles returns the profile endpoint set.
func NewProfiles(store *profile.Store, system *catalog.Catalog, logger *zap.Logger) *Profiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiles{store: store, system: system, logger: logger}
}

func categoryParam(r *http.Request) (profile.Category, error) {
	return profile.ParseCategory(chi.URLParam(r, "category"))
}

// nameParam sanitizes the {name} path segment. Stored names are always in
// sanitized form, so this keeps lookups consistent and write paths unable
// to create files under unsanitized names.
func nameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	name := profile.SanitizeName(raw)
	if name == "" {
		return "", fmt.Errorf("%w: %q", profile.ErrInvalidName, raw)
	}
	return name, nil
}

// List serves GET /api/profiles/{category}.
func (h *Profiles) List(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	infos, err := h.store.List(cat)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": cat,
		"profiles": infos,
	})
}

// Create serves POST /api/profiles/{category}: a multipart upload with a
// "file" part and an optional "name" field. The document is normalized
// before it is persisted; a name collision is a conflict, not a replace.
func (h *Profiles) Create(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	data, filename, err := readUpload(r, "file")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	normalized, err := h.normalize(data, cat)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	name = profile.SanitizeName(name)
	if name == "" {
		respondWithError(w, r, fmt.Errorf("%w: could not derive a profile name from the upload", profile.ErrInvalidName))
		return
	}

	info, err := h.store.Create(cat, name, normalized)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile created",
		zap.String("category", string(cat)),
		zap.String("name", name))
	writeJSON(w, http.StatusCreated, info)
}

// Get serves GET /api/profiles/{category}/{name}: the stored document.
func (h *Profiles) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	data, err := h.store.Read(cat, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
	_, _ = w.Write(data)
}

// Replace serves PUT /api/profiles/{category}/{name}: upsert semantics.
// The path name is sanitized before use so Replace can never store a file
// whose name differs from its sanitized form.
func (h *Profiles) Replace(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name, err := nameParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	data, _, err := readUpload(r, "file")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	normalized, err := h.normalize(data, cat)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	info, err := h.store.Put(cat, name, normalized)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile replaced",
		zap.String("category", string(cat)),
		zap.String("name", name))
	writeJSON(w, http.StatusOK, info)
}

// Rename serves PATCH /api/profiles/{category}/{name} with a JSON body
// carrying new_name.
func (h *Profiles) Rename(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name, err := nameParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var body struct {
		NewName string `json:"new_name"`
	}
	if err := decodeJSONBody(r, &body); err != nil || body.NewName == "" {
		respondWithError(w, r, fmt.Errorf("%w: JSON body with new_name required", profile.ErrInvalidDocument))
		return
	}

	newName := profile.SanitizeName(body.NewName)
	if newName == "" {
		respondWithError(w, r, fmt.Errorf("%w: %q", profile.ErrInvalidName, body.NewName))
		return
	}

	info, err := h.store.Rename(cat, name, newName)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile renamed",
		zap.String("category", string(cat)),
		zap.String("from", name),
		zap.String("to", newName))
	writeJSON(w, http.StatusOK, info)
}

// Delete serves DELETE /api/profiles/{category}/{name}.
func (h *Profiles) Delete(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	if err := h.store.Delete(cat, name); err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile deleted",
		zap.String("category", string(cat)),
		zap.String("name", name))
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":  name,
		"category": cat,
	})
}

// normalize validates the upload and stamps engine metadata.
func (h *Profiles) normalize(data []byte, cat profile.Category) ([]byte, error) {
	if err := profile.ValidateDocument(data); err != nil {
		return nil, err
	}
	return profile.Normalize(data, cat, h.system, h.logger)
}

// readUpload extracts one multipart file part, mapping an oversized body
// to the payload-too-large envelope.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", errPayloadTooLarge(maxErr.Limit)
		}
		return nil, "", fmt.Errorf("%w: multipart form expected with field %q", profile.ErrInvalidDocument, field)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: no file provided, use multipart field %q", profile.ErrInvalidDocument, field)
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		return nil, "", fmt.Errorf("%w: empty filename", profile.ErrInvalidDocument)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", errPayloadTooLarge(maxErr.Limit)
		}
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, nil
}

func errPayloadTooLarge(limit int64) error {
	return &apperrors.PayloadTooLargeError{Limit: limit}
}

func decodeJSONBody(r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	return json.NewDecoder(r.Body).Decode(v)
}
