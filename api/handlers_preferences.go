package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/typedprefs"
)

// preferenceResponse is the JSON view of one descriptor and its current value.
// Encrypted values are never returned.
type preferenceResponse struct {
	Key           string               `json:"key"`
	Name          string               `json:"name"`
	Type          typedprefs.ValueType `json:"type"`
	Category      string               `json:"category,omitempty"`
	Description   string               `json:"description,omitempty"`
	DefaultSource string               `json:"default_source"`
	ResourceID    string               `json:"resource_id,omitempty"`
	Default       any                  `json:"default"`
	DefaultError  string               `json:"default_error,omitempty"`
	Value         any                  `json:"value"`
	ValueError    string               `json:"value_error,omitempty"`
	Domain        []string             `json:"domain,omitempty"`
	Entries       []string             `json:"entries,omitempty"`
	Encrypted     bool                 `json:"encrypted,omitempty"`
}

type setPreferenceRequest struct {
	Value json.RawMessage `json:"value"`
}

// describe builds the view of d. The returned error is the value read failure,
// also reported in ValueError.
func describe(ctx context.Context, d *typedprefs.Descriptor) (preferenceResponse, error) {
	resp := preferenceResponse{
		Key:           d.Key(),
		Name:          d.Name(),
		Type:          d.Type(),
		Category:      d.Category(),
		Description:   d.Description(),
		DefaultSource: d.DefaultSource().String(),
		Encrypted:     d.IsEncrypted(),
	}
	if id, ok := d.ResourceID(); ok {
		resp.ResourceID = fmt.Sprintf("0x%08x", id)
	}

	if v, err := d.DefaultValue(); err != nil {
		resp.DefaultError = err.Error()
	} else {
		resp.Default = v
	}

	var valueErr error
	if !d.IsEncrypted() {
		if v, err := d.Get(ctx); err != nil {
			valueErr = err
			resp.ValueError = err.Error()
		} else {
			resp.Value = v
		}
	}

	if domain, err := d.Domain(); err == nil {
		resp.Domain = domain
	}
	if entries, err := d.Entries(); err == nil {
		resp.Entries = entries
	}
	return resp, valueErr
}

// lookup resolves the {key} URL parameter, writing an error response on failure.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*typedprefs.Descriptor, bool) {
	if !s.registry.Initialized() {
		s.respondWithError(w, r, http.StatusServiceUnavailable, "Registry not initialized", typedprefs.ErrNotInitialized)
		return nil, false
	}

	key := chi.URLParam(r, "key")
	d, ok := s.registry.Lookup(key)
	if !ok {
		s.respondWithError(w, r, http.StatusNotFound, "Preference not defined",
			fmt.Errorf("%w: %q", typedprefs.ErrPreferenceNotDefined, key))
		return nil, false
	}
	return d, true
}

// handleListPreferences returns every descriptor in declaration order.
func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	if !s.registry.Initialized() {
		s.respondWithError(w, r, http.StatusServiceUnavailable, "Registry not initialized", typedprefs.ErrNotInitialized)
		return
	}

	descriptors := s.registry.Descriptors()
	prefs := make([]preferenceResponse, 0, len(descriptors))
	for _, d := range descriptors {
		resp, _ := describe(r.Context(), d)
		prefs = append(prefs, resp)
	}
	s.respondWithJSON(w, r, http.StatusOK, prefs)
}

// handleGetPreference returns one descriptor and its current value.
func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}

	resp, err := describe(r.Context(), d)
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to read preference", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, resp)
}

// handleSetPreference stores the value of a {"value": ...} body.
func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req setPreferenceRequest
	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if len(req.Value) == 0 {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload",
			fmt.Errorf("%w: missing value", typedprefs.ErrInvalidInput))
		return
	}

	value, err := typedprefs.DecodeValue(d.Type(), req.Value)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid preference value", err)
		return
	}

	if err := d.SetValue(r.Context(), value); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to set preference", err)
		return
	}

	resp, _ := describe(r.Context(), d)
	s.respondWithJSON(w, r, http.StatusOK, resp)
}

// handleClearPreference removes the stored value.
func (s *Server) handleClearPreference(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := d.Clear(r.Context()); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to clear preference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps registry errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, typedprefs.ErrPreferenceNotDefined):
		return http.StatusNotFound
	case errors.Is(err, typedprefs.ErrStore):
		return http.StatusInternalServerError
	case errors.Is(err, typedprefs.ErrResolution),
		errors.Is(err, typedprefs.ErrTypeMismatch):
		// Defaults come from the server's resource table, not from the request.
		return http.StatusInternalServerError
	case errors.Is(err, typedprefs.ErrValidation),
		errors.Is(err, typedprefs.ErrInvalidValue),
		errors.Is(err, typedprefs.ErrInvalidType),
		errors.Is(err, typedprefs.ErrInvalidInput),
		errors.Is(err, typedprefs.ErrSerialization):
		return http.StatusBadRequest
	case errors.Is(err, typedprefs.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]string{"message": message}
	if err != nil {
		body["details"] = err.Error()
	}
	s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	respondWithJSONRaw(w, status, map[string]any{"error": body})
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw writes payload without logging, for error responses.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
