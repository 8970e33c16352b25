// Package api provides HTTP API handlers for the halo tuning profiles.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/store"
)

// Tuner is the running application a profile can be applied to.
type Tuner interface {
	// MarshalTuning returns the current tuning as YAML.
	MarshalTuning() ([]byte, error)
	// ApplyTuning validates and applies a YAML tuning overlay.
	ApplyTuning(data []byte) error
}

// ProfileHandler handles HTTP requests for profile resources.
type ProfileHandler struct {
	store *store.Store
	tuner Tuner
}

// NewProfileHandler creates a ProfileHandler. tuner may be nil, in which
// case profiles can be stored but not activated.
func NewProfileHandler(s *store.Store, tuner Tuner) *ProfileHandler {
	return &ProfileHandler{store: s, tuner: tuner}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles, /api/profiles/{id} or
	// /api/profiles/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type profileRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	// Tuning is a YAML overlay; empty on create captures the running
	// tuning.
	Tuning *string `json:"tuning"`
}

type profileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tuning      string `json:"tuning"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
	Active   string            `json:"active,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile, activeID string) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Tuning:      p.Tuning,
		Active:      p.ID == activeID,
		CreatedAt:   p.CreatedAt.Format(timeLayout),
		UpdatedAt:   p.UpdatedAt.Format(timeLayout),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validateTuning checks a tuning overlay against the stock configuration.
func validateTuning(tuning string) error {
	return config.Default().ApplyTuning([]byte(tuning))
}

func (h *ProfileHandler) activeID() string {
	p, err := h.store.Profiles().Active()
	if err != nil {
		return ""
	}
	return p.ID
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	active := h.activeID()
	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
		Active:   active,
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p, active))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile, h.activeID()))
}

// create handles POST /api/profiles and creates a new profile.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	profile := &store.Profile{Name: req.Name}
	if req.Description != nil {
		profile.Description = *req.Description
	}

	switch {
	case req.Tuning != nil && *req.Tuning != "":
		profile.Tuning = *req.Tuning
	case h.tuner != nil:
		data, err := h.tuner.MarshalTuning()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to capture current tuning")
			return
		}
		profile.Tuning = string(data)
	}

	if err := validateTuning(profile.Tuning); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Profile name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile, h.activeID()))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Description != nil {
		profile.Description = *req.Description
	}
	if req.Tuning != nil {
		if err := validateTuning(*req.Tuning); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		profile.Tuning = *req.Tuning
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Profile name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile, h.activeID()))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/profiles/{id}/activate: the profile is applied
// to the running application and remembered for the next start.
func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	if h.tuner != nil {
		if err := h.tuner.ApplyTuning([]byte(profile.Tuning)); err != nil {
			if errors.Is(err, config.ErrInvalid) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.store.Profiles().SetActive(profile.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save active profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile, profile.ID))
}
