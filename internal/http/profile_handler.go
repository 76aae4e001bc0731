package httpapi

import (
	"net/http"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

// ProfileHandler 用户资料
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(profiles service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(p))
}

// Update merges the fields present in the body into the profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var patch models.ProfilePatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		badRequest(w, "invalid body")
		return
	}
	p, err := h.profiles.Update(r.Context(), userID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(p))
}
