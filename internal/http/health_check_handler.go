package httpapi

import (
	"net/http"

	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

// HealthCheckHandler 体征分类
type HealthCheckHandler struct {
	vitals service.VitalsService
	logger *zap.Logger
}

func NewHealthCheckHandler(vitals service.VitalsService, logger *zap.Logger) *HealthCheckHandler {
	return &HealthCheckHandler{vitals: vitals, logger: logger}
}

// CheckAll classifies heart rate, breathing and mood against the user's profile.
// Values missing from the body are taken from today's reading.
func (h *HealthCheckHandler) CheckAll(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var in service.HealthCheckInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	res, err := h.vitals.HealthCheck(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// CheckStat classifies a single stat described entirely by the body.
func (h *HealthCheckHandler) CheckStat(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req models.HealthCheckRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	res, err := h.vitals.CheckStat(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *HealthCheckHandler) Cached(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	entries, err := h.vitals.CachedResults(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []classifier.CacheEntry{}
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": entries, "total": len(entries)}))
}
