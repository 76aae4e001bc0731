package httpapi

import (
	"net/http"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"
	"baymax-vitals/internal/trend"

	"go.uber.org/zap"
)

// ReadingsHandler daily readings and trend views
type ReadingsHandler struct {
	readings service.ReadingService
	vitals   service.VitalsService
	logger   *zap.Logger
}

func NewReadingsHandler(readings service.ReadingService, vitals service.VitalsService, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{readings: readings, vitals: vitals, logger: logger}
}

// List GET /api/v1/readings?days=7
func (h *ReadingsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	days := parseInt(r.URL.Query().Get("days"), service.DefaultReadingDays)
	items, err := h.readings.List(r.Context(), userID, days)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.HealthReading{}
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

func (h *ReadingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var reading models.HealthReading
	if err := readBodyJSON(r, maxBodyBytes, &reading); err != nil {
		badRequest(w, "invalid body")
		return
	}
	reading.UserID = userID
	reading.ID = ""
	if err := h.readings.Save(r.Context(), &reading); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(reading))
}

func (h *ReadingsHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	reading, err := h.readings.Today(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reading))
}

// Seed writes sample data for a user with no readings.
func (h *ReadingsHandler) Seed(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	items, err := h.readings.Seed(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"seeded": len(items), "items": items}))
}

// Trends GET /api/v1/trends?view=weekly|monthly
func (h *ReadingsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	view, err := trend.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rep, err := h.vitals.Trends(r.Context(), userID, view)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rep))
}
