package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

// MedicationHandler 用药、周计划与服药记录
type MedicationHandler struct {
	meds   service.MedicationService
	logger *zap.Logger
}

func NewMedicationHandler(meds service.MedicationService, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{meds: meds, logger: logger}
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	items, err := h.meds.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.Medication{}
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

// Add responds 201 for a new medication and 200 with added=false for a duplicate.
func (h *MedicationHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var m models.Medication
	if err := readBodyJSON(r, maxBodyBytes, &m); err != nil {
		badRequest(w, "invalid body")
		return
	}
	m.UserID = userID
	m.ID = ""
	added, err := h.meds.Add(r.Context(), &m)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, Ok(map[string]any{"added": added, "medication": m}))
}

func (h *MedicationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	if err := h.meds.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"removed": true}))
}

func (h *MedicationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	sched, err := h.meds.Schedule(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sched))
}

type scheduleEntryRequest struct {
	Day        string `json:"day"`
	Medication string `json:"medication"`
}

func (h *MedicationHandler) AddToSchedule(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req scheduleEntryRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	sched, err := h.meds.AddToSchedule(r.Context(), userID, req.Day, req.Medication)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sched))
}

// RemoveFromSchedule DELETE /api/v1/medications/schedule/{day}/{index}?medication=name
func (h *MedicationHandler) RemoveFromSchedule(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		badRequest(w, "invalid index")
		return
	}
	sched, err := h.meds.RemoveFromSchedule(r.Context(), userID, r.PathValue("day"), r.URL.Query().Get("medication"), index)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sched))
}

type toggleTakenRequest struct {
	Date       string `json:"date"` // YYYY-MM-DD, defaults to today
	Medication string `json:"medication"`
	Index      int    `json:"index"`
}

func (h *MedicationHandler) ToggleTaken(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req toggleTakenRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	date := time.Now()
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			badRequest(w, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = d
	}
	key, taken, err := h.meds.ToggleTaken(r.Context(), userID, date, req.Medication, req.Index)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"key": key, "taken": taken}))
}

func (h *MedicationHandler) Taken(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	taken, err := h.meds.Taken(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(taken))
}
