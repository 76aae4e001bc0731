package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SessionHandler 会话分析结果
type SessionHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), service.DefaultSessionLimit)
	items, err := h.sessions.List(r.Context(), userID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.AnalyticsSession{}
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	a, err := h.sessions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(a))
}

func (h *SessionHandler) Narrative(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	n, err := h.sessions.Narrative(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(n))
}

// Export returns the user's sessions as an xlsx attachment.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	data, err := h.sessions.Export(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filename := fmt.Sprintf("sessions_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
