package httpapi

import (
	"net/http"

	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

type CaretakerHandler struct {
	caretaker service.CaretakerService
	logger    *zap.Logger
}

func NewCaretakerHandler(caretaker service.CaretakerService, logger *zap.Logger) *CaretakerHandler {
	return &CaretakerHandler{caretaker: caretaker, logger: logger}
}

func (h *CaretakerHandler) Notify(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req service.CaretakerRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if err := h.caretaker.Notify(r.Context(), userID, req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"sent": true}))
}
