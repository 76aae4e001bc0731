package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/notify"
	"baymax-vitals/internal/repository"
	"baymax-vitals/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// userIDHeader is set by the gateway after authentication.
const userIDHeader = "X-User-Id"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// requireUser writes 401 and returns "" when the request carries no user id.
func requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing "+userIDHeader+" header"))
	}
	return userID
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, Fail(msg))
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, classifier.ErrUnknownStat):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, notify.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, Fail(err.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
