package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（方法 + 路径模式）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}

func (r *Router) RegisterProfileRoutes(h *ProfileHandler) {
	r.Handle("GET /api/v1/profile", h.Get)
	r.Handle("PUT /api/v1/profile", h.Update)
}

func (r *Router) RegisterReadingRoutes(h *ReadingsHandler) {
	r.Handle("GET /api/v1/readings", h.List)
	r.Handle("POST /api/v1/readings", h.Save)
	r.Handle("GET /api/v1/readings/today", h.Today)
	r.Handle("POST /api/v1/readings/seed", h.Seed)
	r.Handle("GET /api/v1/trends", h.Trends)
}

func (r *Router) RegisterHealthCheckRoutes(h *HealthCheckHandler) {
	r.Handle("POST /api/v1/health-check", h.CheckAll)
	r.Handle("POST /api/v1/health-check/stat", h.CheckStat)
	r.Handle("GET /api/v1/health-check/cache", h.Cached)
}

func (r *Router) RegisterSessionRoutes(h *SessionHandler) {
	r.Handle("GET /api/v1/sessions", h.List)
	r.Handle("GET /api/v1/sessions/export", h.Export)
	r.Handle("GET /api/v1/sessions/{id}/analytics", h.Get)
	r.Handle("POST /api/v1/sessions/{id}/narrative", h.Narrative)
}

func (r *Router) RegisterCaretakerRoutes(h *CaretakerHandler) {
	r.Handle("POST /api/v1/caretaker/notify", h.Notify)
}

func (r *Router) RegisterMedicationRoutes(h *MedicationHandler) {
	r.Handle("GET /api/v1/medications", h.List)
	r.Handle("POST /api/v1/medications", h.Add)
	r.Handle("DELETE /api/v1/medications/{id}", h.Remove)

	r.Handle("GET /api/v1/medications/schedule", h.Schedule)
	r.Handle("POST /api/v1/medications/schedule", h.AddToSchedule)
	r.Handle("DELETE /api/v1/medications/schedule/{day}/{index}", h.RemoveFromSchedule)

	r.Handle("GET /api/v1/medications/taken", h.Taken)
	r.Handle("POST /api/v1/medications/taken", h.ToggleTaken)
}
