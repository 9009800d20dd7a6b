package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vbonduro/renovo/internal/catalog"
	"github.com/vbonduro/renovo/internal/notify"
	"github.com/vbonduro/renovo/internal/service"
)

type Server struct {
	projects *service.ProjectService
	sows     *service.SOWService
	assets   *service.AssetService
	catalog  *catalog.Catalog
	hub      *notify.Hub
	origins  []string
	router   http.Handler
	logger   *slog.Logger
}

func NewServer(
	projects *service.ProjectService,
	sows *service.SOWService,
	assets *service.AssetService,
	cat *catalog.Catalog,
	hub *notify.Hub,
	allowedOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		projects: projects,
		sows:     sows,
		assets:   assets,
		catalog:  cat,
		hub:      hub,
		origins:  allowedOrigins,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/catalog", s.handleGetCatalog)
	r.Get("/photos/{key}", s.handleGetPhoto)

	r.Route("/properties", func(r chi.Router) {
		r.Post("/", s.handleCreateProperty)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProperty)
			r.Put("/blueprint", s.handleSetBlueprint)
			r.Get("/rooms", s.handleListRooms)
			r.Post("/rooms", s.handleCreateRoom)
			r.Get("/projects", s.handleListProjects)
		})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", s.handleCreateProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/rooms/{roomID}/design", s.handleSetRoomDesign)
			r.Post("/design-assets", s.handleAddDesignAsset)
			r.Put("/inspiration", s.handleSetInspiration)
			r.Get("/tags", s.handleGetTags)
			r.Put("/tags", s.handleSetTags)
			r.Get("/assets", s.handleRoomAssets)
			r.Post("/before-photos", s.handleUploadBeforePhoto)
			r.Delete("/before-photos/{photoID}", s.handleDeleteBeforePhoto)
			r.Get("/notifications/stream", s.handleNotificationStream)
			r.Post("/sow/sessions", s.handleOpenSession)
		})
	})

	r.Route("/sow/sessions/{sid}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleCloseSession)

		r.Post("/work-areas", s.handleAddWorkArea)
		r.Patch("/work-areas/{itemID}", s.handleUpdateWorkArea)
		r.Delete("/work-areas/{itemID}", s.handleRemoveWorkArea)

		r.Post("/labor-items", s.handleAddLaborItem)
		r.Patch("/labor-items/{itemID}", s.handleUpdateLaborItem)
		r.Delete("/labor-items/{itemID}", s.handleRemoveLaborItem)

		r.Post("/material-items", s.handleAddMaterialItem)
		r.Patch("/material-items/{itemID}", s.handleUpdateMaterialItem)
		r.Delete("/material-items/{itemID}", s.handleRemoveMaterialItem)

		r.Post("/next", s.handleWizardNext)
		r.Post("/back", s.handleWizardBack)
		r.Post("/finish", s.handleWizardFinish)
		r.Post("/save", s.handleSaveSession)
	})

	return r
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an http.Server for addr serving this API.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
