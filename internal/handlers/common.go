package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lehigh-university-libraries/imagenamer/internal/renaming"
	"github.com/lehigh-university-libraries/imagenamer/internal/storage"
)

type Handler struct {
	store          *storage.Store
	service        *renaming.Service
	maxUploadBytes int64
	allowedOrigins []string
}

// New creates the HTTP handlers. CORS is only enabled when allowedOrigins is non-empty.
func New(store *storage.Store, service *renaming.Service, maxUploadBytes int64, allowedOrigins []string) *Handler {
	return &Handler{
		store:          store,
		service:        service,
		maxUploadBytes: maxUploadBytes,
		allowedOrigins: allowedOrigins,
	}
}

// Routes registers every endpoint on a chi router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(h.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.allowedOrigins,
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Get("/", h.HandleIndex)
	r.Post("/upload", h.HandleUpload)
	r.Get("/download_all", h.HandleDownloadAll)
	r.Get("/clear", h.HandleClear)
	r.Post("/clear", h.HandleClear)
	r.Get("/renamed/{name}", h.HandleRenamedFile)
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	return r
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	h.writeJSONStatus(w, map[string]string{"error": message}, code)
}
