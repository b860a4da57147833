// Package httpapi serves health and state inspection endpoints
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/search"
)

const shutdownTimeout = 5 * time.Second

// Stats is the body of GET /api/stats
type Stats struct {
	Subscribers  int `json:"subscribers"`
	Lists        int `json:"lists"`
	MovieGenres  int `json:"movie_genres"`
	SeriesGenres int `json:"series_genres"`
}

// Handler serves the endpoints
type Handler struct {
	store  domain.Store
	genres *search.GenreIndex
	logger *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(store domain.Store, genres *search.GenreIndex, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, genres: genres, logger: logger}
}

// Router registers the routes
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/api/lists/{listID}", h.List).Methods(http.MethodGet)
	return r
}

// Health answers liveness checks
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Stats reports subscriber, list and genre counts
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Stats{
		Subscribers:  h.store.SubscriberCount(),
		Lists:        h.store.ListCount(),
		MovieGenres:  h.genres.Taxonomy(domain.KindMovie).Len(),
		SeriesGenres: h.genres.Taxonomy(domain.KindSeries).Len(),
	})
}

// List returns a stored result list, or 404 once it is unknown or evicted
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["listID"])
	list, err := h.store.GetList(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrListNotFound) {
			status = http.StatusNotFound
		}
		writeJSONError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Server runs the handler on an address
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server for addr
func NewServer(addr string, h *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start listens in the background
func (s *Server) Start() {
	go func() {
		s.logger.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and drains open ones
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
