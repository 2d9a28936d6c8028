package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/charts"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Chart          charts.ChartConfig
}

// Server holds the HTTP server dependencies
type Server struct {
	session *app.Session
	opts    Options
	logger  *zap.Logger
	router  chi.Router
}

// New creates a new API server
func New(session *app.Session, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:*"}
	}
	if opts.Chart.Width == "" {
		opts.Chart = charts.DefaultChartConfig()
	}

	s := &Server{
		session: session,
		opts:    opts,
		logger:  logger,
		router:  chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the router so callers can mount extra handlers.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Decks
		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleAddDeck)
		r.Post("/decks/bulk", s.handleBulkAdd)
		r.Delete("/decks", s.handleClearDecks)
		r.Get("/decks/{id}", s.handleGetDeck)
		r.Patch("/decks/{id}", s.handleUpdateDeck)
		r.Delete("/decks/{id}", s.handleRemoveDeck)

		// Summary
		r.Get("/summary", s.handleSummary)
		r.Get("/summary/chart", s.handleSummaryChart)

		// View state
		r.Get("/state", s.handleGetState)
		r.Put("/view", s.handleSetView)
		r.Put("/form", s.handleSetForm)
		r.Delete("/state/error", s.handleDismissError)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		// Enlarged view
		r.Get("/modal", s.handleGetModal)
		r.Post("/modal/open", s.handleOpenModal)
		r.Post("/modal/navigate", s.handleNavigateModal)
		r.Post("/modal/key", s.handleModalKey)
		r.Patch("/modal", s.handleEditModal)
		r.Delete("/modal", s.handleCloseModal)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// --- Response helpers ---

type errorResponse struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind,omitempty"`
	Data  any         `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondAppError writes err with the status its kind maps to. data, when
// non-nil, is the state the mutation left behind even though err occurred.
func respondAppError(w http.ResponseWriter, err error, data any) {
	if errors.Is(err, app.ErrDeckNotFound) {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}
	kind, _ := apperr.KindOf(err)
	respondJSON(w, statusFor(kind), errorResponse{
		Error: apperr.UserMessage(err),
		Kind:  kind,
		Data:  data,
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicate:
		return http.StatusConflict
	case apperr.KindQuota:
		return http.StatusInsufficientStorage
	case apperr.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
