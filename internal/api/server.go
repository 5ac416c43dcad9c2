// Package api serves flag evaluation over HTTP. A document is uploaded either
// as a raw JSON body or as the "file" field of a multipart form.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/ingest"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/rules"
)

// EvaluationIDHeader carries the ID assigned to each evaluation request.
const EvaluationIDHeader = "X-Evaluation-ID"

const uploadField = "file"

// Server is the HTTP upload server.
type Server struct {
	router  chi.Router
	cfg     config.ServerConfig
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewServer creates a server with all routes and middleware. A nil logger
// uses zap.L().
func NewServer(cfg config.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.L()
	}
	s := &Server{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		log:     log,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.requestTimeout(),
		WriteTimeout:      s.requestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("server shutdown", zap.Error(err))
		}
	}()

	s.log.Info("starting server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.RequestTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.cfg.RequestTimeoutSecs) * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.CORSOrigins) > 0 {
		origins = s.cfg.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", EvaluationIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.With(s.rateLimit).Post("/evaluate", s.handleEvaluate)
	})

	return r
}

// requestLogger logs each request with zap once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// rateLimit rejects requests once the shared token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(EvaluationIDHeader, id)
	log := s.log.With(
		zap.String("evaluation_id", id),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	detail := false
	if v := r.URL.Query().Get("detail"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "detail must be a boolean")
			return
		}
		detail = b
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	doc, err := readDocument(r)
	if err != nil {
		status, msg := uploadErrorStatus(err)
		log.Warn("evaluate: rejected upload", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}

	engine := rules.NewEngine(rules.WithObserver(rules.NewLogObserver(log)))
	a, err := engine.Assess(doc)
	if err != nil {
		if rules.IsStructural(err) {
			log.Warn("evaluate: structural fault", zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error("evaluate: failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	log.Info("evaluate: complete",
		zap.Int("period_index", a.PeriodIndex),
		zap.Any("flags", a.Flags),
	)

	if detail {
		writeJSON(w, http.StatusOK, a)
		return
	}
	writeJSON(w, http.StatusOK, model.Output{Flags: a.Flags})
}

// readDocument decodes the upload from a multipart "file" field or, for any
// other content type, from the raw body.
func readDocument(r *http.Request) (*model.FinancialDocument, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return ingest.Decode(r.Body)
	}

	f, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return ingest.Decode(f)
}

func uploadErrorStatus(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "document too large"
	case errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest, uploadField + " field is required"
	case ingest.IsParseError(err):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadRequest, "invalid upload"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
