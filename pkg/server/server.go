package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/graft/internal/config"
	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/hydrate"
	"github.com/vango-dev/graft/pkg/protocol"
	"github.com/vango-dev/graft/pkg/store"
	"github.com/vango-dev/graft/pkg/telemetry"
)

// HeaderDiagnostics carries the diagnostic count of a hydration.
const HeaderDiagnostics = "X-Graft-Diagnostics"

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records into m and serves gatherer on /metrics.
func WithMetrics(m *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracer sets the tracer for request and hydration spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// Server serves hydration, stored pages and the live preview channel.
type Server struct {
	cfg    *config.Config
	reg    *component.Registry
	store  store.Store
	router chi.Router
	codec  *protocol.Codec

	upgrader websocket.Upgrader
	conns    sync.WaitGroup
	mu       sync.Mutex
	live     map[*live]struct{}

	logger   *slog.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
}

// New creates a server for reg. A nil st disables storage.
func New(cfg *config.Config, reg *component.Registry, st store.Store, opts ...Option) *Server {
	if st == nil {
		st = store.NopStore{}
	}
	s := &Server{
		cfg:   cfg,
		reg:   reg,
		store: st,
		codec: protocol.DefaultCodec,
		live:  make(map[*live]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(telemetry.HTTP(s.metrics, s.tracer))

	r.Post("/hydrate", s.handleHydrate)
	r.Get("/pages/*", s.handlePage)
	r.Get("/live", s.handleLive)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully and waits for live connections to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.closeLive()
	s.conns.Wait()
	s.logger.Info("server shutdown complete")
	return nil
}

// Live returns the number of open preview connections.
func (s *Server) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Server) track(l *live) {
	s.mu.Lock()
	s.live[l] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(l *live) {
	s.mu.Lock()
	delete(s.live, l)
	s.mu.Unlock()
}

// closeLive closes every preview connection with a going-away frame.
func (s *Server) closeLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	for l := range s.live {
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), deadline)
		l.conn.Close()
	}
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) hydrateOptions(markup string) hydrate.Options {
	return hydrate.Options{
		HTML:          markup,
		HydratedClass: s.cfg.Hydrate.HydratedClass,
		Dir:           s.cfg.Hydrate.Dir,
		Logger:        s.logger,
		Metrics:       s.metrics,
		Tracer:        s.tracer,
	}
}
