package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/authsync/pkg/broadcast"
	"github.com/vango-dev/authsync/pkg/payload"
)

// PayloadProvider produces the hydration payload to embed in a page,
// typically from the request's auth cookie or session. Returning nil
// renders the page without a payload; clients then fall back to their
// resolver.
type PayloadProvider func(r *http.Request) *payload.Payload

// Options configures the demo server.
type Options struct {
	// Addr is the listen address (default ":3000").
	Addr string

	// Provider produces the payload embedded in the index page.
	Provider PayloadProvider

	// Hub relays snapshots between connected contexts at /sync.
	// Nil disables the endpoint.
	Hub *broadcast.Hub

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration
}

// Server serves the demo surface: a page with the embedded hydration
// payload, the websocket sync endpoint, health, and metrics.
type Server struct {
	opts       Options
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a demo server.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":3000"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger.With("component", "serve"),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	if opts.Hub != nil {
		r.Handle("/sync", opts.Hub)
	}

	s.router = r
	return s
}

// Handler returns the server's HTTP handler for mounting in external
// routers or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var p *payload.Payload
	if s.opts.Provider != nil {
		p = s.opts.Provider(r)
	}

	var metaTags, slotScript string
	if p != nil {
		var err error
		metaTags, err = payload.EncodeMetaTags(*p)
		if err != nil {
			s.logger.Error("meta tag encode failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		slotScript, err = payload.EncodeGlobalSlot(*p)
		if err != nil {
			s.logger.Error("global slot encode failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Meta tags go in head; the slot script sits at the end of body so
	// the ready event fires after the islands exist.
	fmt.Fprintf(w, indexTemplate, metaTags, slotScript)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.opts.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>authsync demo</title>
%s</head>
<body>
  <div data-island="header" data-strategy="immediate"></div>
  <div data-island="sidebar" data-strategy="lazy"></div>
  <div data-island="footer" data-strategy="onVisible"></div>
%s</body>
</html>
`
