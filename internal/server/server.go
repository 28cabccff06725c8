// Package server exposes a workspace over HTTP: the workspace page, the
// rendered preview, a JSON API that drives the orchestrator and a websocket
// that pushes state changes to open pages.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/uiforge/internal/config"
	uierrors "github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/orchestrator"
	"github.com/conneroisu/uiforge/internal/registry"
	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/websocket"
)

// Server serves one workspace.
type Server struct {
	cfg      *config.Config
	orch     *orchestrator.Orchestrator
	renderer *renderer.LiveRenderer
	registry *registry.ComponentRegistry
	hub      *websocket.Hub
	limiter  *RateLimiter
	logger   logging.Logger
	errs     *uierrors.ErrorHandler

	router      chi.Router
	unsubscribe func()

	mu         sync.Mutex
	httpServer *http.Server
}

// New wires a server around an orchestrator and renderer. The returned
// server already forwards orchestrator events to websocket clients; call
// Shutdown to release it even if Start is never called.
func New(cfg *config.Config, orch *orchestrator.Orchestrator, lr *renderer.LiveRenderer, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		orch:     orch,
		renderer: lr,
		registry: registry.Default(),
		hub:      websocket.NewHub(websocket.OriginList(cfg.Server.AllowedOrigins), logger),
		limiter:  NewRateLimiter(cfg.Server.RateLimit, logger),
		logger:   logger.WithComponent("server"),
	}
	s.errs = uierrors.NewErrorHandler(s.logger)
	s.unsubscribe = orch.Subscribe(s.forward)
	s.router = s.routes()

	return s
}

// forward relays orchestrator events to the browsers.
func (s *Server) forward(e orchestrator.Event) {
	switch e.Type {
	case orchestrator.EventPhaseChanged:
		s.hub.Broadcast(websocket.TypePhaseChanged, e.State)
	case orchestrator.EventStateChanged:
		s.hub.Broadcast(websocket.TypeStateChanged, e.State)
		s.hub.Broadcast(websocket.TypePreviewChanged, nil)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(SecurityHeaders)
	r.Use(CORS(s.cfg.Server.AllowedOrigins))

	r.Get("/", s.handleIndex)
	r.Get("/preview", s.handlePreview)
	r.Get("/health", s.handleHealth)
	r.Handle("/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/components", s.handleComponents)
		r.Get("/render", s.handleRender)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.limiter))
			r.Post("/submit", s.handleSubmit)
			r.Post("/rollback", s.handleRollback)
			r.Post("/clear", s.handleClear)
			r.Post("/view", s.handleView)
			r.Post("/copy", s.handleCopy)
		})
	})

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	if s.cfg.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s", s.Addr()))
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Preview server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server, the websocket hub and the event relay.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	s.limiter.Stop()

	var httpErr error
	s.mu.Lock()
	if s.httpServer != nil {
		httpErr = s.httpServer.Shutdown(ctx)
	}
	s.mu.Unlock()

	if err := s.hub.Shutdown(ctx); err != nil && httpErr == nil {
		httpErr = err
	}

	return httpErr
}

func (s *Server) openBrowser(target string) {
	time.Sleep(100 * time.Millisecond)

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.logger.Warn(context.Background(), err, "Refusing to open browser", "url", target)
		return
	}

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", u.String()).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String()).Start()
	case "darwin":
		err = exec.Command("open", u.String()).Start()
	default:
		err = fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	if err != nil {
		s.logger.Warn(context.Background(), err, "Failed to open browser")
	}
}
