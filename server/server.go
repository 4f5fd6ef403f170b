package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-proxy/auth"
	"github.com/jrsteele09/go-auth-proxy/auth/authsession"
	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/oidc"
	"github.com/jrsteele09/go-auth-proxy/token"
	"github.com/jrsteele09/go-auth-proxy/token/refresh"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config

	auth      *auth.Service
	sessions  *authsession.Store
	cache     *token.Cache
	refresher *refresh.Coordinator
	proxy     http.Handler
}

// New wires the proxy together. Provider discovery happens here and a
// failure is returned to the caller: the process must not serve traffic
// with an unresolved provider configuration.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	oidcClient, err := oidc.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create OIDC client: %w", err)
	}

	sessions := authsession.NewStore()
	cache := token.NewCache(cfg.GetCleanupReadInterval(), cfg.GetTokenExpiryMargin())
	cache.StartSweeper(cfg.GetSweepInterval())

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessions,
		auth:     auth.NewService(sessions, oidcClient),
		cache:    cache,
		refresher: refresh.NewCoordinator(cache, oidcClient, refresh.Options{
			InitialBackoff: cfg.GetRefreshInitialBackoff(),
			MaxBackoff:     cfg.GetRefreshMaxBackoff(),
			MaxAttempts:    cfg.GetRefreshMaxAttempts(),
		}),
	}
	s.env = cfg.GetEnv()

	s.proxy, err = s.newBackendProxy(cfg.GetBackendBaseURL(), cfg.GetRetryDelay())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create backend proxy: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Close stops background cache maintenance.
func (s *Server) Close() {
	s.cache.Stop()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
