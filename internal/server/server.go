package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ecosort/ecosort-be/internal/auth"
	"github.com/ecosort/ecosort-be/internal/config"
	"github.com/ecosort/ecosort-be/internal/http/handlers"
	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/qrcode"
	"github.com/ecosort/ecosort-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, sessionStore auth.SessionStore) *Server {
	mux := http.NewServeMux()

	sessions := auth.NewSessionManager(sessionStore, cfg.SessionTTL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(sessions, tokens)
	qr := qrcode.New(cfg.QRServiceURL)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(store, sessions, tokens, qr).Register(mux, authn)

	feed := handlers.NewFeed(cfg.CORSOrigins)
	feed.Register(mux, authn)
	handlers.NewWasteHandler(store, store, feed).Register(mux, authn)
	handlers.NewCollectorHandler(store).Register(mux, authn)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
