package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/payflowhq/payflow-backend/internal/auth"
	"github.com/payflowhq/payflow-backend/internal/config"
	"github.com/payflowhq/payflow-backend/internal/http/handlers"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/storage"
	"github.com/payflowhq/payflow-backend/internal/transfer"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires middleware, handlers, and the transfer engine around the
// passed-in store handle. The store's lifecycle stays with the caller.
func New(cfg config.Config, store storage.Store, log *slog.Logger) *Server {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	engine := transfer.New(store, log)

	healthH := handlers.NewHealthHandler(time.Now())
	authH := handlers.NewAuthHandler(store, tokens, cfg, log)
	accountH := handlers.NewAccountHandler(store, log)
	usersH := handlers.NewUsersHandler(store, log)
	transferH := handlers.NewTransferHandler(engine)
	transactionsH := handlers.NewTransactionsHandler(store, log)

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.Authenticate(tokens, h)
	}

	mux.HandleFunc("/health", healthH.Health)
	mux.HandleFunc("/api/signup", authH.Signup)
	mux.HandleFunc("/api/signin", authH.Signin)
	mux.Handle("/api/balance", protect(accountH.Balance))
	mux.Handle("/api/users", protect(usersH.List))
	mux.Handle("/api/user/update", protect(usersH.Update))
	mux.Handle("/api/transfer", protect(transferH.Transfer))
	mux.Handle("/api/transactions", protect(transactionsH.List))

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))

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

// Handler exposes the fully wired handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
