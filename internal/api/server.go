package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
)

type Server struct {
	HTTP *http.Server
	Log  *slog.Logger
}

func NewServer(addr string, log *slog.Logger, h *Handlers) *Server {
	router := NewRouter(h)

	chain := handlers.RecoveryHandler(handlers.RecoveryLogger(&recoveryLogger{log}))(router)
	chain = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(chain)
	chain = handlers.LoggingHandler(os.Stdout, chain)

	hs := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{HTTP: hs, Log: log}
}

func (s *Server) Start() error {
	s.Log.Info("http server starting", "addr", s.HTTP.Addr)
	return s.HTTP.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.Log.Info("http server stopping")
	return s.HTTP.Shutdown(ctx)
}

// recoveryLogger adapts slog to the gorilla recovery middleware.
type recoveryLogger struct {
	log *slog.Logger
}

func (r *recoveryLogger) Println(v ...any) {
	r.log.Error("handler panic recovered", "detail", v)
}
