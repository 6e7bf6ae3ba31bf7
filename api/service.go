package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"airbnb-pricer/utils"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService runs an HTTP server under a suture supervisor.
// Serve blocks until ctx is cancelled, then shuts the server down gracefully.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPService wraps server.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout, name: "http-server"}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string {
	return s.name
}

// ServerConfig describes the listening socket.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewSupervisor builds a supervisor that restarts the HTTP service on failure
// and logs its lifecycle events.
func NewSupervisor(handler http.Handler, cfg ServerConfig, logger *utils.Logger) *suture.Supervisor {
	if logger == nil {
		logger = utils.Nop()
	}
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.Background() },
	}

	sup := suture.New("pricer", suture.Spec{
		EventHook:        eventHook(logger),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   5 * time.Second,
		Timeout:          cfg.ShutdownTimeout + time.Second,
	})
	sup.Add(NewHTTPService(srv, cfg.ShutdownTimeout))
	return sup
}

func eventHook(logger *utils.Logger) suture.EventHook {
	return func(e suture.Event) {
		ev := logger.Warn()
		if e.Type() == suture.EventTypeResume {
			ev = logger.Info()
		}
		ev.Int("event_type", int(e.Type())).Fields(e.Map()).Msg("[supervisor] " + e.String())
	}
}
