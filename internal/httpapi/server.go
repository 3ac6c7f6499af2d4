// Package httpapi serves the savings ledger and signal calculator as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"savetrack/internal/metrics"
)

// Options configures the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// DefaultFrom is the strategy start date when a request omits one.
	DefaultFrom time.Time
}

// Server wraps the echo instance.
type Server struct {
	echo    *echo.Echo
	opts    Options
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// New wires routes and middleware. recorder may be nil, in which case /metrics is not served.
func New(svc Service, recorder *metrics.Recorder, opts Options, logger zerolog.Logger) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	logger = logger.With().Str("component", "http").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, opts: opts, metrics: recorder, logger: logger}

	e.Use(middleware.Recover())
	e.Use(s.observe)

	h := &handler{svc: svc, defaultFrom: opts.DefaultFrom, logger: logger}
	h.registerRoutes(e)

	if recorder != nil {
		e.GET("/metrics", echo.WrapHandler(recorder.Handler()))
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.echo.Server.ReadTimeout = s.opts.ReadTimeout
	s.echo.Server.WriteTimeout = s.opts.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		errCh <- s.echo.Start(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

// observe logs each request and records its latency against the templated route.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else {
				status = http.StatusInternalServerError
			}
		}
		elapsed := time.Since(start)
		route := c.Path()
		method := c.Request().Method

		s.metrics.ObserveHTTP(route, method, status, elapsed.Seconds())

		event := s.logger.Debug()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error().Err(err)
		}
		event.Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("http request")
		return err
	}
}
