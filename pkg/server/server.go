package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/metrics"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/usecase/usage"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	msgInternalError = "Internal server error"
	shutdownTimeout  = 10 * time.Second
)

// Authenticator verifies the Authorization header of a request
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*model.Identity, error)
}

// Server serves the partner read API over HTTP
type Server struct {
	memories *memories.UseCase
	auth     Authenticator
	limiter  *RateLimiter
	recorder *usage.Recorder
	metrics  *metrics.Metrics
	echo     *echo.Echo
}

type Option func(*Server)

// WithRateLimiter enforces daily tier quotas per partner
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithRecorder records usage of every successful API call
func WithRecorder(r *usage.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithMetrics collects request metrics and serves them on /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(uc *memories.UseCase, auth Authenticator, opts ...Option) *Server {
	s := &Server{
		memories: uc,
		auth:     auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(s.observe, middleware.Recover())

	e.GET("/health", s.handleHealth)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := e.Group("/api/v1", s.authenticate, s.rateLimit)
	api.GET("/memories", s.handleMemories)
	api.GET("/tags", s.handleTags)
	api.GET("/metadata", s.handleMetadata)
	api.GET("/embeddings", s.handleEmbeddings)
	api.GET("/export", s.handleExport)

	s.echo = e
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logging.From(ctx).Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "failed to serve", goerr.V("addr", addr))
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		logging.From(ctx).Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shut down server")
		}
		return nil
	})

	return eg.Wait()
}

func statusOf(kind model.ErrorKind) int {
	switch kind {
	case model.ErrorKindBadRequest:
		return http.StatusBadRequest
	case model.ErrorKindUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrorKindForbidden:
		return http.StatusForbidden
	case model.ErrorKindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders every error as {"error": message}. Only request errors
// and routing errors expose their message.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ctx := c.Request().Context()
	status, msg := http.StatusInternalServerError, msgInternalError

	var httpErr *echo.HTTPError
	if reqErr, ok := model.AsRequestError(err); ok {
		status, msg = statusOf(reqErr.Kind), reqErr.Message
	} else if errors.As(err, &httpErr) {
		status, msg = httpErr.Code, fmt.Sprint(httpErr.Message)
	} else {
		logging.From(ctx).Error("request failed", "error", err)
	}

	if err := c.JSON(status, map[string]string{"error": msg}); err != nil {
		logging.From(ctx).Error("failed to write error response", "error", err)
	}
}
