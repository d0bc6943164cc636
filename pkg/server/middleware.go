package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

type identityKey struct{}

func withIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// identityFrom returns the authenticated partner, or nil outside /api/v1
func identityFrom(ctx context.Context) *model.Identity {
	id, _ := ctx.Value(identityKey{}).(*model.Identity)
	return id
}

// observe attaches a request scoped logger, renders handler errors, then
// logs and measures the final response
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		reqID := req.Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)

		logger := logging.From(req.Context()).With(
			"request_id", reqID,
			"method", req.Method,
			"path", req.URL.Path,
		)
		c.SetRequest(req.WithContext(logging.With(req.Context(), logger)))

		if err := next(c); err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		elapsed := time.Since(start)
		logger.Info("request handled", "status", status, "elapsed", elapsed)
		if s.metrics != nil {
			s.metrics.ObserveRequest(c.Path(), req.Method, status, elapsed)
		}
		return nil
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := s.auth.Authenticate(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}

		logger := logging.From(ctx).With("partner", model.KeyFingerprint(id.PartnerID), "tier", id.Tier)
		ctx = logging.With(withIdentity(ctx, id), logger)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter == nil {
			return next(c)
		}

		id := identityFrom(c.Request().Context())
		if !s.limiter.Allow(id.PartnerID, id.Tier) {
			if s.metrics != nil {
				s.metrics.RateLimited(string(id.Tier))
			}
			return model.TooManyRequests("Rate limit exceeded for " + string(id.Tier) + " tier")
		}
		return next(c)
	}
}
