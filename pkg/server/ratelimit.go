package server

import (
	"sync"
	"time"

	"github.com/soulthread/memoria/pkg/model"
	"golang.org/x/time/rate"
)

const quotaWindow = 24 * time.Hour

// RateLimiter keeps one token bucket per partner sized by the daily quota of
// its license tier
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
	}
}

// getLimiter returns the partner's limiter, replacing it when the tier quota
// changed since it was created
func (rl *RateLimiter) getLimiter(partnerID string, tier model.LicenseTier) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	quota := tier.DailyQuota()
	if limiter, ok := rl.limits[partnerID]; ok && limiter.Burst() == quota {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(quotaWindow/time.Duration(quota)), quota)
	rl.limits[partnerID] = limiter
	return limiter
}

// Allow consumes one request of the partner's quota
func (rl *RateLimiter) Allow(partnerID string, tier model.LicenseTier) bool {
	return rl.getLimiter(partnerID, tier).Allow()
}
