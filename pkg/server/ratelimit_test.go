package server_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/server"
)

func TestRateLimiterQuota(t *testing.T) {
	rl := server.NewRateLimiter()

	for range model.LicenseTierTrial.DailyQuota() {
		gt.True(t, rl.Allow("acme", model.LicenseTierTrial))
	}
	gt.False(t, rl.Allow("acme", model.LicenseTierTrial))
	gt.True(t, rl.Allow("other", model.LicenseTierTrial))

	// An upgraded partner gets a fresh bucket sized for the new tier
	gt.True(t, rl.Allow("acme", model.LicenseTierStandard))
}
