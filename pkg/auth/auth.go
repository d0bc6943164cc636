package auth

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

const bearerPrefix = "Bearer "

const (
	msgInvalidHeader  = `Missing or invalid authorization header. Use "Bearer <api_key>"`
	msgKeyRequired    = "API key is required"
	msgInvalidKey     = "Invalid API key"
	msgNotApproved    = "API key not approved. Contact support for activation."
	msgServiceFailure = "Authentication service unavailable"
)

// Registry looks up partners by API key. A nil partner means the key is unknown.
type Registry interface {
	GetPartner(ctx context.Context, apiKey string) (*model.Partner, error)
}

// Granter maps a license tier to its permissions
type Granter interface {
	Grant(ctx context.Context, tier model.LicenseTier) ([]model.Permission, error)
}

// Gate verifies bearer API keys against a partner registry
type Gate struct {
	registry Registry
	granter  Granter
}

func NewGate(registry Registry, granter Granter) *Gate {
	return &Gate{registry: registry, granter: granter}
}

// Authenticate verifies the value of an Authorization header. Failures are
// returned as unauthenticated request errors.
func (g *Gate) Authenticate(ctx context.Context, header string) (*model.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, model.Unauthenticated(msgInvalidHeader)
	}

	apiKey := header[len(bearerPrefix):]
	if apiKey == "" {
		return nil, model.Unauthenticated(msgKeyRequired)
	}

	partner, err := g.registry.GetPartner(ctx, apiKey)
	if err != nil {
		logging.From(ctx).Error("failed to look up partner", "error", err)
		return nil, model.Unauthenticated(msgServiceFailure)
	}

	if partner == nil || partner.Revoked {
		return nil, model.Unauthenticated(msgInvalidKey)
	}

	if !partner.IsApproved {
		return nil, model.Unauthenticated(msgNotApproved)
	}

	perms, err := g.granter.Grant(ctx, partner.LicenseTier)
	if err != nil {
		logging.From(ctx).Error("failed to resolve permissions",
			"error", goerr.Wrap(err, "permission policy", goerr.V("partner", model.KeyFingerprint(partner.ID))))
		return nil, model.Unauthenticated(msgServiceFailure)
	}

	return &model.Identity{
		PartnerID:   partner.ID,
		Tier:        partner.LicenseTier,
		Permissions: perms,
	}, nil
}
