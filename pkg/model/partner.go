package model

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

type LicenseTier string

const (
	LicenseTierTrial    LicenseTier = "trial"
	LicenseTierStandard LicenseTier = "standard"
	LicenseTierPremium  LicenseTier = "premium"
)

// DailyQuota returns the number of requests a tier may issue per day.
// Unknown tiers get the trial quota.
func (t LicenseTier) DailyQuota() int {
	switch t {
	case LicenseTierStandard:
		return 1000
	case LicenseTierPremium:
		return 10000
	default:
		return 100
	}
}

type Permission string

const (
	PermissionReadMemories       Permission = "read:memories"
	PermissionReadBasicAnalytics Permission = "read:basic_analytics"
	PermissionReadAnalytics      Permission = "read:analytics"
	PermissionReadEmbeddings     Permission = "read:embeddings"
	PermissionReadDetailedMeta   Permission = "read:detailed_metadata"
	PermissionExportData         Permission = "export:data"
)

// Partner is a document of the partnerAuth collection, keyed by API key
type Partner struct {
	ID          string      `firestore:"-" yaml:"-"`
	Name        string      `firestore:"name,omitempty" yaml:"name"`
	LicenseTier LicenseTier `firestore:"licenseTier" yaml:"tier"`
	IsApproved  bool        `firestore:"isApproved" yaml:"approved"`
	Revoked     bool        `firestore:"revoked,omitempty" yaml:"revoked"`
}

// Identity is the result of a successful authentication
type Identity struct {
	PartnerID   string
	Tier        LicenseTier
	Permissions []Permission
}

func (i *Identity) Has(p Permission) bool {
	return i != nil && slices.Contains(i.Permissions, p)
}

// KeyFingerprint returns a short digest of an API key that is safe to log
func KeyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}
