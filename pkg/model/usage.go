package model

import (
	"time"
)

// Usage is one successful API call attributed to a partner
type Usage struct {
	PartnerID   string
	Endpoint    string
	RecordCount int
	At          time.Time
}

// UsageDocID returns the apiUsage document id, one document per partner per UTC day
func (u *Usage) UsageDocID() string {
	return u.PartnerID + "_" + DayKey(u.At)
}

// DayKey formats t as a UTC calendar day (YYYY-MM-DD)
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
