// Package settings manages the gateway's runtime configuration: the risk API
// connection, decision cache TTL, COD policy thresholds, and webhook
// credentials.
//
// Settings are stored in a key-value store and loaded fresh on every
// operation so admins can reconfigure the gateway without a restart.
package settings

import (
	"context"

	"github.com/codguard/codguard/internal/validation"
)

// CODAction controls what happens to cash-on-delivery for high-risk orders.
type CODAction string

const (
	CODVerify CODAction = "verify" // keep COD but require OTP verification
	CODHide   CODAction = "hide"   // remove COD from the gateway list
	CODAllow  CODAction = "allow"  // leave COD untouched
)

// Bounds for numeric settings.
const (
	MinTimeout  = 1
	MaxTimeout  = 60
	MinCacheTTL = 0
	MaxCacheTTL = 3600
)

// Settings holds the gateway's runtime configuration.
type Settings struct {
	// Risk API connection
	APIURL   string `json:"api_url"`
	APIKey   string `json:"api_key"`
	Timeout  int    `json:"timeout"`   // upstream call timeout, seconds
	CacheTTL int    `json:"cache_ttl"` // decision cache TTL, seconds; 0 disables caching

	// COD policy
	LowThreshold  int       `json:"low_threshold"`  // score below this is low risk
	HighThreshold int       `json:"high_threshold"` // score at or above this is high risk
	CODAction     CODAction `json:"cod_action"`

	// Outbound lifecycle notifications
	WebhookURL string `json:"webhook_url"`
	WebhookKey string `json:"webhook_key"`

	// Inbound webhook signature secret
	WebhookSecret string `json:"webhook_secret"`
}

// Defaults returns the settings used before an admin configures anything.
func Defaults() *Settings {
	return &Settings{
		Timeout:       3,
		CacheTTL:      60,
		LowThreshold:  30,
		HighThreshold: 70,
		CODAction:     CODVerify,
	}
}

// Validate checks ranges and cross-field constraints. Invalid settings are
// rejected at write time, never silently accepted.
func (s *Settings) Validate() error {
	errs := validation.Validate(
		validation.IntRange("timeout", s.Timeout, MinTimeout, MaxTimeout),
		validation.IntRange("cache_ttl", s.CacheTTL, MinCacheTTL, MaxCacheTTL),
		validation.IntRange("low_threshold", s.LowThreshold, 0, 100),
		validation.IntRange("high_threshold", s.HighThreshold, 0, 100),
		validation.OneOf("cod_action", string(s.CODAction),
			string(CODVerify), string(CODHide), string(CODAllow)),
		func() *validation.ValidationError {
			if s.HighThreshold < s.LowThreshold {
				return &validation.ValidationError{
					Field:   "high_threshold",
					Message: "must be greater than or equal to low_threshold",
				}
			}
			return nil
		},
	)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Store persists gateway settings.
type Store interface {
	// Load returns the current settings, or Defaults() when nothing has
	// been saved yet.
	Load(ctx context.Context) (*Settings, error)
	// Save replaces the current settings. Callers validate first.
	Save(ctx context.Context, s *Settings) error
}
