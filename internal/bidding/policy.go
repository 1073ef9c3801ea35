package bidding

import (
	"context"
	"errors"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// PolicySource supplies the anti-snipe policy in force.
type PolicySource interface {
	ExtendPolicy(ctx context.Context) (auction.ExtendPolicy, error)
}

// StaticPolicy always returns the same policy.
type StaticPolicy auction.ExtendPolicy

func (p StaticPolicy) ExtendPolicy(context.Context) (auction.ExtendPolicy, error) {
	return auction.ExtendPolicy(p), nil
}

// SettingsPolicy reads the policy from the settings store and falls back
// to a fixed policy while none has been stored.
type SettingsPolicy struct {
	settings store.SettingsRepository
	fallback auction.ExtendPolicy
}

func (p SettingsPolicy) ExtendPolicy(ctx context.Context) (auction.ExtendPolicy, error) {
	pol, err := p.settings.ExtendPolicy(ctx)
	if errors.Is(err, store.ErrNoSettings) {
		return p.fallback, nil
	}
	return pol, err
}

// NewPolicySource builds the source selected by cfg.Source.
func NewPolicySource(cfg config.ExtendPolicyConfig, settings store.SettingsRepository) PolicySource {
	fixed := auction.ExtendPolicy{BeforeWindow: cfg.BeforeWindow, Extension: cfg.Extension}
	if cfg.Source == "database" && settings != nil {
		return SettingsPolicy{settings: settings, fallback: fixed}
	}
	return StaticPolicy(fixed)
}
