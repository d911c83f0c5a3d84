package internal

import (
	"fmt"

	"github.com/adkite/adkite/internal/clients"
	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/adapter"
)

// Session factories bind an account id and access token to a live
// platform session. Real implementations own HTTP transport, retries
// and token refresh; the sandbox ones run in memory.
type (
	GoogleSessionFactory func(accountID, accessToken string) adapter.GoogleSession
	MetaSessionFactory   func(accountID, accessToken string) adapter.MetaSession
	TikTokSessionFactory func(accountID, accessToken string) adapter.TikTokSession
)

// AdapterFactory is the single point dispatching to platform-specific
// adapters, keyed by platform.
type AdapterFactory struct {
	google GoogleSessionFactory
	meta   MetaSessionFactory
	tiktok TikTokSessionFactory
}

// NewAdapterFactory wires per-platform session factories. A nil factory
// leaves that platform unconfigured.
func NewAdapterFactory(google GoogleSessionFactory, meta MetaSessionFactory, tiktok TikTokSessionFactory) *AdapterFactory {
	return &AdapterFactory{google: google, meta: meta, tiktok: tiktok}
}

// NewSandboxAdapterFactory wires every platform to in-memory sandbox
// sessions sharing one state.
func NewSandboxAdapterFactory(state *clients.SandboxState) *AdapterFactory {
	return &AdapterFactory{
		google: func(_, _ string) adapter.GoogleSession { return clients.NewSandboxGoogleSession(state) },
		meta:   func(_, _ string) adapter.MetaSession { return clients.NewSandboxMetaSession(state) },
		tiktok: func(_, _ string) adapter.TikTokSession { return clients.NewSandboxTikTokSession(state) },
	}
}

// Adapter builds the adapter for a platform bound to the given account
// and credential.
func (f *AdapterFactory) Adapter(platform domain.Platform, accountID, accessToken string) (adapter.Adapter, error) {
	switch platform {
	case domain.PlatformGoogle:
		if f.google == nil {
			return nil, fmt.Errorf("google sessions are not configured")
		}
		return adapter.NewGoogle(f.google(accountID, accessToken)), nil
	case domain.PlatformFacebook:
		if f.meta == nil {
			return nil, fmt.Errorf("facebook sessions are not configured")
		}
		return adapter.NewMeta(f.meta(accountID, accessToken)), nil
	case domain.PlatformTikTok:
		if f.tiktok == nil {
			return nil, fmt.Errorf("tiktok sessions are not configured")
		}
		return adapter.NewTikTok(f.tiktok(accountID, accessToken)), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}
