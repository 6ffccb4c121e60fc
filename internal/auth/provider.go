package auth

import (
	"context"

	"github.com/classward/classward/internal/config"
)

// Claims is the caller identity resolved from a bearer credential
type Claims struct {
	UserID string
	Email  string
}

// Provider resolves bearer credentials to caller identities
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// NewProvider returns the configured auth provider
func NewProvider(cfg *config.Configuration) Provider {
	return NewSupabaseAuth(cfg)
}
