package auth

import (
	"context"
	"fmt"

	"github.com/classward/classward/internal/config"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/golang-jwt/jwt/v4"
	supabase "github.com/nedpals/supabase-go"
)

type supabaseAuth struct {
	authConfig config.AuthConfig
	client     *supabase.Client
}

// NewSupabaseAuth builds the Supabase-backed auth provider. Tokens are
// verified locally against the configured JWT secret; the Supabase
// client is kept for remote verification when no secret is configured.
func NewSupabaseAuth(cfg *config.Configuration) Provider {
	var client *supabase.Client
	if cfg.Auth.Supabase.BaseURL != "" {
		client = supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	}

	return &supabaseAuth{
		authConfig: cfg.Auth,
		client:     client,
	}
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if s.authConfig.Secret != "" {
		return s.validateLocal(token)
	}
	return s.validateRemote(ctx, token)
}

func (s *supabaseAuth) validateLocal(token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.Secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, userOk := claims["sub"].(string)
	if !userOk || userID == "" {
		return nil, ierr.NewError("token missing user id").
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	return &Claims{
		UserID: userID,
		Email:  email,
	}, nil
}

func (s *supabaseAuth) validateRemote(ctx context.Context, token string) (*Claims, error) {
	if s.client == nil {
		return nil, ierr.NewError("auth provider not configured").
			Mark(ierr.ErrSystem)
	}

	user, err := s.client.Auth.User(ctx, token)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	return &Claims{
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}
