package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

// AuthResult is a successful login or refresh.
type AuthResult struct {
	Tokens domain.TokenPair
	User   domain.User
}

// AuthService signs users in and rotates refresh tokens.
type AuthService struct {
	users   domain.UserRepository
	hasher  domain.PasswordHasher
	tokens  domain.TokenIssuer
	revoked domain.TokenRevocations
	now     func() time.Time
}

// NewAuthService creates an auth service.
func NewAuthService(users domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, revoked domain.TokenRevocations) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var errBadCredentials = &domain.UnauthorizedError{Message: "Invalid email or password"}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if isNotFound(err) {
		return AuthResult{}, errBadCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("finding user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return AuthResult{}, errBadCredentials
	}
	if !user.IsActive {
		return AuthResult{}, &domain.UnauthorizedError{Message: "Account is disabled"}
	}

	tokens, err := s.tokens.Issue(domain.PrincipalOf(user))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issuing tokens: %w", err)
	}

	now := s.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		slog.WarnContext(ctx, "recording login time failed", "user_id", user.ID, "error", err)
	}

	return AuthResult{Tokens: tokens, User: user}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked so it can be used only once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	invalid := &domain.UnauthorizedError{Message: "Invalid or expired refresh token"}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return AuthResult{}, invalid
	}
	revoked, err := s.revoked.IsRevoked(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("checking token revocation: %w", err)
	}
	if revoked {
		return AuthResult{}, invalid
	}

	user, err := s.users.FindByID(ctx, claims.Principal.UserID)
	if isNotFound(err) {
		return AuthResult{}, &domain.UnauthorizedError{Message: "User not found or inactive"}
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("finding user: %w", err)
	}
	if !user.IsActive {
		return AuthResult{}, &domain.UnauthorizedError{Message: "User not found or inactive"}
	}

	tokens, err := s.tokens.Issue(domain.PrincipalOf(user))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issuing tokens: %w", err)
	}

	if ttl := claims.ExpiresAt.Sub(s.now()); ttl > 0 {
		if err := s.revoked.Revoke(ctx, refreshToken, ttl); err != nil {
			return AuthResult{}, fmt.Errorf("revoking refresh token: %w", err)
		}
	}

	return AuthResult{Tokens: tokens, User: user}, nil
}

// Authenticate verifies an access token.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	p, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return domain.Principal{}, &domain.UnauthorizedError{Message: "Invalid or expired token"}
	}
	return p, nil
}
