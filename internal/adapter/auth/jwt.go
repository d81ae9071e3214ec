// Package auth issues and verifies JWT bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/neomorfeo/nettap/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig configures token signing. Access and refresh tokens are signed
// with different secrets so one can never be replayed as the other.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Claims is the payload of both token kinds.
type Claims struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ISPID     string      `json:"ispId,omitempty"`
	TokenType string      `json:"tokenType"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens.
type JWTIssuer struct {
	cfg JWTConfig
	now func() time.Time
}

// NewJWTIssuer validates the configuration and creates an issuer.
func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &JWTIssuer{cfg: cfg, now: time.Now}, nil
}

// Issue signs a fresh access/refresh pair for p.
func (j *JWTIssuer) Issue(p domain.Principal) (domain.TokenPair, error) {
	now := j.now()

	access, _, err := j.sign(p, tokenTypeAccess, now, j.cfg.AccessTTL, j.cfg.AccessSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("signing access token: %w", err)
	}
	refresh, refreshExp, err := j.sign(p, tokenTypeRefresh, now, j.cfg.RefreshTTL, j.cfg.RefreshSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        j.cfg.AccessTTL,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (j *JWTIssuer) sign(p domain.Principal, tokenType string, now time.Time, ttl time.Duration, secret string) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:    p.UserID,
		Email:     p.Email,
		Role:      p.Role,
		ISPID:     p.ISPID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.cfg.Issuer,
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, exp, err
}

// VerifyAccess checks an access token and returns its principal.
func (j *JWTIssuer) VerifyAccess(token string) (domain.Principal, error) {
	claims, err := j.parse(token, tokenTypeAccess, j.cfg.AccessSecret)
	if err != nil {
		return domain.Principal{}, err
	}
	return claims.principal(), nil
}

// VerifyRefresh checks a refresh token.
func (j *JWTIssuer) VerifyRefresh(token string) (domain.RefreshClaims, error) {
	claims, err := j.parse(token, tokenTypeRefresh, j.cfg.RefreshSecret)
	if err != nil {
		return domain.RefreshClaims{}, err
	}
	return domain.RefreshClaims{
		Principal: claims.principal(),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTIssuer) parse(tokenString, wantType, secret string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, wantType)
	}
	return claims, nil
}

func (c *Claims) principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Email: c.Email, Role: c.Role, ISPID: c.ISPID}
}
