package domain

import (
	"context"
	"time"
)

// CityRepository reads cities.
type CityRepository interface {
	FindByID(ctx context.Context, id string) (City, error)
	FindAll(ctx context.Context) ([]City, error)
	FindActive(ctx context.Context) ([]City, error)
}

// DistrictRepository reads districts.
type DistrictRepository interface {
	FindByID(ctx context.Context, id string) (District, error)
	// FindByCityID returns the active districts of a city.
	FindByCityID(ctx context.Context, cityID string) ([]District, error)
	FindAll(ctx context.Context) ([]District, error)
}

// ISPRepository persists ISPs.
type ISPRepository interface {
	FindByID(ctx context.Context, id string) (ISP, error)
	FindAll(ctx context.Context) ([]ISP, error)
	FindActive(ctx context.Context) ([]ISP, error)
	Create(ctx context.Context, isp ISP) error
	Update(ctx context.Context, isp ISP) error
}

// TariffRepository persists tariffs.
type TariffRepository interface {
	FindByID(ctx context.Context, id string) (Tariff, error)
	// FindByFilter returns active tariffs matching criteria. Backends may
	// pre-order by sort; callers must not rely on it.
	FindByFilter(ctx context.Context, criteria SearchCriteria, sort SortOptions) ([]Tariff, error)
	FindByISPID(ctx context.Context, ispID string) ([]Tariff, error)
	Create(ctx context.Context, tariff Tariff) error
	Update(ctx context.Context, tariff Tariff) error
}

// LeadRepository persists leads. Every mutating call takes the version the
// caller read and fails with *VersionConflictError when it is stale.
type LeadRepository interface {
	FindByID(ctx context.Context, id string) (Lead, error)
	// FindAll returns leads newest first.
	FindAll(ctx context.Context, limit, offset int) (LeadPage, error)
	FindByStatus(ctx context.Context, status Status) ([]Lead, error)
	FindByAssignedISP(ctx context.Context, ispID string) ([]Lead, error)
	Create(ctx context.Context, lead Lead) error
	Update(ctx context.Context, lead Lead) (Lead, error)
	UpdateStatus(ctx context.Context, id string, version int, status Status, notes string) (Lead, error)
	AssignToISP(ctx context.Context, id string, version int, ispID string) (Lead, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
}

// LeadNotifier receives lifecycle events. Implementations should return
// quickly; callers log failures and carry on.
type LeadNotifier interface {
	LeadCreated(ctx context.Context, lead Lead) error
	LeadAssigned(ctx context.Context, lead Lead, ispName string) error
	StatusUpdated(ctx context.Context, lead Lead, from, to Status) error
}

// TransitionValidator checks a lead status change against the state machine.
type TransitionValidator interface {
	Validate(ctx context.Context, current, requested Status) error
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        time.Duration
	RefreshExpiresAt time.Time
}

// RefreshClaims is what a verified refresh token carries.
type RefreshClaims struct {
	Principal Principal
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(p Principal) (TokenPair, error)
	VerifyAccess(token string) (Principal, error)
	VerifyRefresh(token string) (RefreshClaims, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenRevocations remembers refresh tokens that must not be used again.
type TokenRevocations interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
