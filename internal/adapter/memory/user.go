package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

var _ domain.UserRepository = (*UserRepository)(nil)

// UserRepository implements domain.UserRepository. Emails compare
// case-insensitively.
type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, &domain.NotFoundError{Resource: "User", ID: id}
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, &domain.NotFoundError{Resource: "User", ID: email}
}

func (r *UserRepository) Create(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &domain.DuplicateError{Resource: "User", Field: "email", Value: u.Email}
		}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *UserRepository) Update(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return &domain.NotFoundError{Resource: "User", ID: u.ID}
	}
	r.s.users[u.ID] = u
	return nil
}

var _ domain.TokenRevocations = (*TokenRevocations)(nil)

// TokenRevocations is a process-local revocation list, used when no redis
// is configured.
type TokenRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewTokenRevocations creates an empty revocation list.
func NewTokenRevocations() *TokenRevocations {
	return &TokenRevocations{entries: make(map[string]time.Time), now: time.Now}
}

func (t *TokenRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for k, exp := range t.entries {
		if now.After(exp) {
			delete(t.entries, k)
		}
	}
	t.entries[token] = now.Add(ttl)
	return nil
}

func (t *TokenRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := t.entries[token]
	return ok && t.now().Before(exp), nil
}
