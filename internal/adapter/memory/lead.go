package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

var _ domain.LeadRepository = (*LeadRepository)(nil)

// LeadRepository implements domain.LeadRepository with version checks
// performed under the store lock.
type LeadRepository struct {
	s   *Store
	now func() time.Time
}

func (r *LeadRepository) FindByID(_ context.Context, id string) (domain.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leads[id]
	if !ok {
		return domain.Lead{}, &domain.NotFoundError{Resource: "Lead", ID: id}
	}
	return cloneLead(l), nil
}

func (r *LeadRepository) FindAll(_ context.Context, limit, offset int) (domain.LeadPage, error) {
	if err := checkWindow(limit, offset); err != nil {
		return domain.LeadPage{}, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.newestFirst(func(domain.Lead) bool { return true })
	page := domain.LeadPage{Total: len(all)}
	if offset >= len(all) {
		page.Leads = []domain.Lead{}
		return page, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Leads = all[offset:end]
	return page, nil
}

func (r *LeadRepository) FindByStatus(_ context.Context, status domain.Status) ([]domain.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.newestFirst(func(l domain.Lead) bool { return l.Status == status }), nil
}

func (r *LeadRepository) FindByAssignedISP(_ context.Context, ispID string) ([]domain.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.newestFirst(func(l domain.Lead) bool { return l.AssignedISPID == ispID }), nil
}

// newestFirst must be called with the lock held.
func (r *LeadRepository) newestFirst(keep func(domain.Lead) bool) []domain.Lead {
	out := make([]domain.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		if keep(l) {
			out = append(out, cloneLead(l))
		}
	}
	slices.SortFunc(out, func(a, b domain.Lead) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (r *LeadRepository) Create(_ context.Context, lead domain.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leads[lead.ID]; ok {
		return &domain.DuplicateError{Resource: "Lead", Field: "id", Value: lead.ID}
	}
	if lead.Version == 0 {
		lead.Version = 1
	}
	r.s.leads[lead.ID] = cloneLead(lead)
	return nil
}

// Update rewrites the mutable fields. The tariff snapshot, location,
// source and creation time stay as created.
func (r *LeadRepository) Update(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	lead = cloneLead(lead)
	return r.mutate(lead.ID, lead.Version, func(stored *domain.Lead) {
		stored.Status = lead.Status
		stored.FullName = lead.FullName
		stored.Phone = lead.Phone
		stored.Email = lead.Email
		stored.Address = lead.Address
		stored.AssignedISPID = lead.AssignedISPID
		stored.AssignedAt = lead.AssignedAt
		stored.Notes = lead.Notes
		stored.OutcomeNotes = lead.OutcomeNotes
		stored.ConvertedAt = lead.ConvertedAt
		stored.UpdatedAt = r.now()
	})
}

func (r *LeadRepository) UpdateStatus(_ context.Context, id string, version int, status domain.Status, notes string) (domain.Lead, error) {
	return r.mutate(id, version, func(stored *domain.Lead) {
		stored.ApplyStatus(status, notes, r.now())
	})
}

func (r *LeadRepository) AssignToISP(_ context.Context, id string, version int, ispID string) (domain.Lead, error) {
	return r.mutate(id, version, func(stored *domain.Lead) {
		stored.AssignTo(ispID, r.now())
	})
}

func (r *LeadRepository) mutate(id string, version int, apply func(*domain.Lead)) (domain.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.leads[id]
	if !ok {
		return domain.Lead{}, &domain.NotFoundError{Resource: "Lead", ID: id}
	}
	if stored.Version != version {
		return domain.Lead{}, &domain.VersionConflictError{LeadID: id, Expected: version}
	}

	apply(&stored)
	stored.ID = id
	stored.Version = version + 1
	r.s.leads[id] = stored
	return cloneLead(stored), nil
}

func checkWindow(limit, offset int) error {
	if limit < 0 || offset < 0 {
		return &domain.ValidationError{
			Message: "limit and offset must not be negative",
			Details: map[string]any{"limit": limit, "offset": offset},
		}
	}
	return nil
}
