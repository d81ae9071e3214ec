package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/neomorfeo/nettap/internal/adapter/memory"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

// Store serves reads from memory and persists every write to the workbook.
type Store struct {
	path string
	mem  *memory.Store
	mu   sync.Mutex
}

// Open loads the workbook at path, creating it on first save.
func Open(path string) (*Store, error) {
	data, leads, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}

	mem := memory.NewSeeded(data)
	for _, l := range leads {
		if err := mem.Leads().Create(context.Background(), l); err != nil {
			return nil, fmt.Errorf("loading lead %s: %w", l.ID, err)
		}
	}
	return &Store{path: path, mem: mem}, nil
}

// Seed adds reference data that is not yet in the workbook.
func (s *Store) Seed(_ context.Context, data seed.Data) error {
	return s.commit(func() error {
		s.mem.Seed(data)
		return nil
	})
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, leads := s.mem.Dump()
	return writeWorkbook(s.path, data, leads)
}

// commit applies a write to memory and saves the workbook. When the save
// fails the write is undone, so memory never holds unsaved records.
func (s *Store) commit(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevData, prevLeads := s.mem.Dump()
	if err := apply(); err != nil {
		return err
	}
	data, leads := s.mem.Dump()
	if err := writeWorkbook(s.path, data, leads); err != nil {
		s.mem.Restore(prevData, prevLeads)
		return err
	}
	return nil
}

// Ping always succeeds; the workbook is only touched on writes.
func (s *Store) Ping(context.Context) error { return nil }

// Close flushes the workbook one last time.
func (s *Store) Close() error { return s.save() }

func (s *Store) Cities() domain.CityRepository         { return s.mem.Cities() }
func (s *Store) Districts() domain.DistrictRepository { return s.mem.Districts() }
func (s *Store) ISPs() *ISPRepository                 { return &ISPRepository{ISPRepository: s.mem.ISPs(), s: s} }
func (s *Store) Tariffs() *TariffRepository           { return &TariffRepository{TariffRepository: s.mem.Tariffs(), s: s} }
func (s *Store) Leads() *LeadRepository               { return &LeadRepository{LeadRepository: s.mem.Leads(), s: s} }
func (s *Store) Users() *UserRepository               { return &UserRepository{UserRepository: s.mem.Users(), s: s} }

var (
	_ domain.ISPRepository    = (*ISPRepository)(nil)
	_ domain.TariffRepository = (*TariffRepository)(nil)
	_ domain.LeadRepository   = (*LeadRepository)(nil)
	_ domain.UserRepository   = (*UserRepository)(nil)
)

// ISPRepository persists ISP writes.
type ISPRepository struct {
	*memory.ISPRepository
	s *Store
}

func (r *ISPRepository) Create(ctx context.Context, isp domain.ISP) error {
	return r.s.commit(func() error { return r.ISPRepository.Create(ctx, isp) })
}

func (r *ISPRepository) Update(ctx context.Context, isp domain.ISP) error {
	return r.s.commit(func() error { return r.ISPRepository.Update(ctx, isp) })
}

// TariffRepository persists tariff writes.
type TariffRepository struct {
	*memory.TariffRepository
	s *Store
}

func (r *TariffRepository) Create(ctx context.Context, t domain.Tariff) error {
	return r.s.commit(func() error { return r.TariffRepository.Create(ctx, t) })
}

func (r *TariffRepository) Update(ctx context.Context, t domain.Tariff) error {
	return r.s.commit(func() error { return r.TariffRepository.Update(ctx, t) })
}

// LeadRepository persists lead writes.
type LeadRepository struct {
	*memory.LeadRepository
	s *Store
}

func (r *LeadRepository) Create(ctx context.Context, lead domain.Lead) error {
	return r.s.commit(func() error { return r.LeadRepository.Create(ctx, lead) })
}

func (r *LeadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	return saved(r.s, func() (domain.Lead, error) { return r.LeadRepository.Update(ctx, lead) })
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, version int, status domain.Status, notes string) (domain.Lead, error) {
	return saved(r.s, func() (domain.Lead, error) {
		return r.LeadRepository.UpdateStatus(ctx, id, version, status, notes)
	})
}

func (r *LeadRepository) AssignToISP(ctx context.Context, id string, version int, ispID string) (domain.Lead, error) {
	return saved(r.s, func() (domain.Lead, error) { return r.LeadRepository.AssignToISP(ctx, id, version, ispID) })
}

func saved(s *Store, write func() (domain.Lead, error)) (domain.Lead, error) {
	var lead domain.Lead
	err := s.commit(func() error {
		var err error
		lead, err = write()
		return err
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// UserRepository persists account writes.
type UserRepository struct {
	*memory.UserRepository
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	return r.s.commit(func() error { return r.UserRepository.Create(ctx, u) })
}

func (r *UserRepository) Update(ctx context.Context, u domain.User) error {
	return r.s.commit(func() error { return r.UserRepository.Update(ctx, u) })
}
