// Package memory keeps every entity in process memory. It is the default
// backend for development and the one tests rebuild per case.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

// Store holds all entities behind a single lock.
type Store struct {
	mu        sync.RWMutex
	cities    map[string]domain.City
	districts map[string]domain.District
	isps      map[string]domain.ISP
	tariffs   map[string]domain.Tariff
	leads     map[string]domain.Lead
	users     map[string]domain.User
}

// New creates an empty store.
func New() *Store {
	return &Store{
		cities:    make(map[string]domain.City),
		districts: make(map[string]domain.District),
		isps:      make(map[string]domain.ISP),
		tariffs:   make(map[string]domain.Tariff),
		leads:     make(map[string]domain.Lead),
		users:     make(map[string]domain.User),
	}
}

// NewSeeded creates a store preloaded with data.
func NewSeeded(data seed.Data) *Store {
	s := New()
	s.Seed(data)
	return s
}

// Seed inserts reference data, keeping existing records with the same id.
func (s *Store) Seed(data seed.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range data.Cities {
		if _, ok := s.cities[c.ID]; !ok {
			s.cities[c.ID] = c
		}
	}
	for _, d := range data.Districts {
		if _, ok := s.districts[d.ID]; !ok {
			s.districts[d.ID] = d
		}
	}
	for _, i := range data.ISPs {
		if _, ok := s.isps[i.ID]; !ok {
			s.isps[i.ID] = i
		}
	}
	for _, t := range data.Tariffs {
		if _, ok := s.tariffs[t.ID]; !ok {
			s.tariffs[t.ID] = cloneTariff(t)
		}
	}
	for _, u := range data.Users {
		if _, ok := s.users[u.ID]; !ok {
			s.users[u.ID] = u
		}
	}
}

// Dump copies every entity, ordered by id.
func (s *Store) Dump() (seed.Data, []domain.Lead) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := seed.Data{
		Cities:    sortedValues(s.cities),
		Districts: sortedValues(s.districts),
		ISPs:      sortedValues(s.isps),
		Users:     sortedValues(s.users),
	}
	for _, t := range sortedValues(s.tariffs) {
		data.Tariffs = append(data.Tariffs, cloneTariff(t))
	}
	leads := sortedValues(s.leads)
	for i := range leads {
		leads[i] = cloneLead(leads[i])
	}
	return data, leads
}

// Restore replaces every entity with the given data, typically a previous
// Dump.
func (s *Store) Restore(data seed.Data, leads []domain.Lead) {
	fresh := New()
	fresh.Seed(data)
	for _, l := range leads {
		fresh.leads[l.ID] = cloneLead(l)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities, s.districts, s.isps = fresh.cities, fresh.districts, fresh.isps
	s.tariffs, s.leads, s.users = fresh.tariffs, fresh.leads, fresh.users
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) Cities() *CityRepository         { return &CityRepository{s: s} }
func (s *Store) Districts() *DistrictRepository { return &DistrictRepository{s: s} }
func (s *Store) ISPs() *ISPRepository           { return &ISPRepository{s: s} }
func (s *Store) Tariffs() *TariffRepository     { return &TariffRepository{s: s} }
func (s *Store) Leads() *LeadRepository         { return &LeadRepository{s: s, now: utcNow} }
func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }

func utcNow() time.Time { return time.Now().UTC() }

// sortedValues returns map values ordered by key.
func sortedValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func cloneTariff(t domain.Tariff) domain.Tariff {
	t.AvailableDistrictIDs = slices.Clone(t.AvailableDistrictIDs)
	if t.UploadSpeedMbps != nil {
		v := *t.UploadSpeedMbps
		t.UploadSpeedMbps = &v
	}
	if t.DataLimitGB != nil {
		v := *t.DataLimitGB
		t.DataLimitGB = &v
	}
	return t
}

func cloneLead(l domain.Lead) domain.Lead {
	if l.AssignedAt != nil {
		v := *l.AssignedAt
		l.AssignedAt = &v
	}
	if l.ConvertedAt != nil {
		v := *l.ConvertedAt
		l.ConvertedAt = &v
	}
	return l
}
