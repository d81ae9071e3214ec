package memory

import (
	"context"

	"github.com/neomorfeo/nettap/internal/domain"
)

// Compile-time checks.
var (
	_ domain.CityRepository     = (*CityRepository)(nil)
	_ domain.DistrictRepository = (*DistrictRepository)(nil)
	_ domain.ISPRepository      = (*ISPRepository)(nil)
	_ domain.TariffRepository   = (*TariffRepository)(nil)
)

// CityRepository implements domain.CityRepository.
type CityRepository struct{ s *Store }

func (r *CityRepository) FindByID(_ context.Context, id string) (domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cities[id]
	if !ok {
		return domain.City{}, &domain.NotFoundError{Resource: "City", ID: id}
	}
	return c, nil
}

func (r *CityRepository) FindAll(_ context.Context) ([]domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.cities), nil
}

func (r *CityRepository) FindActive(ctx context.Context) ([]domain.City, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, c := range all {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// DistrictRepository implements domain.DistrictRepository.
type DistrictRepository struct{ s *Store }

func (r *DistrictRepository) FindByID(_ context.Context, id string) (domain.District, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.districts[id]
	if !ok {
		return domain.District{}, &domain.NotFoundError{Resource: "District", ID: id}
	}
	return d, nil
}

func (r *DistrictRepository) FindByCityID(_ context.Context, cityID string) ([]domain.District, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.District
	for _, d := range sortedValues(r.s.districts) {
		if d.CityID == cityID && d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DistrictRepository) FindAll(_ context.Context) ([]domain.District, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.districts), nil
}

// ISPRepository implements domain.ISPRepository.
type ISPRepository struct{ s *Store }

func (r *ISPRepository) FindByID(_ context.Context, id string) (domain.ISP, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	isp, ok := r.s.isps[id]
	if !ok {
		return domain.ISP{}, &domain.NotFoundError{Resource: "ISP", ID: id}
	}
	return isp, nil
}

func (r *ISPRepository) FindAll(_ context.Context) ([]domain.ISP, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.isps), nil
}

func (r *ISPRepository) FindActive(ctx context.Context) ([]domain.ISP, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, isp := range all {
		if isp.IsActive {
			out = append(out, isp)
		}
	}
	return out, nil
}

func (r *ISPRepository) Create(_ context.Context, isp domain.ISP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.isps[isp.ID]; ok {
		return &domain.DuplicateError{Resource: "ISP", Field: "id", Value: isp.ID}
	}
	r.s.isps[isp.ID] = isp
	return nil
}

func (r *ISPRepository) Update(_ context.Context, isp domain.ISP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.isps[isp.ID]; !ok {
		return &domain.NotFoundError{Resource: "ISP", ID: isp.ID}
	}
	r.s.isps[isp.ID] = isp
	return nil
}

// TariffRepository implements domain.TariffRepository.
type TariffRepository struct{ s *Store }

func (r *TariffRepository) FindByID(_ context.Context, id string) (domain.Tariff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tariffs[id]
	if !ok {
		return domain.Tariff{}, &domain.NotFoundError{Resource: "Tariff", ID: id}
	}
	return cloneTariff(t), nil
}

// FindByFilter ignores sort; results are ordered by id.
func (r *TariffRepository) FindByFilter(_ context.Context, criteria domain.SearchCriteria, _ domain.SortOptions) ([]domain.Tariff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Tariff
	for _, t := range sortedValues(r.s.tariffs) {
		if t.IsActive && criteria.Matches(t) {
			out = append(out, cloneTariff(t))
		}
	}
	return out, nil
}

func (r *TariffRepository) FindByISPID(_ context.Context, ispID string) ([]domain.Tariff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Tariff
	for _, t := range sortedValues(r.s.tariffs) {
		if t.ISPID == ispID {
			out = append(out, cloneTariff(t))
		}
	}
	return out, nil
}

func (r *TariffRepository) Create(_ context.Context, t domain.Tariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tariffs[t.ID]; ok {
		return &domain.DuplicateError{Resource: "Tariff", Field: "id", Value: t.ID}
	}
	r.s.tariffs[t.ID] = cloneTariff(t)
	return nil
}

func (r *TariffRepository) Update(_ context.Context, t domain.Tariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tariffs[t.ID]; !ok {
		return &domain.NotFoundError{Resource: "Tariff", ID: t.ID}
	}
	r.s.tariffs[t.ID] = cloneTariff(t)
	return nil
}
