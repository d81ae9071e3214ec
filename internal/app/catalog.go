package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/neomorfeo/nettap/internal/domain"
)

// CatalogService searches and ranks the tariff catalog. It reads fresh data
// on every call and keeps no state between calls.
type CatalogService struct {
	cities    domain.CityRepository
	districts domain.DistrictRepository
	isps      domain.ISPRepository
	tariffs   domain.TariffRepository
}

// NewCatalogService creates a service over the catalog repositories.
func NewCatalogService(
	cities domain.CityRepository,
	districts domain.DistrictRepository,
	isps domain.ISPRepository,
	tariffs domain.TariffRepository,
) *CatalogService {
	return &CatalogService{
		cities:    cities,
		districts: districts,
		isps:      isps,
		tariffs:   tariffs,
	}
}

// Search filters active tariffs, joins each with its ISP and ranks them.
func (s *CatalogService) Search(ctx context.Context, criteria domain.SearchCriteria, opts domain.SortOptions) ([]domain.RankedTariff, error) {
	if err := validateCriteria(criteria, opts); err != nil {
		return nil, err
	}
	if err := s.checkDistrictsInCity(ctx, criteria); err != nil {
		return nil, err
	}

	found, err := s.tariffs.FindByFilter(ctx, criteria, opts)
	if err != nil {
		return nil, fmt.Errorf("finding tariffs: %w", err)
	}

	slices.SortFunc(found, func(a, b domain.Tariff) int { return cmp.Compare(a.ID, b.ID) })

	lookup := s.ispLookup()
	out := make([]domain.RankedTariff, 0, len(found))
	for _, t := range found {
		if !t.IsActive || !criteria.Matches(t) {
			continue
		}
		isp, err := lookup(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Enrich(t, isp))
	}

	Rank(out, opts)
	return out, nil
}

// GetTariff returns the enriched tariff, or nil when it does not exist.
func (s *CatalogService) GetTariff(ctx context.Context, id string) (*domain.RankedTariff, error) {
	t, err := s.tariffs.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding tariff: %w", err)
	}

	isp, err := s.ispLookup()(ctx, t)
	if err != nil {
		return nil, err
	}
	ranked := domain.Enrich(t, isp)
	return &ranked, nil
}

// ListISPs returns the active providers.
func (s *CatalogService) ListISPs(ctx context.Context) ([]domain.ISP, error) {
	isps, err := s.isps.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing isps: %w", err)
	}
	return isps, nil
}

// ispLookup resolves tariff owners, memoised for the lifetime of one call.
func (s *CatalogService) ispLookup() func(context.Context, domain.Tariff) (domain.ISP, error) {
	seen := make(map[string]domain.ISP)
	return func(ctx context.Context, t domain.Tariff) (domain.ISP, error) {
		if isp, ok := seen[t.ISPID]; ok {
			return isp, nil
		}
		isp, err := s.isps.FindByID(ctx, t.ISPID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ISP{}, &domain.IntegrityError{
				Message: fmt.Sprintf("tariff %s references missing ISP %s", t.ID, t.ISPID),
			}
		}
		if err != nil {
			return domain.ISP{}, fmt.Errorf("finding isp %s: %w", t.ISPID, err)
		}
		seen[t.ISPID] = isp
		return isp, nil
	}
}

func (s *CatalogService) checkDistrictsInCity(ctx context.Context, criteria domain.SearchCriteria) error {
	if criteria.CityID == "" || len(criteria.DistrictIDs) == 0 {
		return nil
	}

	inCity, err := s.districts.FindByCityID(ctx, criteria.CityID)
	if err != nil {
		return fmt.Errorf("finding districts of city: %w", err)
	}
	valid := make(map[string]bool, len(inCity))
	for _, d := range inCity {
		valid[d.ID] = true
	}

	var invalid []string
	for _, id := range criteria.DistrictIDs {
		if !valid[id] {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return &domain.ValidationError{
			Message: "Some districts do not belong to the selected city",
			Details: map[string]any{
				"cityId":             criteria.CityID,
				"invalidDistrictIds": invalid,
			},
		}
	}
	return nil
}

func validateCriteria(c domain.SearchCriteria, opts domain.SortOptions) error {
	invalid := func(msg string, details map[string]any) error {
		return &domain.ValidationError{Message: msg, Details: details}
	}

	switch {
	case c.MinSpeedMbps < 0 || c.MaxSpeedMbps < 0:
		return invalid("Speed bounds must not be negative", nil)
	case c.MaxSpeedMbps > 0 && c.MinSpeedMbps > c.MaxSpeedMbps:
		return invalid("minSpeedMbps must not exceed maxSpeedMbps",
			map[string]any{"minSpeedMbps": c.MinSpeedMbps, "maxSpeedMbps": c.MaxSpeedMbps})
	case c.MinPriceMonthly < 0 || c.MaxPriceMonthly < 0:
		return invalid("Price bounds must not be negative", nil)
	case c.MaxPriceMonthly > 0 && c.MinPriceMonthly > c.MaxPriceMonthly:
		return invalid("minPriceMonthly must not exceed maxPriceMonthly",
			map[string]any{"minPriceMonthly": c.MinPriceMonthly, "maxPriceMonthly": c.MaxPriceMonthly})
	case c.MaxContractLength != nil && *c.MaxContractLength < 0:
		return invalid("maxContractLength must not be negative", nil)
	case !opts.By.Valid():
		return invalid(fmt.Sprintf("Unknown sort field %q", opts.By), map[string]any{"sortBy": opts.By})
	case !opts.Order.Valid():
		return invalid(fmt.Sprintf("Unknown sort order %q", opts.Order), map[string]any{"sortOrder": opts.Order})
	}

	for _, t := range c.Technologies {
		if !t.Valid() {
			return invalid(fmt.Sprintf("Unknown technology %q", t), map[string]any{"technology": t})
		}
	}
	return nil
}
