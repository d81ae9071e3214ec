package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/nettap/internal/domain"
)

// Range is a labelled numeric bucket offered to search clients.
type Range struct {
	Min   float64
	Max   float64
	Label string
}

// FilterOptions is everything a client needs to build a search form.
type FilterOptions struct {
	Cities       []domain.City
	Districts    []domain.District
	Technologies []domain.Technology
	SpeedRanges  []Range
	PriceRanges  []Range
}

var (
	speedRanges = []Range{
		{Min: 0, Max: 25, Label: "Up to 25 Mbps"},
		{Min: 25, Max: 50, Label: "25-50 Mbps"},
		{Min: 50, Max: 100, Label: "50-100 Mbps"},
		{Min: 100, Max: 500, Label: "100+ Mbps"},
	}
	priceRanges = []Range{
		{Min: 0, Max: 15, Label: "Up to 15"},
		{Min: 15, Max: 25, Label: "15-25"},
		{Min: 25, Max: 40, Label: "25-40"},
		{Min: 40, Max: 100, Label: "40+"},
	}
)

// FilterOptions lists the active cities and districts plus the static buckets.
func (s *CatalogService) FilterOptions(ctx context.Context) (FilterOptions, error) {
	cities, err := s.cities.FindActive(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("listing cities: %w", err)
	}
	all, err := s.districts.FindAll(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("listing districts: %w", err)
	}
	districts := make([]domain.District, 0, len(all))
	for _, d := range all {
		if d.IsActive {
			districts = append(districts, d)
		}
	}

	return FilterOptions{
		Cities:       cities,
		Districts:    districts,
		Technologies: domain.Technologies,
		SpeedRanges:  speedRanges,
		PriceRanges:  priceRanges,
	}, nil
}

// DistrictsByCity returns the active districts of an existing city.
func (s *CatalogService) DistrictsByCity(ctx context.Context, cityID string) ([]domain.District, error) {
	if _, err := s.cities.FindByID(ctx, cityID); err != nil {
		return nil, err
	}
	districts, err := s.districts.FindByCityID(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("listing districts: %w", err)
	}
	return districts, nil
}
