package app

import (
	"cmp"
	"slices"

	"github.com/neomorfeo/nettap/internal/domain"
)

// Rank orders tariffs in place. With no explicit sort field it applies the
// default ranking: campaign score, then speed/price ratio, then ISP priority,
// all descending, with the tariff id as the final tie-break. An explicit
// field gives a stable single-key sort, ascending unless desc is requested.
func Rank(items []domain.RankedTariff, opts domain.SortOptions) {
	if opts.By == "" {
		slices.SortStableFunc(items, compareDefault)
		return
	}

	key := sortKey(opts.By)
	desc := opts.Order == domain.SortDesc
	slices.SortStableFunc(items, func(a, b domain.RankedTariff) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
}

func compareDefault(a, b domain.RankedTariff) int {
	if c := cmp.Compare(b.CampaignScore, a.CampaignScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SpeedPriceRatio, a.SpeedPriceRatio); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ISP.PriorityScore, a.ISP.PriorityScore); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func sortKey(field domain.SortField) func(domain.RankedTariff) float64 {
	switch field {
	case domain.SortByPrice:
		return func(t domain.RankedTariff) float64 { return t.PriceMonthly }
	case domain.SortBySpeed:
		return func(t domain.RankedTariff) float64 { return float64(t.SpeedMbps) }
	case domain.SortBySpeedPriceRatio:
		return func(t domain.RankedTariff) float64 { return t.SpeedPriceRatio }
	default:
		return func(t domain.RankedTariff) float64 { return float64(t.ISP.PriorityScore) }
	}
}
