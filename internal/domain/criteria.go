package domain

// CampaignFilter holds the promotion flags a search asks for.
// Only flags set to true are checked.
type CampaignFilter struct {
	FreeModem        bool
	FreeInstallation bool
	NoContract       bool
	LimitedTime      bool
}

// SearchCriteria narrows the tariff catalog. Zero values mean "not set"
// except MaxContractLength, which uses nil.
type SearchCriteria struct {
	CityID            string
	DistrictIDs       []string
	Technologies      []Technology
	MinSpeedMbps      int
	MaxSpeedMbps      int
	MinPriceMonthly   float64
	MaxPriceMonthly   float64
	MaxContractLength *int
	Campaigns         CampaignFilter
}

// Matches applies every criterion except activity and the city cross-check.
func (c SearchCriteria) Matches(t Tariff) bool {
	if len(c.DistrictIDs) > 0 && !anyDistrict(t, c.DistrictIDs) {
		return false
	}
	if len(c.Technologies) > 0 && !containsTechnology(c.Technologies, t.Technology) {
		return false
	}
	if c.MinSpeedMbps > 0 && t.SpeedMbps < c.MinSpeedMbps {
		return false
	}
	if c.MaxSpeedMbps > 0 && t.SpeedMbps > c.MaxSpeedMbps {
		return false
	}
	if c.MinPriceMonthly > 0 && t.PriceMonthly < c.MinPriceMonthly {
		return false
	}
	if c.MaxPriceMonthly > 0 && t.PriceMonthly > c.MaxPriceMonthly {
		return false
	}
	if c.MaxContractLength != nil && t.ContractLengthMonths > *c.MaxContractLength {
		return false
	}
	return c.Campaigns.matches(t.Campaigns)
}

func (f CampaignFilter) matches(flags CampaignFlags) bool {
	switch {
	case f.FreeModem && !flags.FreeModem:
		return false
	case f.FreeInstallation && !flags.FreeInstallation:
		return false
	case f.NoContract && !flags.NoContract:
		return false
	case f.LimitedTime && !flags.LimitedTime:
		return false
	}
	return true
}

func anyDistrict(t Tariff, ids []string) bool {
	for _, id := range ids {
		if t.AvailableIn(id) {
			return true
		}
	}
	return false
}

func containsTechnology(list []Technology, t Technology) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// SortField selects a single-key ordering for search results.
type SortField string

const (
	SortByPrice           SortField = "price"
	SortBySpeed           SortField = "speed"
	SortBySpeedPriceRatio SortField = "speed_price_ratio"
	SortByPriority        SortField = "priority"
)

// SortOrder is the direction of an explicit sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions is the caller's explicit ordering. An empty By selects the
// default composite ranking.
type SortOptions struct {
	By    SortField
	Order SortOrder
}

// Valid reports whether the field is empty or known.
func (f SortField) Valid() bool {
	switch f {
	case "", SortByPrice, SortBySpeed, SortBySpeedPriceRatio, SortByPriority:
		return true
	}
	return false
}

// Valid reports whether the order is empty or known.
func (o SortOrder) Valid() bool {
	return o == "" || o == SortAsc || o == SortDesc
}
