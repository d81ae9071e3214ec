package domain

import "time"

// Technology is the access technology a tariff is delivered over.
type Technology string

const (
	TechnologyFiber    Technology = "fiber"
	TechnologyADSL     Technology = "adsl"
	TechnologyVDSL     Technology = "vdsl"
	TechnologyWireless Technology = "wireless"
	TechnologyMobile   Technology = "4.5g"
)

// Technologies lists every supported technology in display order.
var Technologies = []Technology{
	TechnologyFiber,
	TechnologyADSL,
	TechnologyVDSL,
	TechnologyWireless,
	TechnologyMobile,
}

// Valid reports whether t is a known technology.
func (t Technology) Valid() bool {
	for _, known := range Technologies {
		if t == known {
			return true
		}
	}
	return false
}

// City is reference data; leads and districts point at it.
type City struct {
	ID       string
	Name     string
	NameAz   string
	NameEn   string
	IsActive bool
}

// District belongs to exactly one City.
type District struct {
	ID       string
	CityID   string
	Name     string
	NameAz   string
	NameEn   string
	IsActive bool
}

// ISP is an internet service provider selling tariffs.
type ISP struct {
	ID            string
	Name          string
	Logo          string
	Description   string
	ContactEmail  string
	ContactPhone  string
	Website       string
	PriorityScore int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CampaignFlags describes the promotions attached to a tariff.
type CampaignFlags struct {
	FreeModem          bool    `json:"freeModem"`
	FreeInstallation   bool    `json:"freeInstallation"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	GiftIncluded       string  `json:"giftIncluded,omitempty"`
	LimitedTime        bool    `json:"limitedTime"`
	NoContract         bool    `json:"noContract"`
}

// Campaign score weights.
const (
	scoreFreeModem        = 10
	scoreFreeInstallation = 10
	scoreNoContract       = 15
	scoreLimitedTime      = 5
)

// Score is the weighted promotion value used by the default ranking.
// The discount percentage is added as is.
func (c CampaignFlags) Score() float64 {
	var score float64
	if c.FreeModem {
		score += scoreFreeModem
	}
	if c.FreeInstallation {
		score += scoreFreeInstallation
	}
	if c.NoContract {
		score += scoreNoContract
	}
	if c.LimitedTime {
		score += scoreLimitedTime
	}
	return score + c.DiscountPercentage
}

// Tariff is a priced internet offering owned by one ISP.
type Tariff struct {
	ID                   string
	ISPID                string
	Name                 string
	Description          string
	Technology           Technology
	SpeedMbps            int
	UploadSpeedMbps      *int
	PriceMonthly         float64
	ContractLengthMonths int
	DataLimitGB          *int
	Campaigns            CampaignFlags
	AvailableDistrictIDs []string
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SpeedPriceRatio is Mbps per currency unit. A zero price yields zero.
func (t Tariff) SpeedPriceRatio() float64 {
	if t.PriceMonthly <= 0 {
		return 0
	}
	return float64(t.SpeedMbps) / t.PriceMonthly
}

// AvailableIn reports whether the tariff is sold in the district.
func (t Tariff) AvailableIn(districtID string) bool {
	for _, id := range t.AvailableDistrictIDs {
		if id == districtID {
			return true
		}
	}
	return false
}

// RankedTariff is a tariff joined with its ISP and the derived ranking metrics.
type RankedTariff struct {
	Tariff
	ISP             ISP
	SpeedPriceRatio float64
	CampaignScore   float64
}

// Enrich joins a tariff with its owning ISP.
func Enrich(t Tariff, isp ISP) RankedTariff {
	return RankedTariff{
		Tariff:          t,
		ISP:             isp,
		SpeedPriceRatio: t.SpeedPriceRatio(),
		CampaignScore:   t.Campaigns.Score(),
	}
}
