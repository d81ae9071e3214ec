package http

import (
	"time"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
)

// CityResponse is the API representation of a city.
type CityResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NameAz   string `json:"nameAz"`
	NameEn   string `json:"nameEn"`
	IsActive bool   `json:"isActive"`
}

func toCityResponse(c domain.City) CityResponse {
	return CityResponse{ID: c.ID, Name: c.Name, NameAz: c.NameAz, NameEn: c.NameEn, IsActive: c.IsActive}
}

// DistrictResponse is the API representation of a district.
type DistrictResponse struct {
	ID       string `json:"id"`
	CityID   string `json:"cityId"`
	Name     string `json:"name"`
	NameAz   string `json:"nameAz"`
	NameEn   string `json:"nameEn"`
	IsActive bool   `json:"isActive"`
}

func toDistrictResponse(d domain.District) DistrictResponse {
	return DistrictResponse{ID: d.ID, CityID: d.CityID, Name: d.Name, NameAz: d.NameAz, NameEn: d.NameEn, IsActive: d.IsActive}
}

func toDistrictResponses(ds []domain.District) []DistrictResponse {
	out := make([]DistrictResponse, len(ds))
	for i, d := range ds {
		out[i] = toDistrictResponse(d)
	}
	return out
}

// ISPResponse is the API representation of an internet service provider.
type ISPResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Logo          string    `json:"logo,omitempty"`
	Description   string    `json:"description,omitempty"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	Website       string    `json:"website,omitempty"`
	PriorityScore int       `json:"priorityScore" doc:"Ranking boost, 0-100"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toISPResponse(i domain.ISP) ISPResponse {
	return ISPResponse{
		ID:            i.ID,
		Name:          i.Name,
		Logo:          i.Logo,
		Description:   i.Description,
		ContactEmail:  i.ContactEmail,
		ContactPhone:  i.ContactPhone,
		Website:       i.Website,
		PriorityScore: i.PriorityScore,
		IsActive:      i.IsActive,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// TariffResponse is the API representation of a tariff.
type TariffResponse struct {
	ID                   string               `json:"id"`
	ISPID                string               `json:"ispId"`
	Name                 string               `json:"name"`
	Description          string               `json:"description,omitempty"`
	Technology           domain.Technology    `json:"technology"`
	SpeedMbps            int                  `json:"speedMbps"`
	UploadSpeedMbps      *int                 `json:"uploadSpeedMbps,omitempty"`
	PriceMonthly         float64              `json:"priceMonthly" doc:"Monthly price in AZN"`
	ContractLengthMonths int                  `json:"contractLengthMonths"`
	DataLimitGB          *int                 `json:"dataLimitGB,omitempty" doc:"Omitted for unlimited plans"`
	Campaigns            domain.CampaignFlags `json:"campaigns"`
	AvailableDistrictIDs []string             `json:"availableDistrictIds"`
	IsActive             bool                 `json:"isActive"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

func toTariffResponse(t domain.Tariff) TariffResponse {
	districts := t.AvailableDistrictIDs
	if districts == nil {
		districts = []string{}
	}
	return TariffResponse{
		ID:                   t.ID,
		ISPID:                t.ISPID,
		Name:                 t.Name,
		Description:          t.Description,
		Technology:           t.Technology,
		SpeedMbps:            t.SpeedMbps,
		UploadSpeedMbps:      t.UploadSpeedMbps,
		PriceMonthly:         t.PriceMonthly,
		ContractLengthMonths: t.ContractLengthMonths,
		DataLimitGB:          t.DataLimitGB,
		Campaigns:            t.Campaigns,
		AvailableDistrictIDs: districts,
		IsActive:             t.IsActive,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// RankedTariffResponse is a search result: a tariff with its ISP and the
// metrics used to rank it.
type RankedTariffResponse struct {
	TariffResponse
	ISP             ISPResponse `json:"isp"`
	SpeedPriceRatio float64     `json:"speedPriceRatio" doc:"Mbps per AZN"`
	CampaignScore   float64     `json:"campaignScore"`
}

func toRankedTariffResponse(t domain.RankedTariff) RankedTariffResponse {
	return RankedTariffResponse{
		TariffResponse:  toTariffResponse(t.Tariff),
		ISP:             toISPResponse(t.ISP),
		SpeedPriceRatio: t.SpeedPriceRatio,
		CampaignScore:   t.CampaignScore,
	}
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID             string                `json:"id"`
	Status         domain.Status         `json:"status"`
	Source         domain.Source         `json:"source"`
	FullName       string                `json:"fullName"`
	Phone          string                `json:"phone" doc:"E.164"`
	Email          string                `json:"email,omitempty"`
	CityID         string                `json:"cityId"`
	DistrictID     string                `json:"districtId"`
	Address        string                `json:"address,omitempty"`
	TariffSnapshot domain.TariffSnapshot `json:"tariffSnapshot"`
	AssignedISPID  string                `json:"assignedIspId,omitempty"`
	AssignedAt     *time.Time            `json:"assignedAt,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	OutcomeNotes   string                `json:"outcomeNotes,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	ConvertedAt    *time.Time            `json:"convertedAt,omitempty"`
	Version        int                   `json:"version" doc:"Send back on PATCH to detect concurrent edits"`
}

func toLeadResponse(l domain.Lead) LeadResponse {
	return LeadResponse{
		ID:             l.ID,
		Status:         l.Status,
		Source:         l.Source,
		FullName:       l.FullName,
		Phone:          l.Phone,
		Email:          l.Email,
		CityID:         l.CityID,
		DistrictID:     l.DistrictID,
		Address:        l.Address,
		TariffSnapshot: l.Tariff,
		AssignedISPID:  l.AssignedISPID,
		AssignedAt:     l.AssignedAt,
		Notes:          l.Notes,
		OutcomeNotes:   l.OutcomeNotes,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		ConvertedAt:    l.ConvertedAt,
		Version:        l.Version,
	}
}

func toLeadResponses(ls []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, len(ls))
	for i, l := range ls {
		out[i] = toLeadResponse(l)
	}
	return out
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	ISPID       string      `json:"ispId,omitempty"`
	FullName    string      `json:"fullName,omitempty"`
	IsActive    bool        `json:"isActive"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		ISPID:       u.ISPID,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

// RangeResponse is a labelled search bucket.
type RangeResponse struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// FilterOptionsResponse feeds the search form.
type FilterOptionsResponse struct {
	Cities       []CityResponse      `json:"cities"`
	Districts    []DistrictResponse  `json:"districts"`
	Technologies []domain.Technology `json:"technologies"`
	SpeedRanges  []RangeResponse     `json:"speedRanges"`
	PriceRanges  []RangeResponse     `json:"priceRanges"`
}

func toFilterOptionsResponse(o app.FilterOptions) FilterOptionsResponse {
	cities := make([]CityResponse, len(o.Cities))
	for i, c := range o.Cities {
		cities[i] = toCityResponse(c)
	}
	ranges := func(rs []app.Range) []RangeResponse {
		out := make([]RangeResponse, len(rs))
		for i, r := range rs {
			out[i] = RangeResponse{Min: r.Min, Max: r.Max, Label: r.Label}
		}
		return out
	}
	return FilterOptionsResponse{
		Cities:       cities,
		Districts:    toDistrictResponses(o.Districts),
		Technologies: o.Technologies,
		SpeedRanges:  ranges(o.SpeedRanges),
		PriceRanges:  ranges(o.PriceRanges),
	}
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	ExpiresIn        int          `json:"expiresIn" doc:"Access token lifetime in seconds"`
	RefreshExpiresAt time.Time    `json:"refreshExpiresAt"`
	User             UserResponse `json:"user"`
}

func toAuthResponse(r app.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:      r.Tokens.AccessToken,
		RefreshToken:     r.Tokens.RefreshToken,
		ExpiresIn:        int(r.Tokens.ExpiresIn.Seconds()),
		RefreshExpiresAt: r.Tokens.RefreshExpiresAt,
		User:             toUserResponse(r.User),
	}
}
