package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
)

// --- Search ---

type SearchTariffsInput struct {
	CityID            string  `query:"cityId" doc:"City the districtIds must belong to; does not filter on its own"`
	DistrictIDs       string  `query:"districtIds" doc:"Comma-separated district IDs; a tariff matches if sold in any"`
	Technologies      string  `query:"technologies" doc:"Comma-separated technologies" example:"fiber,adsl"`
	MinSpeedMbps      int     `query:"minSpeed"`
	MaxSpeedMbps      int     `query:"maxSpeed"`
	MinPriceMonthly   float64 `query:"minPrice"`
	MaxPriceMonthly   float64 `query:"maxPrice"`
	MaxContractLength string  `query:"maxContractLength" doc:"Longest acceptable contract in months; 0 means no contract"`
	FreeModem         bool    `query:"freeModem"`
	FreeInstallation  bool    `query:"freeInstallation"`
	NoContract        bool    `query:"noContract"`
	LimitedTime       bool    `query:"limitedTime"`
	SortBy            string  `query:"sortBy" enum:"price,speed,speed_price_ratio,priority" doc:"Omit for the default ranking"`
	SortOrder         string  `query:"sortOrder" enum:"asc,desc"`
}

func (in *SearchTariffsInput) criteria() (domain.SearchCriteria, domain.SortOptions, error) {
	c := domain.SearchCriteria{
		CityID:          in.CityID,
		DistrictIDs:     splitList(in.DistrictIDs),
		MinSpeedMbps:    in.MinSpeedMbps,
		MaxSpeedMbps:    in.MaxSpeedMbps,
		MinPriceMonthly: in.MinPriceMonthly,
		MaxPriceMonthly: in.MaxPriceMonthly,
		Campaigns: domain.CampaignFilter{
			FreeModem:        in.FreeModem,
			FreeInstallation: in.FreeInstallation,
			NoContract:       in.NoContract,
			LimitedTime:      in.LimitedTime,
		},
	}
	for _, t := range splitList(in.Technologies) {
		c.Technologies = append(c.Technologies, domain.Technology(t))
	}
	if in.MaxContractLength != "" {
		n, err := strconv.Atoi(in.MaxContractLength)
		if err != nil {
			return c, domain.SortOptions{}, &domain.ValidationError{
				Message: "maxContractLength must be a whole number of months",
				Details: map[string]any{"maxContractLength": in.MaxContractLength},
			}
		}
		c.MaxContractLength = &n
	}
	return c, domain.SortOptions{By: domain.SortField(in.SortBy), Order: domain.SortOrder(in.SortOrder)}, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type TariffList struct {
	Tariffs []RankedTariffResponse `json:"tariffs"`
	Total   int                    `json:"total"`
}

// --- Single tariff ---

type GetTariffInput struct {
	ID string `path:"id" doc:"Tariff ID"`
}

type TariffData struct {
	Tariff RankedTariffResponse `json:"tariff"`
}

type ISPList struct {
	ISPs []ISPResponse `json:"isps"`
}

type DistrictsInput struct {
	CityID string `path:"cityId"`
}

type DistrictList struct {
	Districts []DistrictResponse `json:"districts"`
}

func registerCatalog(api huma.API, svc *app.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID: "filter-options",
		Method:      http.MethodGet,
		Path:        "/api/filters",
		Summary:     "Search form options",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*Response[FilterOptionsResponse], error) {
		opts, err := svc.FilterOptions(ctx)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(toFilterOptionsResponse(opts)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "city-districts",
		Method:      http.MethodGet,
		Path:        "/api/filters/cities/{cityId}/districts",
		Summary:     "Districts of a city",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *DistrictsInput) (*Response[DistrictList], error) {
		districts, err := svc.DistrictsByCity(ctx, input.CityID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(DistrictList{Districts: toDistrictResponses(districts)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-tariffs",
		Method:      http.MethodGet,
		Path:        "/api/tariffs",
		Summary:     "Search and rank tariffs",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *SearchTariffsInput) (*Response[TariffList], error) {
		criteria, sort, err := input.criteria()
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		ranked, err := svc.Search(ctx, criteria, sort)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		resp := make([]RankedTariffResponse, len(ranked))
		for i, t := range ranked {
			resp[i] = toRankedTariffResponse(t)
		}
		return respond(TariffList{Tariffs: resp, Total: len(resp)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tariff",
		Method:      http.MethodGet,
		Path:        "/api/tariffs/{id}",
		Summary:     "Get a tariff by ID",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *GetTariffInput) (*Response[TariffData], error) {
		tariff, err := svc.GetTariff(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		if tariff == nil {
			return nil, toAPIError(ctx, &domain.NotFoundError{Resource: "Tariff", ID: input.ID})
		}
		return respond(TariffData{Tariff: toRankedTariffResponse(*tariff)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-isps",
		Method:      http.MethodGet,
		Path:        "/api/isps",
		Summary:     "List active providers",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*Response[ISPList], error) {
		isps, err := svc.ListISPs(ctx)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		resp := make([]ISPResponse, len(isps))
		for i, isp := range isps {
			resp[i] = toISPResponse(isp)
		}
		return respond(ISPList{ISPs: resp}), nil
	})
}
