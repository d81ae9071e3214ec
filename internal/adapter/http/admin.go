package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
)

// ISPFields are the writable ISP attributes. Nil fields are left alone on
// PATCH and default to their zero value on POST.
type ISPFields struct {
	Name          *string `json:"name,omitempty"`
	Logo          *string `json:"logo,omitempty"`
	Description   *string `json:"description,omitempty"`
	ContactEmail  *string `json:"contactEmail,omitempty"`
	ContactPhone  *string `json:"contactPhone,omitempty"`
	Website       *string `json:"website,omitempty"`
	PriorityScore *int    `json:"priorityScore,omitempty" doc:"0-100, higher ranks first"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

func (f ISPFields) overlay(in app.ISPInput) app.ISPInput {
	set(&in.Name, f.Name)
	set(&in.Logo, f.Logo)
	set(&in.Description, f.Description)
	set(&in.ContactEmail, f.ContactEmail)
	set(&in.ContactPhone, f.ContactPhone)
	set(&in.Website, f.Website)
	set(&in.PriorityScore, f.PriorityScore)
	set(&in.IsActive, f.IsActive)
	return in
}

// TariffFields are the writable tariff attributes.
type TariffFields struct {
	ISPID                *string               `json:"ispId,omitempty"`
	Name                 *string               `json:"name,omitempty"`
	Description          *string               `json:"description,omitempty"`
	Technology           *string               `json:"technology,omitempty" doc:"fiber, adsl, vdsl, wireless or 4.5g"`
	SpeedMbps            *int                  `json:"speedMbps,omitempty"`
	UploadSpeedMbps      *int                  `json:"uploadSpeedMbps,omitempty"`
	PriceMonthly         *float64              `json:"priceMonthly,omitempty" doc:"AZN per month"`
	ContractLengthMonths *int                  `json:"contractLengthMonths,omitempty"`
	DataLimitGB          *int                  `json:"dataLimitGB,omitempty" doc:"Omit for unlimited"`
	Campaigns            *domain.CampaignFlags `json:"campaigns,omitempty"`
	AvailableDistrictIDs []string              `json:"availableDistrictIds,omitempty"`
	IsActive             *bool                 `json:"isActive,omitempty"`
}

func (f TariffFields) overlay(in app.TariffInput) app.TariffInput {
	set(&in.ISPID, f.ISPID)
	set(&in.Name, f.Name)
	set(&in.Description, f.Description)
	if f.Technology != nil {
		in.Technology = domain.Technology(*f.Technology)
	}
	set(&in.SpeedMbps, f.SpeedMbps)
	if f.UploadSpeedMbps != nil {
		in.UploadSpeedMbps = f.UploadSpeedMbps
	}
	set(&in.PriceMonthly, f.PriceMonthly)
	set(&in.ContractLengthMonths, f.ContractLengthMonths)
	if f.DataLimitGB != nil {
		in.DataLimitGB = f.DataLimitGB
	}
	set(&in.Campaigns, f.Campaigns)
	if f.AvailableDistrictIDs != nil {
		in.AvailableDistrictIDs = f.AvailableDistrictIDs
	}
	set(&in.IsActive, f.IsActive)
	return in
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type CreateISPInput struct {
	Body ISPFields
}

type UpdateISPInput struct {
	ID   string `path:"id" doc:"ISP ID"`
	Body ISPFields
}

type ISPData struct {
	ISP ISPResponse `json:"isp"`
}

type CreateTariffInput struct {
	Body TariffFields
}

type UpdateTariffInput struct {
	ID   string `path:"id" doc:"Tariff ID"`
	Body TariffFields
}

type ISPTariffsInput struct {
	ID string `path:"id" doc:"ISP ID"`
}

type AdminTariffData struct {
	Tariff TariffResponse `json:"tariff"`
}

type AdminTariffList struct {
	Tariffs []TariffResponse `json:"tariffs"`
}

type CreateUserInput struct {
	Body struct {
		Email    string `json:"email,omitempty"`
		Password string `json:"password,omitempty"`
		Role     string `json:"role,omitempty" doc:"admin, isp or user"`
		ISPID    string `json:"ispId,omitempty" doc:"Required for isp accounts"`
		FullName string `json:"fullName,omitempty"`
	}
}

type UserData struct {
	User UserResponse `json:"user"`
}

type createdISP struct {
	Body Envelope[ISPData]
}

type createdTariff struct {
	Body Envelope[AdminTariffData]
}

type createdUser struct {
	Body Envelope[UserData]
}

func registerAdmin(api huma.API, svc *app.AdminService, auth Authenticator) {
	adminOnly := huma.Middlewares{requireRoles(api, auth, domain.RoleAdmin)}

	huma.Register(api, huma.Operation{
		OperationID:   "create-isp",
		Method:        http.MethodPost,
		Path:          "/api/admin/isps",
		Summary:       "Register an ISP",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
		Middlewares:   adminOnly,
	}, func(ctx context.Context, input *CreateISPInput) (*createdISP, error) {
		isp, err := svc.CreateISP(ctx, input.Body.overlay(app.ISPInput{IsActive: true}))
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &createdISP{Body: Envelope[ISPData]{Success: true, Data: ISPData{ISP: toISPResponse(isp)}}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-isp",
		Method:      http.MethodPatch,
		Path:        "/api/admin/isps/{id}",
		Summary:     "Update an ISP",
		Description: "Only the fields present in the body change.",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: adminOnly,
	}, func(ctx context.Context, input *UpdateISPInput) (*Response[ISPData], error) {
		current, err := svc.GetISP(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		isp, err := svc.UpdateISP(ctx, input.ID, input.Body.overlay(app.ISPInputOf(current)))
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(ISPData{ISP: toISPResponse(isp)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "isp-tariffs",
		Method:      http.MethodGet,
		Path:        "/api/admin/isps/{id}/tariffs",
		Summary:     "Every tariff of an ISP",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: adminOnly,
	}, func(ctx context.Context, input *ISPTariffsInput) (*Response[AdminTariffList], error) {
		tariffs, err := svc.ListTariffsByISP(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		resp := make([]TariffResponse, len(tariffs))
		for i, t := range tariffs {
			resp[i] = toTariffResponse(t)
		}
		return respond(AdminTariffList{Tariffs: resp}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-tariff",
		Method:        http.MethodPost,
		Path:          "/api/admin/tariffs",
		Summary:       "Add a tariff",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
		Middlewares:   adminOnly,
	}, func(ctx context.Context, input *CreateTariffInput) (*createdTariff, error) {
		tariff, err := svc.CreateTariff(ctx, input.Body.overlay(app.TariffInput{IsActive: true}))
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &createdTariff{Body: Envelope[AdminTariffData]{Success: true, Data: AdminTariffData{Tariff: toTariffResponse(tariff)}}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tariff",
		Method:      http.MethodPatch,
		Path:        "/api/admin/tariffs/{id}",
		Summary:     "Update a tariff",
		Description: "Only the fields present in the body change.",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: adminOnly,
	}, func(ctx context.Context, input *UpdateTariffInput) (*Response[AdminTariffData], error) {
		current, err := svc.GetTariff(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		tariff, err := svc.UpdateTariff(ctx, input.ID, input.Body.overlay(app.TariffInputOf(current)))
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(AdminTariffData{Tariff: toTariffResponse(tariff)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/api/admin/users",
		Summary:       "Create an account",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
		Middlewares:   adminOnly,
	}, func(ctx context.Context, input *CreateUserInput) (*createdUser, error) {
		b := input.Body
		user, err := svc.CreateUser(ctx, app.UserInput{
			Email:    b.Email,
			Password: b.Password,
			Role:     domain.Role(b.Role),
			ISPID:    b.ISPID,
			FullName: b.FullName,
		})
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &createdUser{Body: Envelope[UserData]{Success: true, Data: UserData{User: toUserResponse(user)}}}, nil
	})
}
