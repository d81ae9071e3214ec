package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
)

// Request bodies mark every field optional so that missing values reach
// the service validator and come back as 400 with field details.

// --- Create Lead ---

type CreateLeadInput struct {
	Body struct {
		FullName   string `json:"fullName,omitempty" doc:"Customer name" example:"Aysel Mammadova"`
		Phone      string `json:"phone,omitempty" doc:"Local or international phone number" example:"+994501234567"`
		Email      string `json:"email,omitempty"`
		CityID     string `json:"cityId,omitempty"`
		DistrictID string `json:"districtId,omitempty"`
		Address    string `json:"address,omitempty"`
		TariffID   string `json:"tariffId,omitempty"`
		Source     string `json:"source,omitempty" doc:"comparison (default), direct, referral or campaign"`
	}
}

type LeadData struct {
	Lead LeadResponse `json:"lead"`
}

type LeadList struct {
	Leads []LeadResponse `json:"leads"`
}

type createdLead struct {
	Body Envelope[LeadData]
}

// --- Listings ---

type PageInput struct {
	Page  int `query:"page" minimum:"1" default:"1"`
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20"`
}

type ListLeadsInput struct {
	PageInput
	Status string `query:"status" doc:"Only leads in this status"`
}

type LeadIDInput struct {
	ID string `path:"id" doc:"Lead ID"`
}

// --- Update ---

type UpdateLeadInput struct {
	ID   string `path:"id" doc:"Lead ID"`
	Body struct {
		Status       string `json:"status,omitempty" doc:"Target status"`
		Notes        string `json:"notes,omitempty"`
		OutcomeNotes string `json:"outcomeNotes,omitempty"`
		Version      *int   `json:"version,omitempty" doc:"Version last read; a mismatch is rejected with 409"`
	}
}

type AssignLeadInput struct {
	Body struct {
		LeadID string `json:"leadId,omitempty"`
		ISPID  string `json:"ispId,omitempty"`
	}
}

func registerLeads(api huma.API, d Deps) {
	svc := d.Leads
	adminOnly := requireRoles(api, d.Auth, domain.RoleAdmin)
	adminOrISP := requireRoles(api, d.Auth, domain.RoleAdmin, domain.RoleISP)
	ispOnly := requireRoles(api, d.Auth, domain.RoleISP)

	huma.Register(api, huma.Operation{
		OperationID:   "create-lead",
		Method:        http.MethodPost,
		Path:          "/api/leads",
		Summary:       "Request a tariff",
		Tags:          []string{"Leads"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   limited(api, d.LeadLimiter),
	}, func(ctx context.Context, input *CreateLeadInput) (*createdLead, error) {
		b := input.Body
		lead, err := svc.Create(ctx, app.CreateLeadInput{
			FullName:   b.FullName,
			Phone:      b.Phone,
			Email:      b.Email,
			CityID:     b.CityID,
			DistrictID: b.DistrictID,
			Address:    b.Address,
			TariffID:   b.TariffID,
			Source:     domain.Source(b.Source),
		})
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &createdLead{Body: Envelope[LeadData]{Success: true, Data: LeadData{Lead: toLeadResponse(lead)}}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-leads",
		Method:      http.MethodGet,
		Path:        "/api/admin/leads",
		Summary:     "List leads, newest first",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{adminOnly},
	}, func(ctx context.Context, input *ListLeadsInput) (*Response[LeadList], error) {
		req := app.PageRequest{Page: input.Page, Limit: input.Limit}
		if input.Status == "" {
			page, req, err := svc.ListAll(ctx, req)
			if err != nil {
				return nil, toAPIError(ctx, err)
			}
			return respondPage(LeadList{Leads: toLeadResponses(page.Leads)},
				Meta{Page: req.Page, Limit: req.Limit, Total: page.Total}), nil
		}

		leads, err := svc.ListByStatus(ctx, domain.Status(input.Status))
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return pageOf(leads, req), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lead",
		Method:      http.MethodGet,
		Path:        "/api/admin/leads/{id}",
		Summary:     "Get a lead",
		Description: "ISP accounts may only read leads assigned to their ISP.",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{adminOrISP},
	}, func(ctx context.Context, input *LeadIDInput) (*Response[LeadData], error) {
		p, _ := PrincipalFrom(ctx)
		lead, err := svc.AuthorizeLeadAccess(ctx, p, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(LeadData{Lead: toLeadResponse(lead)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-lead",
		Method:      http.MethodPatch,
		Path:        "/api/admin/leads/{id}",
		Summary:     "Move a lead to a new status",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{adminOrISP},
	}, func(ctx context.Context, input *UpdateLeadInput) (*Response[LeadData], error) {
		p, _ := PrincipalFrom(ctx)
		if _, err := svc.AuthorizeLeadAccess(ctx, p, input.ID); err != nil {
			return nil, toAPIError(ctx, err)
		}
		b := input.Body
		lead, err := svc.UpdateStatus(ctx, input.ID, app.UpdateStatusInput{
			Status:       domain.Status(b.Status),
			Notes:        b.Notes,
			OutcomeNotes: b.OutcomeNotes,
			Version:      b.Version,
		})
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(LeadData{Lead: toLeadResponse(lead)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-lead",
		Method:      http.MethodPost,
		Path:        "/api/admin/assign-isp",
		Summary:     "Assign a lead to an ISP",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{adminOnly},
	}, func(ctx context.Context, input *AssignLeadInput) (*Response[LeadData], error) {
		if input.Body.LeadID == "" || input.Body.ISPID == "" {
			return nil, toAPIError(ctx, &domain.ValidationError{
				Message: "leadId and ispId are required",
				Details: map[string]any{"leadId": input.Body.LeadID, "ispId": input.Body.ISPID},
			})
		}
		lead, err := svc.AssignToISP(ctx, input.Body.LeadID, input.Body.ISPID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(LeadData{Lead: toLeadResponse(lead)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "isp-leads",
		Method:      http.MethodGet,
		Path:        "/api/isp/leads",
		Summary:     "Leads assigned to the caller's ISP",
		Tags:        []string{"ISP"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{ispOnly},
	}, func(ctx context.Context, input *PageInput) (*Response[LeadList], error) {
		p, _ := PrincipalFrom(ctx)
		leads, err := svc.ListByISP(ctx, p.ISPID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return pageOf(leads, app.PageRequest{Page: input.Page, Limit: input.Limit}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "isp-lead",
		Method:      http.MethodGet,
		Path:        "/api/isp/leads/{id}",
		Summary:     "One lead assigned to the caller's ISP",
		Tags:        []string{"ISP"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{ispOnly},
	}, func(ctx context.Context, input *LeadIDInput) (*Response[LeadData], error) {
		p, _ := PrincipalFrom(ctx)
		lead, err := svc.AuthorizeLeadAccess(ctx, p, input.ID)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(LeadData{Lead: toLeadResponse(lead)}), nil
	})
}

// pageOf slices an in-memory listing.
func pageOf(leads []domain.Lead, req app.PageRequest) *Response[LeadList] {
	req = req.Normalize()
	start := min((req.Page-1)*req.Limit, len(leads))
	end := min(start+req.Limit, len(leads))
	return respondPage(LeadList{Leads: toLeadResponses(leads[start:end])},
		Meta{Page: req.Page, Limit: req.Limit, Total: len(leads)})
}
