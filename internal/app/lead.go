package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

// DefaultPhoneRegion is used when a phone number has no country prefix.
const DefaultPhoneRegion = "AZ"

// Pagination limits for lead listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit far from int overflow.
	MaxPage = 1_000_000
)

// LeadDeps bundles the collaborators of LeadService.
type LeadDeps struct {
	Leads       domain.LeadRepository
	Cities      domain.CityRepository
	Districts   domain.DistrictRepository
	ISPs        domain.ISPRepository
	Catalog     *CatalogService
	Validator   domain.TransitionValidator
	Notifier    domain.LeadNotifier
	PhoneRegion string
}

// LeadService owns every write to a lead.
type LeadService struct {
	leads       domain.LeadRepository
	cities      domain.CityRepository
	districts   domain.DistrictRepository
	isps        domain.ISPRepository
	catalog     *CatalogService
	validator   domain.TransitionValidator
	notifier    domain.LeadNotifier
	phoneRegion string
	now         func() time.Time
}

// NewLeadService creates a lead lifecycle service.
func NewLeadService(d LeadDeps) *LeadService {
	region := d.PhoneRegion
	if region == "" {
		region = DefaultPhoneRegion
	}
	return &LeadService{
		leads:       d.Leads,
		cities:      d.Cities,
		districts:   d.Districts,
		isps:        d.ISPs,
		catalog:     d.Catalog,
		validator:   d.Validator,
		notifier:    d.Notifier,
		phoneRegion: region,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateLeadInput is a customer's submission.
type CreateLeadInput struct {
	FullName   string        `json:"fullName" validate:"required,min=2,max=100"`
	Phone      string        `json:"phone" validate:"required"`
	Email      string        `json:"email" validate:"omitempty,email"`
	CityID     string        `json:"cityId" validate:"required"`
	DistrictID string        `json:"districtId" validate:"required"`
	Address    string        `json:"address" validate:"max=500"`
	TariffID   string        `json:"tariffId" validate:"required"`
	Source     domain.Source `json:"source" validate:"omitempty,oneof=comparison direct referral campaign"`
}

// Create validates the submission against the catalog and stores a new lead
// with a snapshot of the requested tariff.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (domain.Lead, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return domain.Lead{}, err
	}
	phone, err := normalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return domain.Lead{}, err
	}

	if _, err := s.cities.FindByID(ctx, in.CityID); err != nil {
		return domain.Lead{}, err
	}
	district, err := s.districts.FindByID(ctx, in.DistrictID)
	if err != nil {
		return domain.Lead{}, err
	}
	if district.CityID != in.CityID {
		return domain.Lead{}, &domain.ValidationError{
			Message: fmt.Sprintf("District %s does not belong to city %s", in.DistrictID, in.CityID),
			Details: map[string]any{"cityId": in.CityID, "districtId": in.DistrictID},
		}
	}

	tariff, err := s.catalog.GetTariff(ctx, in.TariffID)
	if err != nil {
		return domain.Lead{}, err
	}
	if tariff == nil {
		return domain.Lead{}, &domain.NotFoundError{Resource: "Tariff", ID: in.TariffID}
	}
	if !tariff.AvailableIn(in.DistrictID) {
		return domain.Lead{}, &domain.ValidationError{
			Message: "Selected tariff is not available in this district",
			Details: map[string]any{"tariffId": in.TariffID, "districtId": in.DistrictID},
		}
	}

	id, err := generateID()
	if err != nil {
		return domain.Lead{}, fmt.Errorf("generating lead id: %w", err)
	}

	lead := domain.NewLead(id, in.Source, domain.Snapshot(*tariff))
	lead.FullName = in.FullName
	lead.Phone = phone
	lead.Email = in.Email
	lead.CityID = in.CityID
	lead.DistrictID = in.DistrictID
	lead.Address = strings.TrimSpace(in.Address)

	if err := s.leads.Create(ctx, lead); err != nil {
		return domain.Lead{}, fmt.Errorf("creating lead: %w", err)
	}

	slog.InfoContext(ctx, "lead created", "lead_id", lead.ID, "tariff_id", lead.Tariff.TariffID)
	s.bestEffort(ctx, "lead_created", lead.ID, func(ctx context.Context) error {
		return s.notifier.LeadCreated(ctx, lead)
	})

	return lead, nil
}

// UpdateStatusInput moves a lead through the state machine. Version, when
// set, must match the stored version.
type UpdateStatusInput struct {
	Status       domain.Status `json:"status" validate:"required"`
	Notes        string        `json:"notes" validate:"max=1000"`
	OutcomeNotes string        `json:"outcomeNotes" validate:"max=1000"`
	Version      *int          `json:"version"`
}

// UpdateStatus applies a validated transition. Outcome notes, when given,
// are written after the status change.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (domain.Lead, error) {
	if err := validateInput(in); err != nil {
		return domain.Lead{}, err
	}
	if !in.Status.Valid() {
		return domain.Lead{}, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown status %q", in.Status),
			Details: map[string]any{"status": in.Status},
		}
	}

	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if in.Version != nil && *in.Version != lead.Version {
		return domain.Lead{}, &domain.VersionConflictError{LeadID: id, Expected: *in.Version}
	}
	if err := s.validator.Validate(ctx, lead.Status, in.Status); err != nil {
		return domain.Lead{}, err
	}

	from := lead.Status
	updated, err := s.leads.UpdateStatus(ctx, id, lead.Version, in.Status, in.Notes)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("updating lead status: %w", err)
	}

	slog.InfoContext(ctx, "lead status updated", "lead_id", id, "from", from, "to", in.Status)
	s.bestEffort(ctx, "status_updated", id, func(ctx context.Context) error {
		return s.notifier.StatusUpdated(ctx, updated, from, in.Status)
	})

	if in.OutcomeNotes != "" {
		updated.OutcomeNotes = in.OutcomeNotes
		updated, err = s.leads.Update(ctx, updated)
		if err != nil {
			return domain.Lead{}, fmt.Errorf("saving outcome notes: %w", err)
		}
	}

	return updated, nil
}

// AssignToISP hands the lead to an ISP. Repeating the call with the same
// ISP returns the lead unchanged; a different ISP is a conflict.
func (s *LeadService) AssignToISP(ctx context.Context, leadID, ispID string) (domain.Lead, error) {
	lead, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}
	isp, err := s.isps.FindByID(ctx, ispID)
	if err != nil {
		return domain.Lead{}, err
	}

	switch lead.AssignedISPID {
	case "":
	case ispID:
		return lead, nil
	default:
		return domain.Lead{}, &domain.AssignmentConflictError{
			LeadID:         leadID,
			CurrentISPID:   lead.AssignedISPID,
			RequestedISPID: ispID,
		}
	}

	updated, err := s.leads.AssignToISP(ctx, leadID, lead.Version, ispID)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("assigning lead: %w", err)
	}

	slog.InfoContext(ctx, "lead assigned", "lead_id", leadID, "isp_id", ispID)
	s.bestEffort(ctx, "lead_assigned", leadID, func(ctx context.Context) error {
		return s.notifier.LeadAssigned(ctx, updated, isp.Name)
	})

	return updated, nil
}

// GetByID returns a lead or a not-found error.
func (s *LeadService) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	return s.leads.FindByID(ctx, id)
}

// PageRequest selects one page of a listing. Zero values mean defaults.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// ListAll returns a page of leads, newest first.
func (s *LeadService) ListAll(ctx context.Context, req PageRequest) (domain.LeadPage, PageRequest, error) {
	req = req.Normalize()
	page, err := s.leads.FindAll(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return domain.LeadPage{}, req, fmt.Errorf("listing leads: %w", err)
	}
	return page, req, nil
}

// ListByStatus returns every lead in the given status.
func (s *LeadService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Lead, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown status %q", status),
			Details: map[string]any{"status": status},
		}
	}
	leads, err := s.leads.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing leads by status: %w", err)
	}
	return leads, nil
}

// ListByISP returns the leads assigned to an existing ISP.
func (s *LeadService) ListByISP(ctx context.Context, ispID string) ([]domain.Lead, error) {
	if _, err := s.isps.FindByID(ctx, ispID); err != nil {
		return nil, err
	}
	leads, err := s.leads.FindByAssignedISP(ctx, ispID)
	if err != nil {
		return nil, fmt.Errorf("listing leads by isp: %w", err)
	}
	return leads, nil
}

// AuthorizeLeadAccess loads a lead the principal may act on. Admins see
// every lead; ISP principals only leads assigned to their ISP.
func (s *LeadService) AuthorizeLeadAccess(ctx context.Context, p domain.Principal, id string) (domain.Lead, error) {
	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if p.IsAdmin() {
		return lead, nil
	}
	if lead.AssignedISPID == "" {
		return domain.Lead{}, &domain.ForbiddenError{Message: "Lead is not assigned to your ISP"}
	}
	if err := p.CheckISPOwnership(lead.AssignedISPID); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// bestEffort runs a notification and logs its failure. The request context
// is detached from cancellation so a finished request does not abort it.
func (s *LeadService) bestEffort(ctx context.Context, event, leadID string, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		slog.WarnContext(ctx, "lead notification failed",
			"event", event,
			"lead_id", leadID,
			"error", err,
		)
	}
}

// isNotFound reports whether err is a not-found condition.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
