package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

// AdminService manages the catalog and accounts.
type AdminService struct {
	isps      domain.ISPRepository
	tariffs   domain.TariffRepository
	districts domain.DistrictRepository
	users     domain.UserRepository
	hasher    domain.PasswordHasher
	now       func() time.Time
}

// NewAdminService creates an admin service.
func NewAdminService(
	isps domain.ISPRepository,
	tariffs domain.TariffRepository,
	districts domain.DistrictRepository,
	users domain.UserRepository,
	hasher domain.PasswordHasher,
) *AdminService {
	return &AdminService{
		isps:      isps,
		tariffs:   tariffs,
		districts: districts,
		users:     users,
		hasher:    hasher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ISPInput holds the editable fields of an ISP.
type ISPInput struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Logo          string `json:"logo" validate:"max=500"`
	Description   string `json:"description" validate:"max=1000"`
	ContactEmail  string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone  string `json:"contactPhone" validate:"max=30"`
	Website       string `json:"website" validate:"omitempty,url"`
	PriorityScore int    `json:"priorityScore" validate:"min=0,max=100"`
	IsActive      bool   `json:"isActive"`
}

func (in ISPInput) apply(isp *domain.ISP) {
	isp.Name = strings.TrimSpace(in.Name)
	isp.Logo = in.Logo
	isp.Description = in.Description
	isp.ContactEmail = in.ContactEmail
	isp.ContactPhone = in.ContactPhone
	isp.Website = in.Website
	isp.PriorityScore = in.PriorityScore
	isp.IsActive = in.IsActive
}

// ISPInputOf returns the editable fields of isp, the base for partial updates.
func ISPInputOf(isp domain.ISP) ISPInput {
	return ISPInput{
		Name:          isp.Name,
		Logo:          isp.Logo,
		Description:   isp.Description,
		ContactEmail:  isp.ContactEmail,
		ContactPhone:  isp.ContactPhone,
		Website:       isp.Website,
		PriorityScore: isp.PriorityScore,
		IsActive:      isp.IsActive,
	}
}

// GetISP returns any ISP, active or not.
func (s *AdminService) GetISP(ctx context.Context, id string) (domain.ISP, error) {
	return s.isps.FindByID(ctx, id)
}

// CreateISP registers a new provider.
func (s *AdminService) CreateISP(ctx context.Context, in ISPInput) (domain.ISP, error) {
	if err := validateInput(in); err != nil {
		return domain.ISP{}, err
	}
	id, err := generateID()
	if err != nil {
		return domain.ISP{}, fmt.Errorf("generating isp id: %w", err)
	}
	now := s.now()
	isp := domain.ISP{ID: id, CreatedAt: now, UpdatedAt: now}
	in.apply(&isp)

	if err := s.isps.Create(ctx, isp); err != nil {
		return domain.ISP{}, fmt.Errorf("creating isp: %w", err)
	}
	return isp, nil
}

// UpdateISP replaces the editable fields of an ISP.
func (s *AdminService) UpdateISP(ctx context.Context, id string, in ISPInput) (domain.ISP, error) {
	if err := validateInput(in); err != nil {
		return domain.ISP{}, err
	}
	isp, err := s.isps.FindByID(ctx, id)
	if err != nil {
		return domain.ISP{}, err
	}
	in.apply(&isp)
	isp.UpdatedAt = s.now()

	if err := s.isps.Update(ctx, isp); err != nil {
		return domain.ISP{}, fmt.Errorf("updating isp: %w", err)
	}
	return isp, nil
}

// TariffInput holds the editable fields of a tariff.
type TariffInput struct {
	ISPID                string               `json:"ispId" validate:"required"`
	Name                 string               `json:"name" validate:"required,min=2,max=100"`
	Description          string               `json:"description" validate:"max=1000"`
	Technology           domain.Technology    `json:"technology" validate:"required"`
	SpeedMbps            int                  `json:"speedMbps" validate:"gt=0"`
	UploadSpeedMbps      *int                 `json:"uploadSpeedMbps" validate:"omitempty,gt=0"`
	PriceMonthly         float64              `json:"priceMonthly" validate:"gt=0"`
	ContractLengthMonths int                  `json:"contractLengthMonths" validate:"min=0,max=60"`
	DataLimitGB          *int                 `json:"dataLimitGB" validate:"omitempty,gt=0"`
	Campaigns            domain.CampaignFlags `json:"campaigns"`
	AvailableDistrictIDs []string             `json:"availableDistrictIds" validate:"required,min=1,dive,required"`
	IsActive             bool                 `json:"isActive"`
}

func (in TariffInput) apply(t *domain.Tariff) {
	t.ISPID = in.ISPID
	t.Name = strings.TrimSpace(in.Name)
	t.Description = in.Description
	t.Technology = in.Technology
	t.SpeedMbps = in.SpeedMbps
	t.UploadSpeedMbps = in.UploadSpeedMbps
	t.PriceMonthly = in.PriceMonthly
	t.ContractLengthMonths = in.ContractLengthMonths
	t.DataLimitGB = in.DataLimitGB
	t.Campaigns = in.Campaigns
	t.AvailableDistrictIDs = append([]string(nil), in.AvailableDistrictIDs...)
	t.IsActive = in.IsActive
}

// TariffInputOf returns the editable fields of t.
func TariffInputOf(t domain.Tariff) TariffInput {
	return TariffInput{
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
		AvailableDistrictIDs: append([]string(nil), t.AvailableDistrictIDs...),
		IsActive:             t.IsActive,
	}
}

// GetTariff returns any tariff, active or not.
func (s *AdminService) GetTariff(ctx context.Context, id string) (domain.Tariff, error) {
	return s.tariffs.FindByID(ctx, id)
}

func (s *AdminService) checkTariffInput(ctx context.Context, in TariffInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if !in.Technology.Valid() {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Unknown technology %q", in.Technology),
			Details: map[string]any{"technology": in.Technology},
		}
	}
	if d := in.Campaigns.DiscountPercentage; d < 0 || d > 100 {
		return &domain.ValidationError{
			Message: "discountPercentage must be between 0 and 100",
			Details: map[string]any{"discountPercentage": d},
		}
	}
	if _, err := s.isps.FindByID(ctx, in.ISPID); err != nil {
		return err
	}
	for _, id := range in.AvailableDistrictIDs {
		if _, err := s.districts.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CreateTariff adds a tariff to an existing ISP.
func (s *AdminService) CreateTariff(ctx context.Context, in TariffInput) (domain.Tariff, error) {
	if err := s.checkTariffInput(ctx, in); err != nil {
		return domain.Tariff{}, err
	}
	id, err := generateID()
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("generating tariff id: %w", err)
	}
	now := s.now()
	t := domain.Tariff{ID: id, CreatedAt: now, UpdatedAt: now}
	in.apply(&t)

	if err := s.tariffs.Create(ctx, t); err != nil {
		return domain.Tariff{}, fmt.Errorf("creating tariff: %w", err)
	}
	return t, nil
}

// UpdateTariff replaces the editable fields of a tariff. Leads created
// earlier keep their snapshot.
func (s *AdminService) UpdateTariff(ctx context.Context, id string, in TariffInput) (domain.Tariff, error) {
	t, err := s.tariffs.FindByID(ctx, id)
	if err != nil {
		return domain.Tariff{}, err
	}
	if err := s.checkTariffInput(ctx, in); err != nil {
		return domain.Tariff{}, err
	}
	in.apply(&t)
	t.UpdatedAt = s.now()

	if err := s.tariffs.Update(ctx, t); err != nil {
		return domain.Tariff{}, fmt.Errorf("updating tariff: %w", err)
	}
	return t, nil
}

// ListTariffsByISP returns every tariff of an ISP, active or not.
func (s *AdminService) ListTariffsByISP(ctx context.Context, ispID string) ([]domain.Tariff, error) {
	if _, err := s.isps.FindByID(ctx, ispID); err != nil {
		return nil, err
	}
	tariffs, err := s.tariffs.FindByISPID(ctx, ispID)
	if err != nil {
		return nil, fmt.Errorf("listing tariffs: %w", err)
	}
	return tariffs, nil
}

// UserInput describes a new account.
type UserInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     domain.Role `json:"role" validate:"required,oneof=admin isp user"`
	ISPID    string      `json:"ispId"`
	FullName string      `json:"fullName" validate:"max=100"`
}

// CreateUser registers an account. ISP accounts must name an existing ISP.
func (s *AdminService) CreateUser(ctx context.Context, in UserInput) (domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	if in.Role == domain.RoleISP {
		if in.ISPID == "" {
			return domain.User{}, &domain.ValidationError{
				Message: "ISP accounts require ispId",
				Details: map[string]any{"field": "ispId"},
			}
		}
		if _, err := s.isps.FindByID(ctx, in.ISPID); err != nil {
			return domain.User{}, err
		}
	} else {
		in.ISPID = ""
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return domain.User{}, &domain.DuplicateError{Resource: "User", Field: "email", Value: in.Email}
	case !isNotFound(err):
		return domain.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}
	id, err := generateID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generating user id: %w", err)
	}
	now := s.now()
	user := domain.User{
		ID:           id,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		ISPID:        in.ISPID,
		FullName:     strings.TrimSpace(in.FullName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}
