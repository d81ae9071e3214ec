// Package seed holds the reference catalog the platform ships with.
package seed

import (
	"fmt"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

// Well-known identifiers, stable across backends.
const (
	CityBaku     = "550e8400-e29b-41d4-a716-446655440001"
	CityGanja    = "550e8400-e29b-41d4-a716-446655440002"
	CitySumgayit = "550e8400-e29b-41d4-a716-446655440003"

	DistrictNasimi    = "660e8400-e29b-41d4-a716-446655440001"
	DistrictYasamal   = "660e8400-e29b-41d4-a716-446655440002"
	DistrictNarimanov = "660e8400-e29b-41d4-a716-446655440003"
	DistrictSabunchu  = "660e8400-e29b-41d4-a716-446655440004"
	DistrictKapaz     = "660e8400-e29b-41d4-a716-446655440005"
	DistrictNizami    = "660e8400-e29b-41d4-a716-446655440006"

	ISPAzerTelecom = "770e8400-e29b-41d4-a716-446655440001"
	ISPBaktelecom  = "770e8400-e29b-41d4-a716-446655440002"
	ISPNaxtel      = "770e8400-e29b-41d4-a716-446655440003"

	TariffFiberPremium = "880e8400-e29b-41d4-a716-446655440001"
	TariffFiberBasic   = "880e8400-e29b-41d4-a716-446655440002"
	TariffVDSL30       = "880e8400-e29b-41d4-a716-446655440003"
	TariffMobile       = "880e8400-e29b-41d4-a716-446655440004"

	UserAdmin       = "aa0e8400-e29b-41d4-a716-446655440001"
	UserAzerTelecom = "aa0e8400-e29b-41d4-a716-446655440002"
	UserBaktelecom  = "aa0e8400-e29b-41d4-a716-446655440003"
)

// Default passwords of the seeded accounts.
const (
	AdminPassword = "admin123"
	ISPPassword   = "isp123"
)

// Data is a full reference catalog.
type Data struct {
	Cities    []domain.City
	Districts []domain.District
	ISPs      []domain.ISP
	Tariffs   []domain.Tariff
	Users     []domain.User
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Default returns the shipped catalog. Passwords are hashed with hasher.
func Default(hasher domain.PasswordHasher) (Data, error) {
	users, err := users(hasher)
	if err != nil {
		return Data{}, err
	}
	return Data{
		Cities:    cities(),
		Districts: districts(),
		ISPs:      isps(),
		Tariffs:   tariffs(),
		Users:     users,
	}, nil
}

func cities() []domain.City {
	return []domain.City{
		{ID: CityBaku, Name: "Baku", NameAz: "Bakı", NameEn: "Baku", IsActive: true},
		{ID: CityGanja, Name: "Ganja", NameAz: "Gəncə", NameEn: "Ganja", IsActive: true},
		{ID: CitySumgayit, Name: "Sumgayit", NameAz: "Sumqayıt", NameEn: "Sumgayit", IsActive: true},
	}
}

func districts() []domain.District {
	return []domain.District{
		{ID: DistrictNasimi, CityID: CityBaku, Name: "Nasimi", NameAz: "Nəsimi", NameEn: "Nasimi", IsActive: true},
		{ID: DistrictYasamal, CityID: CityBaku, Name: "Yasamal", NameAz: "Yasamal", NameEn: "Yasamal", IsActive: true},
		{ID: DistrictNarimanov, CityID: CityBaku, Name: "Narimanov", NameAz: "Nərimanov", NameEn: "Narimanov", IsActive: true},
		{ID: DistrictSabunchu, CityID: CityBaku, Name: "Sabunchu", NameAz: "Sabunçu", NameEn: "Sabunchu", IsActive: true},
		{ID: DistrictKapaz, CityID: CityGanja, Name: "Kapaz", NameAz: "Kəpəz", NameEn: "Kapaz", IsActive: true},
		{ID: DistrictNizami, CityID: CityGanja, Name: "Nizami", NameAz: "Nizami", NameEn: "Nizami", IsActive: true},
	}
}

func isps() []domain.ISP {
	return []domain.ISP{
		{
			ID: ISPAzerTelecom, Name: "AzerTelecom", Description: "Leading fiber optic provider in Azerbaijan",
			ContactEmail: "info@azertelecom.az", ContactPhone: "+994124000000", Website: "https://azertelecom.az",
			PriorityScore: 95, IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: ISPBaktelecom, Name: "Baktelecom", Description: "Reliable internet services",
			ContactEmail: "info@baktelecom.az", ContactPhone: "+994125000000", Website: "https://baktelecom.az",
			PriorityScore: 90, IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: ISPNaxtel, Name: "Naxtel", Description: "Mobile and wireless internet",
			ContactEmail: "info@naxtel.az", ContactPhone: "+994126000000", Website: "https://naxtel.az",
			PriorityScore: 85, IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
	}
}

func intPtr(v int) *int { return &v }

func tariffs() []domain.Tariff {
	return []domain.Tariff{
		{
			ID: TariffFiberPremium, ISPID: ISPAzerTelecom, Name: "Fiber Premium 100",
			Description: "High-speed fiber internet", Technology: domain.TechnologyFiber,
			SpeedMbps: 100, UploadSpeedMbps: intPtr(50), PriceMonthly: 25, ContractLengthMonths: 12,
			Campaigns: domain.CampaignFlags{
				FreeModem: true, FreeInstallation: true, DiscountPercentage: 20, LimitedTime: true,
			},
			AvailableDistrictIDs: []string{DistrictNasimi, DistrictYasamal, DistrictNarimanov},
			IsActive:             true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: TariffFiberBasic, ISPID: ISPAzerTelecom, Name: "Fiber Basic 50",
			Description: "Affordable fiber internet", Technology: domain.TechnologyFiber,
			SpeedMbps: 50, UploadSpeedMbps: intPtr(25), PriceMonthly: 15, ContractLengthMonths: 6,
			Campaigns:            domain.CampaignFlags{FreeInstallation: true},
			AvailableDistrictIDs: []string{DistrictNasimi, DistrictYasamal, DistrictNarimanov, DistrictSabunchu},
			IsActive:             true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: TariffVDSL30, ISPID: ISPBaktelecom, Name: "VDSL 30",
			Description: "Stable VDSL connection", Technology: domain.TechnologyVDSL,
			SpeedMbps: 30, UploadSpeedMbps: intPtr(5), PriceMonthly: 12, ContractLengthMonths: 12,
			Campaigns:            domain.CampaignFlags{FreeModem: true},
			AvailableDistrictIDs: []string{DistrictNasimi, DistrictSabunchu},
			IsActive:             true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: TariffMobile, ISPID: ISPNaxtel, Name: "4.5G Unlimited",
			Description: "Wireless internet with no contract", Technology: domain.TechnologyMobile,
			SpeedMbps: 40, PriceMonthly: 20, ContractLengthMonths: 0,
			Campaigns: domain.CampaignFlags{FreeModem: true, FreeInstallation: true, NoContract: true},
			AvailableDistrictIDs: []string{
				DistrictNasimi, DistrictYasamal, DistrictNarimanov, DistrictSabunchu, DistrictKapaz, DistrictNizami,
			},
			IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
	}
}

func users(hasher domain.PasswordHasher) ([]domain.User, error) {
	adminHash, err := hasher.Hash(AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	ispHash, err := hasher.Hash(ISPPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing isp password: %w", err)
	}
	return []domain.User{
		{
			ID: UserAdmin, Email: "admin@nettap.az", PasswordHash: adminHash, Role: domain.RoleAdmin,
			FullName: "Platform Admin", IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: UserAzerTelecom, Email: "azertelecom@nettap.az", PasswordHash: ispHash, Role: domain.RoleISP,
			ISPID: ISPAzerTelecom, FullName: "AzerTelecom Sales", IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
		{
			ID: UserBaktelecom, Email: "baktelecom@nettap.az", PasswordHash: ispHash, Role: domain.RoleISP,
			ISPID: ISPBaktelecom, FullName: "Baktelecom Sales", IsActive: true, CreatedAt: epoch, UpdatedAt: epoch,
		},
	}, nil
}
