// Package storagetest is a behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

// Repos is the set of repositories under test.
type Repos struct {
	Cities    domain.CityRepository
	Districts domain.DistrictRepository
	ISPs      domain.ISPRepository
	Tariffs   domain.TariffRepository
	Leads     domain.LeadRepository
	Users     domain.UserRepository
}

// Opener returns fresh repositories loaded with data.
type Opener func(t *testing.T, data seed.Data) Repos

// PlainHasher is a deterministic hasher for seeding test stores.
type PlainHasher struct{}

func (PlainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (PlainHasher) Compare(hash, p string) error {
	if hash != "plain:"+p {
		return errors.New("password mismatch")
	}
	return nil
}

// SeedData returns the default catalog hashed with PlainHasher.
func SeedData(t *testing.T) seed.Data {
	t.Helper()
	data, err := seed.Default(PlainHasher{})
	require.NoError(t, err)
	return data
}

// Run executes the whole suite.
func Run(t *testing.T, open Opener) {
	t.Run("Catalog", func(t *testing.T) { testCatalog(t, open(t, SeedData(t))) })
	t.Run("TariffFilter", func(t *testing.T) { testTariffFilter(t, open(t, SeedData(t))) })
	t.Run("TariffWrites", func(t *testing.T) { testTariffWrites(t, open(t, SeedData(t))) })
	t.Run("ISPWrites", func(t *testing.T) { testISPWrites(t, open(t, SeedData(t))) })
	t.Run("LeadLifecycle", func(t *testing.T) { testLeadLifecycle(t, open(t, SeedData(t))) })
	t.Run("LeadListing", func(t *testing.T) { testLeadListing(t, open(t, SeedData(t))) })
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t, SeedData(t))) })
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	slices.Sort(out)
	return out
}

func tariffID(t domain.Tariff) string { return t.ID }
func leadID(l domain.Lead) string     { return l.ID }

func testCatalog(t *testing.T, r Repos) {
	ctx := context.Background()

	city, err := r.Cities.FindByID(ctx, seed.CityBaku)
	require.NoError(t, err)
	assert.Equal(t, "Baku", city.Name)
	assert.Equal(t, "Bakı", city.NameAz)

	_, err = r.Cities.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cities, err := r.Cities.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 3)

	district, err := r.Districts.FindByID(ctx, seed.DistrictKapaz)
	require.NoError(t, err)
	assert.Equal(t, seed.CityGanja, district.CityID)

	baku, err := r.Districts.FindByCityID(ctx, seed.CityBaku)
	require.NoError(t, err)
	assert.Len(t, baku, 4)

	all, err := r.Districts.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	isp, err := r.ISPs.FindByID(ctx, seed.ISPAzerTelecom)
	require.NoError(t, err)
	assert.Equal(t, 95, isp.PriorityScore)

	_, err = r.ISPs.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	active, err := r.ISPs.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	premium, err := r.Tariffs.FindByID(ctx, seed.TariffFiberPremium)
	require.NoError(t, err)
	assert.Equal(t, domain.TechnologyFiber, premium.Technology)
	assert.Equal(t, 100, premium.SpeedMbps)
	assert.InDelta(t, 25.0, premium.PriceMonthly, 0.0001)
	require.NotNil(t, premium.UploadSpeedMbps)
	assert.Equal(t, 50, *premium.UploadSpeedMbps)
	assert.Nil(t, premium.DataLimitGB)
	assert.True(t, premium.Campaigns.FreeModem)
	assert.True(t, premium.Campaigns.LimitedTime)
	assert.InDelta(t, 20.0, premium.Campaigns.DiscountPercentage, 0.0001)
	assert.ElementsMatch(t, []string{seed.DistrictNasimi, seed.DistrictYasamal, seed.DistrictNarimanov}, premium.AvailableDistrictIDs)

	_, err = r.Tariffs.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byISP, err := r.Tariffs.FindByISPID(ctx, seed.ISPAzerTelecom)
	require.NoError(t, err)
	assert.Equal(t, []string{seed.TariffFiberPremium, seed.TariffFiberBasic}, ids(byISP, tariffID))
}

func testTariffFilter(t *testing.T, r Repos) {
	ctx := context.Background()
	zero := 0

	cases := []struct {
		name     string
		criteria domain.SearchCriteria
		want     []string
	}{
		{"all", domain.SearchCriteria{}, []string{
			seed.TariffFiberPremium, seed.TariffFiberBasic, seed.TariffVDSL30, seed.TariffMobile,
		}},
		{"district", domain.SearchCriteria{DistrictIDs: []string{seed.DistrictSabunchu}}, []string{
			seed.TariffFiberBasic, seed.TariffVDSL30, seed.TariffMobile,
		}},
		{"technology", domain.SearchCriteria{Technologies: []domain.Technology{domain.TechnologyFiber}}, []string{
			seed.TariffFiberPremium, seed.TariffFiberBasic,
		}},
		{"speed range", domain.SearchCriteria{MinSpeedMbps: 40, MaxSpeedMbps: 50}, []string{
			seed.TariffFiberBasic, seed.TariffMobile,
		}},
		{"price range", domain.SearchCriteria{MinPriceMonthly: 12, MaxPriceMonthly: 15}, []string{
			seed.TariffFiberBasic, seed.TariffVDSL30,
		}},
		{"no contract", domain.SearchCriteria{MaxContractLength: &zero}, []string{seed.TariffMobile}},
		{"campaign", domain.SearchCriteria{Campaigns: domain.CampaignFilter{FreeModem: true, FreeInstallation: true}}, []string{
			seed.TariffFiberPremium, seed.TariffMobile,
		}},
		{"district outside every tariff", domain.SearchCriteria{DistrictIDs: []string{"nowhere"}}, []string{}},
	}

	for _, tc := range cases {
		got, err := r.Tariffs.FindByFilter(ctx, tc.criteria, domain.SortOptions{})
		require.NoError(t, err, tc.name)
		want := slices.Clone(tc.want)
		slices.Sort(want)
		assert.Equal(t, want, ids(got, tariffID), tc.name)
	}
}

func testTariffWrites(t *testing.T, r Repos) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	tariff := domain.Tariff{
		ID: "tariff-new", ISPID: seed.ISPNaxtel, Name: "Wireless 20", Technology: domain.TechnologyWireless,
		SpeedMbps: 20, PriceMonthly: 9.5, ContractLengthMonths: 3,
		Campaigns:            domain.CampaignFlags{GiftIncluded: "router stand"},
		AvailableDistrictIDs: []string{seed.DistrictKapaz},
		IsActive:             false, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, r.Tariffs.Create(ctx, tariff))

	got, err := r.Tariffs.FindByID(ctx, tariff.ID)
	require.NoError(t, err)
	assert.Equal(t, "router stand", got.Campaigns.GiftIncluded)
	assert.Nil(t, got.UploadSpeedMbps)

	filtered, err := r.Tariffs.FindByFilter(ctx, domain.SearchCriteria{DistrictIDs: []string{seed.DistrictKapaz}}, domain.SortOptions{})
	require.NoError(t, err)
	assert.NotContains(t, ids(filtered, tariffID), tariff.ID, "inactive tariffs must be filtered out")

	limit := 100
	tariff.IsActive = true
	tariff.PriceMonthly = 11
	tariff.DataLimitGB = &limit
	tariff.AvailableDistrictIDs = []string{seed.DistrictKapaz, seed.DistrictNizami}
	require.NoError(t, r.Tariffs.Update(ctx, tariff))

	got, err = r.Tariffs.FindByID(ctx, tariff.ID)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, got.PriceMonthly, 0.0001)
	require.NotNil(t, got.DataLimitGB)
	assert.Equal(t, 100, *got.DataLimitGB)
	assert.ElementsMatch(t, []string{seed.DistrictKapaz, seed.DistrictNizami}, got.AvailableDistrictIDs)

	filtered, err = r.Tariffs.FindByFilter(ctx, domain.SearchCriteria{DistrictIDs: []string{seed.DistrictNizami}}, domain.SortOptions{})
	require.NoError(t, err)
	assert.Contains(t, ids(filtered, tariffID), tariff.ID)

	err = r.Tariffs.Update(ctx, domain.Tariff{ID: "missing", ISPID: seed.ISPNaxtel})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testISPWrites(t *testing.T, r Repos) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	isp := domain.ISP{ID: "isp-new", Name: "CityNet", PriorityScore: 50, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.ISPs.Create(ctx, isp))

	isp.IsActive = false
	isp.PriorityScore = 10
	require.NoError(t, r.ISPs.Update(ctx, isp))

	got, err := r.ISPs.FindByID(ctx, isp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.PriorityScore)
	assert.False(t, got.IsActive)

	active, err := r.ISPs.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	all, err := r.ISPs.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	assert.ErrorIs(t, r.ISPs.Update(ctx, domain.ISP{ID: "missing"}), domain.ErrNotFound)
}

func newLead(id string, created time.Time) domain.Lead {
	lead := domain.NewLead(id, domain.SourceComparison, domain.TariffSnapshot{
		TariffID: seed.TariffFiberPremium, TariffName: "Fiber Premium 100", ISPName: "AzerTelecom",
		SpeedMbps: 100, PriceMonthly: 25, Technology: domain.TechnologyFiber,
		Campaigns: domain.CampaignFlags{FreeModem: true, FreeInstallation: true},
	})
	lead.FullName = "Jane Doe"
	lead.Phone = "+994501234567"
	lead.CityID = seed.CityBaku
	lead.DistrictID = seed.DistrictNasimi
	lead.CreatedAt = created
	lead.UpdatedAt = created
	return lead
}

func testLeadLifecycle(t *testing.T, r Repos) {
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	lead := newLead("lead-1", created)
	lead.Email = "jane@example.com"
	require.NoError(t, r.Leads.Create(ctx, lead))

	got, err := r.Leads.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, lead.Tariff, got.Tariff)
	assert.True(t, got.CreatedAt.Equal(created), "created at %v, want %v", got.CreatedAt, created)
	assert.Nil(t, got.AssignedAt)
	assert.Nil(t, got.ConvertedAt)

	_, err = r.Leads.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	contacted, err := r.Leads.UpdateStatus(ctx, lead.ID, 1, domain.StatusContacted, "called")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContacted, contacted.Status)
	assert.Equal(t, "called", contacted.Notes)
	assert.Equal(t, 2, contacted.Version)

	_, err = r.Leads.UpdateStatus(ctx, lead.ID, 1, domain.StatusQualified, "")
	var conflict *domain.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assigned, err := r.Leads.AssignToISP(ctx, lead.ID, 2, seed.ISPAzerTelecom)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssignedToISP, assigned.Status)
	assert.Equal(t, seed.ISPAzerTelecom, assigned.AssignedISPID)
	require.NotNil(t, assigned.AssignedAt)
	assert.Equal(t, 3, assigned.Version)
	assert.Equal(t, "called", assigned.Notes)

	progress, err := r.Leads.UpdateStatus(ctx, lead.ID, 3, domain.StatusInProgress, "")
	require.NoError(t, err)
	converted, err := r.Leads.UpdateStatus(ctx, lead.ID, progress.Version, domain.StatusConverted, "")
	require.NoError(t, err)
	require.NotNil(t, converted.ConvertedAt)

	converted.OutcomeNotes = "signed 12 months"
	tampered := converted
	tampered.Tariff.PriceMonthly = 1
	tampered.Tariff.TariffName = "Rewritten"
	tampered.CreatedAt = created.Add(-48 * time.Hour)
	saved, err := r.Leads.Update(ctx, tampered)
	require.NoError(t, err)
	assert.Equal(t, converted.Version+1, saved.Version)
	assert.Equal(t, lead.Tariff, saved.Tariff)
	assert.True(t, saved.CreatedAt.Equal(created), "created at rewritten to %v", saved.CreatedAt)

	reloaded, err := r.Leads.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "signed 12 months", reloaded.OutcomeNotes)
	assert.Equal(t, domain.StatusConverted, reloaded.Status)
	assert.Equal(t, seed.ISPAzerTelecom, reloaded.AssignedISPID)
	require.NotNil(t, reloaded.ConvertedAt)
	assert.Equal(t, lead.Tariff, reloaded.Tariff, "snapshot must never change")

	_, err = r.Leads.Update(ctx, converted)
	assert.ErrorIs(t, err, domain.ErrConflict, "stale full update must be rejected")

	_, err = r.Leads.AssignToISP(ctx, "missing", 1, seed.ISPNaxtel)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testLeadListing(t *testing.T, r Repos) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Leads.Create(ctx, newLead(fmt.Sprintf("lead-%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	page, err := r.Leads.FindAll(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Leads, 2)
	assert.Equal(t, "lead-4", page.Leads[0].ID)
	assert.Equal(t, "lead-3", page.Leads[1].ID)

	page, err = r.Leads.FindAll(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "lead-0", page.Leads[0].ID)

	page, err = r.Leads.FindAll(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Leads)
	assert.Equal(t, 5, page.Total)

	_, err = r.Leads.FindAll(ctx, 2, -4)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.Leads.UpdateStatus(ctx, "lead-1", 1, domain.StatusRejected, "")
	require.NoError(t, err)
	_, err = r.Leads.AssignToISP(ctx, "lead-2", 1, seed.ISPBaktelecom)
	require.NoError(t, err)
	_, err = r.Leads.AssignToISP(ctx, "lead-3", 1, seed.ISPBaktelecom)
	require.NoError(t, err)

	rejected, err := r.Leads.FindByStatus(ctx, domain.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-1"}, ids(rejected, leadID))

	fresh, err := r.Leads.FindByStatus(ctx, domain.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-0", "lead-4"}, ids(fresh, leadID))

	byISP, err := r.Leads.FindByAssignedISP(ctx, seed.ISPBaktelecom)
	require.NoError(t, err)
	require.Len(t, byISP, 2)
	assert.Equal(t, "lead-3", byISP[0].ID, "newest first")

	none, err := r.Leads.FindByAssignedISP(ctx, seed.ISPNaxtel)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testUsers(t *testing.T, r Repos) {
	ctx := context.Background()

	admin, err := r.Users.FindByEmail(ctx, "admin@nettap.az")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, PlainHasher{}.Compare(admin.PasswordHash, seed.AdminPassword))

	isp, err := r.Users.FindByID(ctx, seed.UserAzerTelecom)
	require.NoError(t, err)
	assert.Equal(t, seed.ISPAzerTelecom, isp.ISPID)

	_, err = r.Users.FindByEmail(ctx, "nobody@nettap.az")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	user := domain.User{
		ID: "user-new", Email: "ops@nettap.az", PasswordHash: "plain:secret", Role: domain.RoleUser,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, r.Users.Create(ctx, user))

	dup := user
	dup.ID = "user-dup"
	assert.ErrorIs(t, r.Users.Create(ctx, dup), domain.ErrConflict)

	login := now.Add(time.Hour)
	user.IsActive = false
	user.LastLoginAt = &login
	require.NoError(t, r.Users.Update(ctx, user))

	got, err := r.Users.FindByEmail(ctx, "ops@nettap.az")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(login))

	assert.ErrorIs(t, r.Users.Update(ctx, domain.User{ID: "missing"}), domain.ErrNotFound)
}
