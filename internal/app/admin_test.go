package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

func validTariffInput() app.TariffInput {
	return app.TariffInput{
		ISPID:                seed.ISPNaxtel,
		Name:                 "Fiber 500",
		Technology:           domain.TechnologyFiber,
		SpeedMbps:            500,
		PriceMonthly:         50,
		ContractLengthMonths: 12,
		Campaigns:            domain.CampaignFlags{FreeModem: true, DiscountPercentage: 10},
		AvailableDistrictIDs: []string{seed.DistrictKapaz},
		IsActive:             true,
	}
}

func TestAdmin_CreateTariffAppearsInSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.admin.CreateTariff(ctx, validTariffInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := f.catalog.Search(ctx, domain.SearchCriteria{DistrictIDs: []string{seed.DistrictKapaz}}, domain.SortOptions{})
	require.NoError(t, err)
	ids := tariffIDs(got)
	assert.Contains(t, ids, created.ID)
	assert.Equal(t, seed.TariffMobile, ids[0], "mobile scores 35, the new tariff 20")
}

func TestAdmin_CreateTariffRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*app.TariffInput)
		want   error
	}{
		{"zero speed", func(in *app.TariffInput) { in.SpeedMbps = 0 }, domain.ErrValidation},
		{"free tariff", func(in *app.TariffInput) { in.PriceMonthly = 0 }, domain.ErrValidation},
		{"no districts", func(in *app.TariffInput) { in.AvailableDistrictIDs = nil }, domain.ErrValidation},
		{"bad technology", func(in *app.TariffInput) { in.Technology = "cable" }, domain.ErrValidation},
		{"discount over 100", func(in *app.TariffInput) { in.Campaigns.DiscountPercentage = 150 }, domain.ErrValidation},
		{"unknown isp", func(in *app.TariffInput) { in.ISPID = "ghost" }, domain.ErrNotFound},
		{"unknown district", func(in *app.TariffInput) { in.AvailableDistrictIDs = []string{"ghost"} }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validTariffInput()
			tc.mutate(&in)
			_, err := f.admin.CreateTariff(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAdmin_UpdateTariffDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validTariffInput()
	in.ISPID = seed.ISPBaktelecom
	in.Name = "VDSL 30"
	in.Technology = domain.TechnologyVDSL
	in.SpeedMbps = 30
	in.PriceMonthly = 12
	in.AvailableDistrictIDs = []string{seed.DistrictNasimi}
	in.IsActive = false

	_, err := f.admin.UpdateTariff(ctx, seed.TariffVDSL30, in)
	require.NoError(t, err)

	got, err := f.catalog.Search(ctx, domain.SearchCriteria{}, domain.SortOptions{})
	require.NoError(t, err)
	assert.NotContains(t, tariffIDs(got), seed.TariffVDSL30)

	listed, err := f.admin.ListTariffsByISP(ctx, seed.ISPBaktelecom)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].IsActive)

	_, err = f.admin.UpdateTariff(ctx, "ghost", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_ISPs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	isp, err := f.admin.CreateISP(ctx, app.ISPInput{
		Name:          "CityNet",
		ContactEmail:  "hello@citynet.az",
		Website:       "https://citynet.az",
		PriorityScore: 70,
		IsActive:      true,
	})
	require.NoError(t, err)

	isps, err := f.catalog.ListISPs(ctx)
	require.NoError(t, err)
	assert.Len(t, isps, 4)

	_, err = f.admin.UpdateISP(ctx, isp.ID, app.ISPInput{Name: "CityNet", PriorityScore: 70})
	require.NoError(t, err)

	isps, err = f.catalog.ListISPs(ctx)
	require.NoError(t, err)
	assert.Len(t, isps, 3, "inactive ISPs are hidden")

	_, err = f.admin.CreateISP(ctx, app.ISPInput{Name: "X", PriorityScore: 101})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.admin.UpdateISP(ctx, "ghost", app.ISPInput{Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_CreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.admin.CreateUser(ctx, app.UserInput{
		Email:    "Sales@Naxtel.az",
		Password: "secret1",
		Role:     domain.RoleISP,
		ISPID:    seed.ISPNaxtel,
	})
	require.NoError(t, err)
	assert.Equal(t, "sales@naxtel.az", u.Email)
	assert.Equal(t, "plain:secret1", u.PasswordHash)

	_, err = f.admin.CreateUser(ctx, app.UserInput{Email: "sales@naxtel.az", Password: "secret1", Role: domain.RoleAdmin})
	var dup *domain.DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.admin.CreateUser(ctx, app.UserInput{Email: "isp@x.az", Password: "secret1", Role: domain.RoleISP})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.admin.CreateUser(ctx, app.UserInput{Email: "isp@x.az", Password: "secret1", Role: domain.RoleISP, ISPID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	admin, err := f.admin.CreateUser(ctx, app.UserInput{Email: "ops@x.az", Password: "secret1", Role: domain.RoleAdmin, ISPID: seed.ISPNaxtel})
	require.NoError(t, err)
	assert.Empty(t, admin.ISPID)
}

func TestAdmin_PartialUpdateBase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	isp, err := f.admin.GetISP(ctx, seed.ISPNaxtel)
	require.NoError(t, err)
	in := app.ISPInputOf(isp)
	in.Description = "Fiber across Ganja"
	updated, err := f.admin.UpdateISP(ctx, isp.ID, in)
	require.NoError(t, err)
	assert.Equal(t, isp.Name, updated.Name)
	assert.Equal(t, isp.PriorityScore, updated.PriorityScore)
	assert.Equal(t, "Fiber across Ganja", updated.Description)

	created, err := f.admin.CreateTariff(ctx, validTariffInput())
	require.NoError(t, err)
	tariff, err := f.admin.GetTariff(ctx, created.ID)
	require.NoError(t, err)
	tin := app.TariffInputOf(tariff)
	tin.PriceMonthly = 45
	changed, err := f.admin.UpdateTariff(ctx, tariff.ID, tin)
	require.NoError(t, err)
	assert.Equal(t, 45.0, changed.PriceMonthly)
	assert.Equal(t, tariff.AvailableDistrictIDs, changed.AvailableDistrictIDs)

	_, err = f.admin.GetISP(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.admin.GetTariff(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
