package seed_test

import (
	"testing"

	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) error   { return nil }

func TestDefault_ReferencesAreConsistent(t *testing.T) {
	data, err := seed.Default(plainHasher{})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	cities := map[string]bool{}
	for _, c := range data.Cities {
		cities[c.ID] = true
	}
	districts := map[string]bool{}
	for _, d := range data.Districts {
		if !cities[d.CityID] {
			t.Errorf("district %s points at unknown city %s", d.ID, d.CityID)
		}
		districts[d.ID] = true
	}
	isps := map[string]bool{}
	for _, i := range data.ISPs {
		isps[i.ID] = true
	}
	for _, tr := range data.Tariffs {
		if !isps[tr.ISPID] {
			t.Errorf("tariff %s points at unknown ISP %s", tr.ID, tr.ISPID)
		}
		if len(tr.AvailableDistrictIDs) == 0 {
			t.Errorf("tariff %s has no districts", tr.ID)
		}
		for _, d := range tr.AvailableDistrictIDs {
			if !districts[d] {
				t.Errorf("tariff %s lists unknown district %s", tr.ID, d)
			}
		}
		if !tr.Technology.Valid() {
			t.Errorf("tariff %s has invalid technology %q", tr.ID, tr.Technology)
		}
	}
	for _, u := range data.Users {
		if u.Role == domain.RoleISP && !isps[u.ISPID] {
			t.Errorf("isp user %s points at unknown ISP %q", u.Email, u.ISPID)
		}
		if u.PasswordHash == "" {
			t.Errorf("user %s has no password hash", u.Email)
		}
	}
}
