package domain_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

func TestNewLead(t *testing.T) {
	before := time.Now().UTC()
	lead := domain.NewLead("id-1", "", domain.TariffSnapshot{TariffID: "t-1", PriceMonthly: 25})
	after := time.Now().UTC()

	if lead.Status != domain.StatusNew {
		t.Errorf("Status = %q, want %q", lead.Status, domain.StatusNew)
	}
	if lead.Source != domain.SourceComparison {
		t.Errorf("Source = %q, want %q", lead.Source, domain.SourceComparison)
	}
	if lead.Version != 1 {
		t.Errorf("Version = %d, want 1", lead.Version)
	}
	if lead.CreatedAt.Before(before) || lead.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", lead.CreatedAt, before, after)
	}
	if lead.UpdatedAt != lead.CreatedAt {
		t.Error("UpdatedAt should equal CreatedAt on a new lead")
	}
}

func TestTransitions_TerminalStatesHaveNoExits(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Src.Terminal() {
			t.Errorf("terminal state %q has an outgoing transition to %q", tr.Src, tr.Dst)
		}
		if tr.Src == tr.Dst {
			t.Errorf("self transition %q must not exist", tr.Src)
		}
	}
}

func TestTransitions_ConvertedOnlyFromInProgress(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Dst == domain.StatusConverted && tr.Src != domain.StatusInProgress {
			t.Errorf("converted reachable from %q", tr.Src)
		}
	}
}

func TestAllowedTargets(t *testing.T) {
	got := domain.AllowedTargets(domain.StatusNew)
	want := []domain.Status{domain.StatusContacted, domain.StatusAssignedToISP, domain.StatusRejected, domain.StatusCancelled}
	if len(got) != len(want) {
		t.Fatalf("AllowedTargets(new) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllowedTargets(new)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if n := len(domain.AllowedTargets(domain.StatusCancelled)); n != 0 {
		t.Errorf("cancelled has %d targets, want 0", n)
	}
}

func TestLead_ApplyStatus(t *testing.T) {
	lead := domain.NewLead("id-1", domain.SourceDirect, domain.TariffSnapshot{})
	lead.Notes = "first call"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	lead.ApplyStatus(domain.StatusContacted, "", now)
	if lead.Notes != "first call" {
		t.Errorf("empty notes overwrote existing: %q", lead.Notes)
	}
	if lead.ConvertedAt != nil {
		t.Error("ConvertedAt must stay nil outside converted")
	}

	lead.ApplyStatus(domain.StatusConverted, "signed", now)
	if lead.ConvertedAt == nil || !lead.ConvertedAt.Equal(now) {
		t.Errorf("ConvertedAt = %v, want %v", lead.ConvertedAt, now)
	}
	if lead.Notes != "signed" {
		t.Errorf("Notes = %q, want %q", lead.Notes, "signed")
	}
	if !lead.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", lead.UpdatedAt, now)
	}
}

func TestLead_AssignTo(t *testing.T) {
	lead := domain.NewLead("id-1", "", domain.TariffSnapshot{})
	now := time.Now().UTC()

	lead.AssignTo("isp-1", now)

	if lead.AssignedISPID != "isp-1" {
		t.Errorf("AssignedISPID = %q, want %q", lead.AssignedISPID, "isp-1")
	}
	if lead.Status != domain.StatusAssignedToISP {
		t.Errorf("Status = %q, want %q", lead.Status, domain.StatusAssignedToISP)
	}
	if lead.AssignedAt == nil || !lead.AssignedAt.Equal(now) {
		t.Errorf("AssignedAt = %v, want %v", lead.AssignedAt, now)
	}
}

func TestSnapshot(t *testing.T) {
	ranked := domain.Enrich(domain.Tariff{
		ID: "t-1", Name: "Fiber 100", SpeedMbps: 100, PriceMonthly: 25,
		Technology: domain.TechnologyFiber, Campaigns: domain.CampaignFlags{FreeModem: true},
	}, domain.ISP{ID: "isp-1", Name: "AzerTelecom"})

	snap := domain.Snapshot(ranked)
	if snap.ISPName != "AzerTelecom" || snap.PriceMonthly != 25 || !snap.Campaigns.FreeModem {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}
