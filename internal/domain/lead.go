package domain

import "time"

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusQualified     Status = "qualified"
	StatusAssignedToISP Status = "assigned_to_isp"
	StatusInProgress    Status = "in_progress"
	StatusConverted     Status = "converted"
	StatusRejected      Status = "rejected"
	StatusCancelled     Status = "cancelled"
)

// Statuses lists every lead status.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusAssignedToISP,
	StatusInProgress,
	StatusConverted,
	StatusRejected,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusConverted || s == StatusRejected || s == StatusCancelled
}

// Transition is an allowed move from Src to Dst.
type Transition struct {
	Src Status
	Dst Status
}

// Transitions is the lead state machine. Terminal states have no entries.
var Transitions = []Transition{
	{Src: StatusNew, Dst: StatusContacted},
	{Src: StatusNew, Dst: StatusAssignedToISP},
	{Src: StatusNew, Dst: StatusRejected},
	{Src: StatusNew, Dst: StatusCancelled},

	{Src: StatusContacted, Dst: StatusQualified},
	{Src: StatusContacted, Dst: StatusAssignedToISP},
	{Src: StatusContacted, Dst: StatusRejected},
	{Src: StatusContacted, Dst: StatusCancelled},

	{Src: StatusQualified, Dst: StatusAssignedToISP},
	{Src: StatusQualified, Dst: StatusRejected},
	{Src: StatusQualified, Dst: StatusCancelled},

	{Src: StatusAssignedToISP, Dst: StatusInProgress},
	{Src: StatusAssignedToISP, Dst: StatusRejected},
	{Src: StatusAssignedToISP, Dst: StatusCancelled},

	{Src: StatusInProgress, Dst: StatusConverted},
	{Src: StatusInProgress, Dst: StatusRejected},
	{Src: StatusInProgress, Dst: StatusCancelled},
}

// AllowedTargets returns the statuses reachable from src, in table order.
func AllowedTargets(src Status) []Status {
	out := make([]Status, 0, 4)
	for _, t := range Transitions {
		if t.Src == src {
			out = append(out, t.Dst)
		}
	}
	return out
}

// Source is where a lead came from.
type Source string

const (
	SourceComparison Source = "comparison"
	SourceDirect     Source = "direct"
	SourceReferral   Source = "referral"
	SourceCampaign   Source = "campaign"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceComparison, SourceDirect, SourceReferral, SourceCampaign:
		return true
	}
	return false
}

// TariffSnapshot freezes what the customer was shown when the lead was created.
type TariffSnapshot struct {
	TariffID     string        `json:"tariffId"`
	TariffName   string        `json:"tariffName"`
	ISPName      string        `json:"ispName"`
	SpeedMbps    int           `json:"speedMbps"`
	PriceMonthly float64       `json:"priceMonthly"`
	Technology   Technology    `json:"technology"`
	Campaigns    CampaignFlags `json:"campaigns"`
}

// Snapshot captures the enriched tariff for embedding in a lead.
func Snapshot(t RankedTariff) TariffSnapshot {
	return TariffSnapshot{
		TariffID:     t.ID,
		TariffName:   t.Name,
		ISPName:      t.ISP.Name,
		SpeedMbps:    t.SpeedMbps,
		PriceMonthly: t.PriceMonthly,
		Technology:   t.Technology,
		Campaigns:    t.Campaigns,
	}
}

// Lead is a customer's request for a tariff, routed to an ISP.
type Lead struct {
	ID            string
	Status        Status
	Source        Source
	FullName      string
	Phone         string
	Email         string
	CityID        string
	DistrictID    string
	Address       string
	Tariff        TariffSnapshot
	AssignedISPID string
	AssignedAt    *time.Time
	Notes         string
	OutcomeNotes  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ConvertedAt   *time.Time
	// Version increments on every write and guards concurrent updates.
	Version int
}

// NewLead creates a lead in the initial "new" state.
func NewLead(id string, source Source, snapshot TariffSnapshot) Lead {
	now := time.Now().UTC()
	if source == "" {
		source = SourceComparison
	}
	return Lead{
		ID:        id,
		Status:    StatusNew,
		Source:    source,
		Tariff:    snapshot,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// ApplyStatus moves the lead to status without validating the transition.
// Entering converted stamps ConvertedAt. Empty notes leave the old notes.
func (l *Lead) ApplyStatus(status Status, notes string, now time.Time) {
	l.Status = status
	if status == StatusConverted {
		at := now
		l.ConvertedAt = &at
	}
	if notes != "" {
		l.Notes = notes
	}
	l.UpdatedAt = now
}

// AssignTo hands the lead to an ISP and forces the assigned status.
func (l *Lead) AssignTo(ispID string, now time.Time) {
	at := now
	l.AssignedISPID = ispID
	l.AssignedAt = &at
	l.Status = StatusAssignedToISP
	l.UpdatedAt = now
}

// LeadPage is one page of a lead listing.
type LeadPage struct {
	Leads []Lead
	Total int
}
