package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/nettap/internal/domain"
)

var _ domain.LeadRepository = (*LeadRepository)(nil)

const leadColumns = `id, status, source, full_name, phone, email, city_id, district_id, address,
	tariff_snapshot, assigned_isp_id, assigned_at, notes, outcome_notes, converted_at, version,
	created_at, updated_at`

// LeadRepository persists leads. Every write bumps the version column and
// is conditional on the version the caller read.
type LeadRepository struct {
	s   *Store
	now func() time.Time
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (domain.Lead, error) {
	lead, err := scanLead(r.s.queryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, &domain.NotFoundError{Resource: "Lead", ID: id}
	}
	return lead, err
}

func (r *LeadRepository) FindAll(ctx context.Context, limit, offset int) (domain.LeadPage, error) {
	if limit < 0 || offset < 0 {
		return domain.LeadPage{}, &domain.ValidationError{
			Message: "limit and offset must not be negative",
			Details: map[string]any{"limit": limit, "offset": offset},
		}
	}

	var total int
	if err := r.s.queryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return domain.LeadPage{}, fmt.Errorf("counting leads: %w", err)
	}

	leads, err := r.list(ctx, `SELECT `+leadColumns+` FROM leads
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return domain.LeadPage{}, err
	}
	return domain.LeadPage{Leads: leads, Total: total}, nil
}

func (r *LeadRepository) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Lead, error) {
	return r.list(ctx, `SELECT `+leadColumns+` FROM leads
		WHERE status = ? ORDER BY created_at DESC, id DESC`, string(status))
}

func (r *LeadRepository) FindByAssignedISP(ctx context.Context, ispID string) ([]domain.Lead, error) {
	return r.list(ctx, `SELECT `+leadColumns+` FROM leads
		WHERE assigned_isp_id = ? ORDER BY created_at DESC, id DESC`, ispID)
}

func (r *LeadRepository) Create(ctx context.Context, lead domain.Lead) error {
	snapshot, err := json.Marshal(lead.Tariff)
	if err != nil {
		return fmt.Errorf("encoding tariff snapshot: %w", err)
	}

	_, err = r.s.exec(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, string(lead.Status), string(lead.Source), lead.FullName, lead.Phone, lead.Email,
		lead.CityID, lead.DistrictID, lead.Address, string(snapshot),
		nullString(lead.AssignedISPID), formatNullTime(lead.AssignedAt), lead.Notes, lead.OutcomeNotes,
		formatNullTime(lead.ConvertedAt), lead.Version, formatTime(lead.CreatedAt), formatTime(lead.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Resource: "Lead", Field: "id", Value: lead.ID}
		}
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

// Update writes the mutable fields of lead. The tariff snapshot and
// creation time are never rewritten.
func (r *LeadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	return r.mutate(ctx, lead.ID, lead.Version, func(stored *domain.Lead) {
		stored.Status = lead.Status
		stored.FullName = lead.FullName
		stored.Phone = lead.Phone
		stored.Email = lead.Email
		stored.Address = lead.Address
		stored.AssignedISPID = lead.AssignedISPID
		stored.AssignedAt = lead.AssignedAt
		stored.Notes = lead.Notes
		stored.OutcomeNotes = lead.OutcomeNotes
		stored.ConvertedAt = lead.ConvertedAt
		stored.UpdatedAt = r.now()
	})
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, version int, status domain.Status, notes string) (domain.Lead, error) {
	return r.mutate(ctx, id, version, func(stored *domain.Lead) {
		stored.ApplyStatus(status, notes, r.now())
	})
}

func (r *LeadRepository) AssignToISP(ctx context.Context, id string, version int, ispID string) (domain.Lead, error) {
	return r.mutate(ctx, id, version, func(stored *domain.Lead) {
		stored.AssignTo(ispID, r.now())
	})
}

// mutate reads the lead, applies fn and writes it back only if nobody else
// wrote in between.
func (r *LeadRepository) mutate(ctx context.Context, id string, version int, fn func(*domain.Lead)) (domain.Lead, error) {
	lead, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if lead.Version != version {
		return domain.Lead{}, &domain.VersionConflictError{LeadID: id, Expected: version}
	}

	fn(&lead)
	lead.ID = id
	lead.Version = version + 1

	result, err := r.s.exec(ctx,
		`UPDATE leads SET status = ?, full_name = ?, phone = ?, email = ?, address = ?,
		 assigned_isp_id = ?, assigned_at = ?, notes = ?, outcome_notes = ?, converted_at = ?,
		 version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(lead.Status), lead.FullName, lead.Phone, lead.Email, lead.Address,
		nullString(lead.AssignedISPID), formatNullTime(lead.AssignedAt), lead.Notes, lead.OutcomeNotes,
		formatNullTime(lead.ConvertedAt), lead.Version, formatTime(lead.UpdatedAt),
		id, version,
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("updating lead: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return domain.Lead{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.Lead{}, &domain.VersionConflictError{LeadID: id, Expected: version}
	}
	return lead, nil
}

func (r *LeadRepository) list(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func scanLead(row scanner) (domain.Lead, error) {
	var l domain.Lead
	var status, source, snapshot, createdAt, updatedAt string
	var assignedISP, assignedAt, convertedAt sql.NullString

	err := row.Scan(&l.ID, &status, &source, &l.FullName, &l.Phone, &l.Email, &l.CityID, &l.DistrictID,
		&l.Address, &snapshot, &assignedISP, &assignedAt, &l.Notes, &l.OutcomeNotes, &convertedAt,
		&l.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lead{}, err
		}
		return domain.Lead{}, fmt.Errorf("scanning lead: %w", err)
	}

	l.Status = domain.Status(status)
	l.Source = domain.Source(source)
	l.AssignedISPID = assignedISP.String
	if err := json.Unmarshal([]byte(snapshot), &l.Tariff); err != nil {
		return domain.Lead{}, fmt.Errorf("decoding tariff snapshot of lead %s: %w", l.ID, err)
	}
	if l.AssignedAt, err = parseNullTime(assignedAt); err != nil {
		return domain.Lead{}, err
	}
	if l.ConvertedAt, err = parseNullTime(convertedAt); err != nil {
		return domain.Lead{}, err
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Lead{}, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Lead{}, err
	}
	return l, nil
}
