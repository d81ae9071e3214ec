package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/nettap/internal/domain"
)

var (
	_ domain.CityRepository     = (*CityRepository)(nil)
	_ domain.DistrictRepository = (*DistrictRepository)(nil)
	_ domain.ISPRepository      = (*ISPRepository)(nil)
	_ domain.TariffRepository   = (*TariffRepository)(nil)
)

const (
	cityColumns = `id, name, name_az, name_en, is_active`
	insertCity  = `INSERT INTO cities (` + cityColumns + `) VALUES (?, ?, ?, ?, ?)`

	districtColumns = `id, city_id, name, name_az, name_en, is_active`
	insertDistrict  = `INSERT INTO districts (` + districtColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	ispColumns = `id, name, logo, description, contact_email, contact_phone, website,
		priority_score, is_active, created_at, updated_at`
	insertISP = `INSERT INTO isps (` + ispColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tariffColumns = `id, isp_id, name, description, technology, speed_mbps, upload_speed_mbps,
		price_monthly, contract_length_months, data_limit_gb, free_modem, free_installation,
		discount_percentage, gift_included, limited_time, no_contract, is_active, created_at, updated_at`
	insertTariff = `INSERT INTO tariffs (` + tariffColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertTariffDistrict = `INSERT INTO tariff_districts (tariff_id, district_id) VALUES (?, ?)`
)

func cityArgs(c domain.City) []any {
	return []any{c.ID, c.Name, c.NameAz, c.NameEn, boolInt(c.IsActive)}
}

func districtArgs(d domain.District) []any {
	return []any{d.ID, d.CityID, d.Name, d.NameAz, d.NameEn, boolInt(d.IsActive)}
}

func ispArgs(isp domain.ISP) []any {
	return []any{
		isp.ID, isp.Name, isp.Logo, isp.Description, isp.ContactEmail, isp.ContactPhone, isp.Website,
		isp.PriorityScore, boolInt(isp.IsActive), formatTime(isp.CreatedAt), formatTime(isp.UpdatedAt),
	}
}

func tariffArgs(t domain.Tariff) []any {
	c := t.Campaigns
	return []any{
		t.ID, t.ISPID, t.Name, t.Description, string(t.Technology), t.SpeedMbps, nullInt(t.UploadSpeedMbps),
		t.PriceMonthly, t.ContractLengthMonths, nullInt(t.DataLimitGB),
		boolInt(c.FreeModem), boolInt(c.FreeInstallation), c.DiscountPercentage, c.GiftIncluded,
		boolInt(c.LimitedTime), boolInt(c.NoContract),
		boolInt(t.IsActive), formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	}
}

// --- Cities ---

// CityRepository reads cities.
type CityRepository struct{ s *Store }

func (r *CityRepository) FindByID(ctx context.Context, id string) (domain.City, error) {
	c, err := scanCity(r.s.queryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.City{}, &domain.NotFoundError{Resource: "City", ID: id}
	}
	return c, err
}

func (r *CityRepository) FindAll(ctx context.Context) ([]domain.City, error) {
	return r.list(ctx, `SELECT `+cityColumns+` FROM cities ORDER BY name`)
}

func (r *CityRepository) FindActive(ctx context.Context) ([]domain.City, error) {
	return r.list(ctx, `SELECT `+cityColumns+` FROM cities WHERE is_active = 1 ORDER BY name`)
}

func (r *CityRepository) list(ctx context.Context, query string, args ...any) ([]domain.City, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}
	defer rows.Close()

	var out []domain.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCity(row scanner) (domain.City, error) {
	var c domain.City
	if err := row.Scan(&c.ID, &c.Name, &c.NameAz, &c.NameEn, &c.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.City{}, err
		}
		return domain.City{}, fmt.Errorf("scanning city: %w", err)
	}
	return c, nil
}

// --- Districts ---

// DistrictRepository reads districts.
type DistrictRepository struct{ s *Store }

func (r *DistrictRepository) FindByID(ctx context.Context, id string) (domain.District, error) {
	d, err := scanDistrict(r.s.queryRow(ctx, `SELECT `+districtColumns+` FROM districts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.District{}, &domain.NotFoundError{Resource: "District", ID: id}
	}
	return d, err
}

func (r *DistrictRepository) FindByCityID(ctx context.Context, cityID string) ([]domain.District, error) {
	return r.list(ctx, `SELECT `+districtColumns+` FROM districts
		WHERE city_id = ? AND is_active = 1 ORDER BY name`, cityID)
}

func (r *DistrictRepository) FindAll(ctx context.Context) ([]domain.District, error) {
	return r.list(ctx, `SELECT `+districtColumns+` FROM districts ORDER BY name`)
}

func (r *DistrictRepository) list(ctx context.Context, query string, args ...any) ([]domain.District, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing districts: %w", err)
	}
	defer rows.Close()

	var out []domain.District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDistrict(row scanner) (domain.District, error) {
	var d domain.District
	if err := row.Scan(&d.ID, &d.CityID, &d.Name, &d.NameAz, &d.NameEn, &d.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.District{}, err
		}
		return domain.District{}, fmt.Errorf("scanning district: %w", err)
	}
	return d, nil
}

// --- ISPs ---

// ISPRepository reads and writes providers.
type ISPRepository struct{ s *Store }

func (r *ISPRepository) FindByID(ctx context.Context, id string) (domain.ISP, error) {
	isp, err := scanISP(r.s.queryRow(ctx, `SELECT `+ispColumns+` FROM isps WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ISP{}, &domain.NotFoundError{Resource: "ISP", ID: id}
	}
	return isp, err
}

func (r *ISPRepository) FindAll(ctx context.Context) ([]domain.ISP, error) {
	return r.list(ctx, `SELECT `+ispColumns+` FROM isps ORDER BY priority_score DESC, name`)
}

func (r *ISPRepository) FindActive(ctx context.Context) ([]domain.ISP, error) {
	return r.list(ctx, `SELECT `+ispColumns+` FROM isps WHERE is_active = 1 ORDER BY priority_score DESC, name`)
}

func (r *ISPRepository) Create(ctx context.Context, isp domain.ISP) error {
	if _, err := r.s.exec(ctx, insertISP, ispArgs(isp)...); err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Resource: "ISP", Field: "id", Value: isp.ID}
		}
		return fmt.Errorf("inserting isp: %w", err)
	}
	return nil
}

func (r *ISPRepository) Update(ctx context.Context, isp domain.ISP) error {
	result, err := r.s.exec(ctx,
		`UPDATE isps SET name = ?, logo = ?, description = ?, contact_email = ?, contact_phone = ?,
		 website = ?, priority_score = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		isp.Name, isp.Logo, isp.Description, isp.ContactEmail, isp.ContactPhone,
		isp.Website, isp.PriorityScore, boolInt(isp.IsActive), formatTime(isp.UpdatedAt), isp.ID,
	)
	if err != nil {
		return fmt.Errorf("updating isp: %w", err)
	}
	return expectOne(result, "ISP", isp.ID)
}

func (r *ISPRepository) list(ctx context.Context, query string, args ...any) ([]domain.ISP, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing isps: %w", err)
	}
	defer rows.Close()

	var out []domain.ISP
	for rows.Next() {
		isp, err := scanISP(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, isp)
	}
	return out, rows.Err()
}

func scanISP(row scanner) (domain.ISP, error) {
	var isp domain.ISP
	var createdAt, updatedAt string
	err := row.Scan(&isp.ID, &isp.Name, &isp.Logo, &isp.Description, &isp.ContactEmail, &isp.ContactPhone,
		&isp.Website, &isp.PriorityScore, &isp.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ISP{}, err
		}
		return domain.ISP{}, fmt.Errorf("scanning isp: %w", err)
	}
	if isp.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.ISP{}, err
	}
	if isp.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.ISP{}, err
	}
	return isp, nil
}

// --- Tariffs ---

// TariffRepository reads and writes tariffs and their district coverage.
type TariffRepository struct{ s *Store }

func (r *TariffRepository) FindByID(ctx context.Context, id string) (domain.Tariff, error) {
	t, err := scanTariff(r.s.queryRow(ctx, `SELECT `+tariffColumns+` FROM tariffs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tariff{}, &domain.NotFoundError{Resource: "Tariff", ID: id}
	}
	if err != nil {
		return domain.Tariff{}, err
	}
	tariffs := []domain.Tariff{t}
	if err := r.attachDistricts(ctx, tariffs); err != nil {
		return domain.Tariff{}, err
	}
	return tariffs[0], nil
}

// FindByFilter pushes every criterion into SQL. Sorting is left to the caller.
func (r *TariffRepository) FindByFilter(ctx context.Context, c domain.SearchCriteria, _ domain.SortOptions) ([]domain.Tariff, error) {
	where := []string{"is_active = 1"}
	var args []any

	if len(c.DistrictIDs) > 0 {
		where = append(where, `id IN (SELECT tariff_id FROM tariff_districts WHERE district_id IN (`+
			placeholders(len(c.DistrictIDs))+`))`)
		for _, id := range c.DistrictIDs {
			args = append(args, id)
		}
	}
	if len(c.Technologies) > 0 {
		where = append(where, `technology IN (`+placeholders(len(c.Technologies))+`)`)
		for _, t := range c.Technologies {
			args = append(args, string(t))
		}
	}
	if c.MinSpeedMbps > 0 {
		where = append(where, "speed_mbps >= ?")
		args = append(args, c.MinSpeedMbps)
	}
	if c.MaxSpeedMbps > 0 {
		where = append(where, "speed_mbps <= ?")
		args = append(args, c.MaxSpeedMbps)
	}
	if c.MinPriceMonthly > 0 {
		where = append(where, "price_monthly >= ?")
		args = append(args, c.MinPriceMonthly)
	}
	if c.MaxPriceMonthly > 0 {
		where = append(where, "price_monthly <= ?")
		args = append(args, c.MaxPriceMonthly)
	}
	if c.MaxContractLength != nil {
		where = append(where, "contract_length_months <= ?")
		args = append(args, *c.MaxContractLength)
	}
	if c.Campaigns.FreeModem {
		where = append(where, "free_modem = 1")
	}
	if c.Campaigns.FreeInstallation {
		where = append(where, "free_installation = 1")
	}
	if c.Campaigns.NoContract {
		where = append(where, "no_contract = 1")
	}
	if c.Campaigns.LimitedTime {
		where = append(where, "limited_time = 1")
	}

	query := `SELECT ` + tariffColumns + ` FROM tariffs WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	return r.list(ctx, query, args...)
}

func (r *TariffRepository) FindByISPID(ctx context.Context, ispID string) ([]domain.Tariff, error) {
	return r.list(ctx, `SELECT `+tariffColumns+` FROM tariffs WHERE isp_id = ? ORDER BY id`, ispID)
}

func (r *TariffRepository) Create(ctx context.Context, t domain.Tariff) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.s.rebind(insertTariff), tariffArgs(t)...); err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Resource: "Tariff", Field: "id", Value: t.ID}
		}
		return fmt.Errorf("inserting tariff: %w", err)
	}
	if err := r.writeDistricts(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TariffRepository) Update(ctx context.Context, t domain.Tariff) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	c := t.Campaigns
	result, err := tx.ExecContext(ctx, r.s.rebind(
		`UPDATE tariffs SET isp_id = ?, name = ?, description = ?, technology = ?, speed_mbps = ?,
		 upload_speed_mbps = ?, price_monthly = ?, contract_length_months = ?, data_limit_gb = ?,
		 free_modem = ?, free_installation = ?, discount_percentage = ?, gift_included = ?,
		 limited_time = ?, no_contract = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`),
		t.ISPID, t.Name, t.Description, string(t.Technology), t.SpeedMbps,
		nullInt(t.UploadSpeedMbps), t.PriceMonthly, t.ContractLengthMonths, nullInt(t.DataLimitGB),
		boolInt(c.FreeModem), boolInt(c.FreeInstallation), c.DiscountPercentage, c.GiftIncluded,
		boolInt(c.LimitedTime), boolInt(c.NoContract), boolInt(t.IsActive), formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating tariff: %w", err)
	}
	if err := expectOne(result, "Tariff", t.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, r.s.rebind(`DELETE FROM tariff_districts WHERE tariff_id = ?`), t.ID); err != nil {
		return fmt.Errorf("clearing tariff districts: %w", err)
	}
	if err := r.writeDistricts(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TariffRepository) writeDistricts(ctx context.Context, tx *sql.Tx, t domain.Tariff) error {
	stmt := r.s.rebind(insertTariffDistrict)
	for _, d := range t.AvailableDistrictIDs {
		if _, err := tx.ExecContext(ctx, stmt, t.ID, d); err != nil {
			return fmt.Errorf("inserting tariff district: %w", err)
		}
	}
	return nil
}

func (r *TariffRepository) list(ctx context.Context, query string, args ...any) ([]domain.Tariff, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tariffs: %w", err)
	}
	defer rows.Close()

	var out []domain.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the connection before the follow-up query; SQLite runs with one.
	rows.Close()

	if err := r.attachDistricts(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachDistricts loads coverage for all tariffs in one query.
func (r *TariffRepository) attachDistricts(ctx context.Context, tariffs []domain.Tariff) error {
	if len(tariffs) == 0 {
		return nil
	}
	index := make(map[string]int, len(tariffs))
	args := make([]any, len(tariffs))
	for i, t := range tariffs {
		index[t.ID] = i
		args[i] = t.ID
		tariffs[i].AvailableDistrictIDs = []string{}
	}

	rows, err := r.s.query(ctx, `SELECT tariff_id, district_id FROM tariff_districts
		WHERE tariff_id IN (`+placeholders(len(tariffs))+`) ORDER BY tariff_id, district_id`, args...)
	if err != nil {
		return fmt.Errorf("loading tariff districts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tariffID, districtID string
		if err := rows.Scan(&tariffID, &districtID); err != nil {
			return fmt.Errorf("scanning tariff district: %w", err)
		}
		i := index[tariffID]
		tariffs[i].AvailableDistrictIDs = append(tariffs[i].AvailableDistrictIDs, districtID)
	}
	return rows.Err()
}

func scanTariff(row scanner) (domain.Tariff, error) {
	var t domain.Tariff
	var technology, createdAt, updatedAt string
	var upload, dataLimit sql.NullInt64
	c := &t.Campaigns

	err := row.Scan(&t.ID, &t.ISPID, &t.Name, &t.Description, &technology, &t.SpeedMbps, &upload,
		&t.PriceMonthly, &t.ContractLengthMonths, &dataLimit, &c.FreeModem, &c.FreeInstallation,
		&c.DiscountPercentage, &c.GiftIncluded, &c.LimitedTime, &c.NoContract, &t.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tariff{}, err
		}
		return domain.Tariff{}, fmt.Errorf("scanning tariff: %w", err)
	}

	t.Technology = domain.Technology(technology)
	t.UploadSpeedMbps = intPtr(upload)
	t.DataLimitGB = intPtr(dataLimit)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Tariff{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Tariff{}, err
	}
	return t, nil
}

// expectOne turns a zero-row update into a not-found error.
func expectOne(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}
