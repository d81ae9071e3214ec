package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/nettap/internal/domain"
)

var _ domain.UserRepository = (*UserRepository)(nil)

const (
	userColumns = `id, email, password_hash, role, isp_id, full_name, is_active, last_login_at,
		created_at, updated_at`
	insertUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

func userArgs(u domain.User) []any {
	return []any{
		u.ID, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), nullString(u.ISPID), u.FullName,
		boolInt(u.IsActive), formatNullTime(u.LastLoginAt), formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	}
}

// UserRepository persists accounts. Emails are stored lower-cased.
type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, &domain.NotFoundError{Resource: "User", ID: id}
	}
	return u, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(email)
	u, err := scanUser(r.s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, &domain.NotFoundError{Resource: "User", ID: email}
	}
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	if _, err := r.s.exec(ctx, insertUser, userArgs(u)...); err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Resource: "User", Field: "email", Value: u.Email}
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u domain.User) error {
	result, err := r.s.exec(ctx,
		`UPDATE users SET email = ?, password_hash = ?, role = ?, isp_id = ?, full_name = ?,
		 is_active = ?, last_login_at = ?, updated_at = ?
		 WHERE id = ?`,
		strings.ToLower(u.Email), u.PasswordHash, string(u.Role), nullString(u.ISPID), u.FullName,
		boolInt(u.IsActive), formatNullTime(u.LastLoginAt), formatTime(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Resource: "User", Field: "email", Value: u.Email}
		}
		return fmt.Errorf("updating user: %w", err)
	}
	return expectOne(result, "User", u.ID)
}

func scanUser(row scanner) (domain.User, error) {
	var u domain.User
	var role, createdAt, updatedAt string
	var ispID, lastLogin sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &ispID, &u.FullName, &u.IsActive,
		&lastLogin, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = domain.Role(role)
	u.ISPID = ispID.String
	if u.LastLoginAt, err = parseNullTime(lastLogin); err != nil {
		return domain.User{}, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
