package domain

import "time"

// Role is an authorization role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleISP   Role = "isp"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleISP || r == RoleUser
}

// User is an account that can sign in.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	ISPID        string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
	ISPID  string
}

// PrincipalOf derives the principal for a user.
func PrincipalOf(u User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role, ISPID: u.ISPID}
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CheckISPOwnership passes for admins and for ISP principals whose ISP is ispID.
func (p Principal) CheckISPOwnership(ispID string) error {
	if p.IsAdmin() {
		return nil
	}
	if p.Role == RoleISP && p.ISPID != "" && p.ISPID == ispID {
		return nil
	}
	return &ForbiddenError{Message: "You do not have access to this ISP's resources"}
}
