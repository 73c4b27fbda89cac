package model

import "time"

// Role values stored in the `users.role` column. The zero-privilege
// default for every registered account is RoleUser; elevated roles are
// assigned out of band (seed data or an admin flow).
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository and service layers;
// handlers define separate response types that exclude sensitive
// fields such as the password hash.
//
// A user may have an empty PasswordHash: accounts that only ever
// authenticate through one-time codes never set a password. An
// unverified email blocks both password and OTP login, while an
// inactive account blocks every login path.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name.
//  Email         – unique email address (stored as given, lookup is exact).
//  PasswordHash  – bcrypt hashed password; empty when no password is set.
//  EmailVerified – whether the address was confirmed via OTP.
//  IsActive      – whether the account is allowed to log in.
//  Role          – one of the Role* constants above.
//  LastLogin     – time of the last successful login, nil before the first.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64     // users.id
	Name          string     // users.name
	Email         string     // users.email
	PasswordHash  string     // users.password_hash (nullable)
	EmailVerified bool       // users.email_verified
	IsActive      bool       // users.is_active
	Role          string     // users.role
	LastLogin     *time.Time // users.last_login (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// HasPassword reports whether the account can complete password login
// at all. OTP-only accounts return false.
func (u User) HasPassword() bool { return u.PasswordHash != "" }
