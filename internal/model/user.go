package model

import "time"

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a back-office account as stored in the `users` table.
// The json tags are omitted because handlers expose their own response
// types and the password hash must never leave the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name; also the actor recorded in audits.
//	PasswordHash – bcrypt hashed password.
//	FullName     – display name.
//	Role         – admin or staff.
//	IsActive     – disabled accounts cannot log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
