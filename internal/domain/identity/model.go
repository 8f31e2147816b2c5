package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold.
const (
	RoleAdmin   = "admin"
	RoleDentist = "dentist"
	RolePatient = "patient"
)

var validRoles = map[string]bool{
	RoleAdmin:   true,
	RoleDentist: true,
	RolePatient: true,
}

// ValidRole reports whether the role is one of the clinic roles.
func ValidRole(role string) bool {
	return validRoles[role]
}

// User maps to the app_user table. PatientID or DentistID link the account
// to its clinical record when the role warrants one.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	PatientID    *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	DentistID    *uuid.UUID `db:"dentist_id" json:"dentist_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	DentistID *uuid.UUID `json:"dentist_id,omitempty"`
}

// LoginRequest is the payload for token issuance.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

func (r *RegisterRequest) validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if len(r.Password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if !ValidRole(r.Role) {
		return fmt.Errorf("invalid role %q", r.Role)
	}
	return nil
}
