package registry

import (
	"time"

	"github.com/google/uuid"
)

// Address maps to the address table. Addresses are shared: a row may be
// referenced by any number of patients and surgery locations, and is never
// mutated once created.
type Address struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Street    string    `db:"street" json:"street"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	Zipcode   string    `db:"zipcode" json:"zipcode"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table. Email, lower-cased, is the natural key
// used for deduplication when non-blank.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	ContactNumber string     `db:"contact_number" json:"contact_number"`
	Email         string     `db:"email" json:"email"`
	DOB           time.Time  `db:"dob" json:"dob"`
	AddressID     *uuid.UUID `db:"address_id" json:"address_id,omitempty"`
	Address       *Address   `db:"-" json:"address,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Dentist maps to the dentist table. Email, lower-cased, is the natural key.
type Dentist struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	ContactNumber  string    `db:"contact_number" json:"contact_number"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SurgeryLocation maps to the surgery_location table. The natural key is the
// (name, address) pair.
type SurgeryLocation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	ContactNumber string     `db:"contact_number" json:"contact_number"`
	AddressID     *uuid.UUID `db:"address_id" json:"address_id,omitempty"`
	Address       *Address   `db:"-" json:"address,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
