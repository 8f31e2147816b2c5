package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("registry: not found")

// ErrInvalid marks a rejected candidate, distinct from persistence
// failures. Callers test for it with errors.Is.
var ErrInvalid = errors.New("invalid input")

// AddressRepository persists Address rows.
type AddressRepository interface {
	Create(ctx context.Context, a *Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)
	// GetByFields matches on the exact (street, city, state, zipcode) tuple.
	GetByFields(ctx context.Context, street, city, state, zipcode string) (*Address, error)
	List(ctx context.Context, limit, offset int) ([]*Address, int, error)
}

// PatientRepository persists Patient rows.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// GetByEmail matches case-insensitively on email.
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List filters on name or email when q is non-empty.
	List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
}

// DentistRepository persists Dentist rows.
type DentistRepository interface {
	Create(ctx context.Context, d *Dentist) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dentist, error)
	GetByEmail(ctx context.Context, email string) (*Dentist, error)
	Update(ctx context.Context, d *Dentist) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List filters on name or email when q is non-empty.
	List(ctx context.Context, q string, limit, offset int) ([]*Dentist, int, error)
}

// SurgeryLocationRepository persists SurgeryLocation rows.
type SurgeryLocationRepository interface {
	Create(ctx context.Context, l *SurgeryLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*SurgeryLocation, error)
	// GetByNameAndAddress matches on the (name, address_id) pair; addressID
	// may be nil for locations recorded without an address.
	GetByNameAndAddress(ctx context.Context, name string, addressID *uuid.UUID) (*SurgeryLocation, error)
	Update(ctx context.Context, l *SurgeryLocation) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*SurgeryLocation, int, error)
}
