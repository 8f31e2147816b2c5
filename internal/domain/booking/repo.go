package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("booking: not found")

// Repository persists Appointment rows. CountByDentistInRange and
// LockDentistWeek back the weekly capacity guard; callers run them inside
// the same transaction so the count cannot go stale before the insert.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	// ListByPatient and ListByDentist optionally filter on status; the
	// empty status matches everything.
	ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error)
	ListByDentist(ctx context.Context, dentistID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error)
	// StatsByPatient and StatsByDentist count upcoming (future, not
	// cancelled or no-show) and completed appointments.
	StatsByPatient(ctx context.Context, patientID uuid.UUID, now time.Time) (upcoming, completed int, err error)
	StatsByDentist(ctx context.Context, dentistID uuid.UUID, now time.Time) (upcoming, completed int, err error)
	// CountByDentistInRange counts the dentist's appointments with a start
	// time inside [from, to].
	CountByDentistInRange(ctx context.Context, dentistID uuid.UUID, from, to time.Time) (int, error)
	// FindDuplicate looks up an appointment with the exact same patient,
	// dentist, start time and location.
	FindDuplicate(ctx context.Context, patientID, dentistID uuid.UUID, start time.Time, locationID uuid.UUID) (*Appointment, error)
	// LockDentistWeek takes a transaction-scoped advisory lock for the
	// (dentist, week) pair, serializing concurrent bookings for it.
	LockDentistWeek(ctx context.Context, dentistID uuid.UUID, weekStart time.Time) error
}
