package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of appointment lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", fmt.Errorf("invalid appointment status %q", s)
	}
	return st, nil
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Type       string    `db:"appointment_type" json:"type"`
	Status     Status    `db:"status" json:"status"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	DentistID  uuid.UUID `db:"dentist_id" json:"dentist_id"`
	LocationID uuid.UUID `db:"location_id" json:"location_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
