package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the closed set of bill payment states.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "PAID"
	StatusUnpaid  PaymentStatus = "UNPAID"
	StatusPartial PaymentStatus = "PARTIAL"
)

var validStatuses = map[PaymentStatus]bool{
	StatusPaid:    true,
	StatusUnpaid:  true,
	StatusPartial: true,
}

// ParsePaymentStatus validates a raw status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(s)
	if !validStatuses[ps] {
		return "", fmt.Errorf("invalid payment status %q", s)
	}
	return ps, nil
}

// Outstanding reports whether the bill still blocks new bookings for the
// patient. Anything not fully paid counts.
func (s PaymentStatus) Outstanding() bool {
	return s != StatusPaid
}

// Bill maps to the bill table. At most one bill exists per appointment.
type Bill struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	TotalCost     float64       `db:"total_cost" json:"total_cost"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	IssuedAt      time.Time     `db:"issued_at" json:"issued_at"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
