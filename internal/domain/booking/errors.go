package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError marks a request the caller can fix: bad fields, a time
// outside opening hours, a missing reference.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// LimitExceededError is returned when a dentist already carries the weekly
// maximum of appointments for the target week.
type LimitExceededError struct {
	DentistID uuid.UUID
	Count     int
	WeekStart time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("dentist %s already has %d appointments in the week starting %s",
		e.DentistID, e.Count, e.WeekStart.Format("2006-01-02"))
}

// OutstandingBillError is returned when a patient with unpaid bills tries to
// book a new appointment.
type OutstandingBillError struct {
	PatientID uuid.UUID
	Count     int
}

func (e *OutstandingBillError) Error() string {
	return fmt.Sprintf("patient %s has %d outstanding bills", e.PatientID, e.Count)
}
