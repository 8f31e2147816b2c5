package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentalcare/clinic/internal/domain/registry"
	"github.com/dentalcare/clinic/internal/platform/db"
)

// Registry resolves and reconciles the entities an appointment references.
// Implemented by registry.Service.
type Registry interface {
	FindOrCreatePatient(ctx context.Context, p *registry.Patient) (*registry.Patient, error)
	FindOrCreateDentist(ctx context.Context, d *registry.Dentist) (*registry.Dentist, error)
	FindOrCreateSurgeryLocation(ctx context.Context, l *registry.SurgeryLocation) (*registry.SurgeryLocation, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*registry.Patient, error)
	GetDentist(ctx context.Context, id uuid.UUID) (*registry.Dentist, error)
	GetSurgeryLocation(ctx context.Context, id uuid.UUID) (*registry.SurgeryLocation, error)
}

// BillChecker reports a patient's unpaid bill count. Implemented by
// billing.Service.
type BillChecker interface {
	OutstandingCount(ctx context.Context, patientID uuid.UUID) (int, error)
}

// BookingRequest carries either ids of existing records or inline candidates
// to reconcile. An inline candidate is matched against existing rows before
// anything new is created.
type BookingRequest struct {
	Type      string    `json:"type"`
	Status    string    `json:"status,omitempty"`
	StartTime time.Time `json:"start_time"`

	PatientID  *uuid.UUID `json:"patient_id,omitempty"`
	DentistID  *uuid.UUID `json:"dentist_id,omitempty"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`

	Patient  *registry.Patient         `json:"patient,omitempty"`
	Dentist  *registry.Dentist         `json:"dentist,omitempty"`
	Location *registry.SurgeryLocation `json:"location,omitempty"`
}

// UpdateRequest carries a partial appointment update. Nil fields keep their
// stored value.
type UpdateRequest struct {
	Type       *string    `json:"type,omitempty"`
	Status     *string    `json:"status,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	DentistID  *uuid.UUID `json:"dentist_id,omitempty"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
}

type Service struct {
	appts    Repository
	registry Registry
	bills    BillChecker
	tx       db.Transactor
	now      func() time.Time
}

func NewService(appts Repository, reg Registry, bills BillChecker, tx db.Transactor) *Service {
	return &Service{appts: appts, registry: reg, bills: bills, tx: tx, now: time.Now}
}

// Book validates and persists a new appointment. Inside one transaction it
// reconciles the referenced records, takes the (dentist, week) lock, short
// circuits on an exact duplicate, then enforces the outstanding-bill hold
// and the weekly capacity limit before inserting.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	if req == nil {
		return nil, &ValidationError{Msg: "booking request is required"}
	}
	if req.PatientID == nil && req.Patient == nil {
		return nil, &ValidationError{Msg: "patient is required"}
	}
	if req.DentistID == nil && req.Dentist == nil {
		return nil, &ValidationError{Msg: "dentist is required"}
	}
	if req.LocationID == nil && req.Location == nil {
		return nil, &ValidationError{Msg: "location is required"}
	}
	if err := ValidateBusinessHours(req.StartTime, s.now()); err != nil {
		return nil, err
	}
	status := StatusPending
	if req.Status != "" {
		var err error
		if status, err = ParseStatus(req.Status); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
	}

	var appt *Appointment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		patient, dentist, locationID, err := s.resolveRefs(ctx, req)
		if err != nil {
			return err
		}

		weekStart, weekEnd := WeekWindow(req.StartTime)
		if err := s.appts.LockDentistWeek(ctx, dentist.ID, weekStart); err != nil {
			return err
		}

		// A booking identical in patient, dentist, time and location is the
		// same appointment. Return it untouched instead of double-booking.
		existing, err := s.appts.FindDuplicate(ctx, patient.ID, dentist.ID, req.StartTime, locationID)
		if err == nil {
			appt = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		outstanding, err := s.bills.OutstandingCount(ctx, patient.ID)
		if err != nil {
			return err
		}
		if outstanding > 0 {
			return &OutstandingBillError{PatientID: patient.ID, Count: outstanding}
		}

		count, err := s.appts.CountByDentistInRange(ctx, dentist.ID, weekStart, weekEnd)
		if err != nil {
			return err
		}
		if count >= WeeklyLimit {
			return &LimitExceededError{DentistID: dentist.ID, Count: count, WeekStart: weekStart}
		}

		appt = &Appointment{
			Type:       req.Type,
			Status:     status,
			StartTime:  req.StartTime,
			PatientID:  patient.ID,
			DentistID:  dentist.ID,
			LocationID: locationID,
		}
		return s.appts.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// asValidation maps a reference lookup failure onto the caller's fault.
// Missing rows and rejected candidates become validation errors; anything
// else is a persistence failure and propagates untouched.
func asValidation(err error, notFoundMsg string) error {
	if errors.Is(err, registry.ErrNotFound) {
		return &ValidationError{Msg: notFoundMsg}
	}
	if errors.Is(err, registry.ErrInvalid) {
		return &ValidationError{Msg: err.Error()}
	}
	return err
}

func (s *Service) resolveRefs(ctx context.Context, req *BookingRequest) (*registry.Patient, *registry.Dentist, uuid.UUID, error) {
	var (
		patient *registry.Patient
		dentist *registry.Dentist
		err     error
	)
	if req.PatientID != nil {
		patient, err = s.registry.GetPatient(ctx, *req.PatientID)
	} else {
		patient, err = s.registry.FindOrCreatePatient(ctx, req.Patient)
	}
	if err != nil {
		return nil, nil, uuid.Nil, asValidation(err, "patient not found")
	}
	if req.DentistID != nil {
		dentist, err = s.registry.GetDentist(ctx, *req.DentistID)
	} else {
		dentist, err = s.registry.FindOrCreateDentist(ctx, req.Dentist)
	}
	if err != nil {
		return nil, nil, uuid.Nil, asValidation(err, "dentist not found")
	}

	var location *registry.SurgeryLocation
	if req.LocationID != nil {
		location, err = s.registry.GetSurgeryLocation(ctx, *req.LocationID)
	} else {
		location, err = s.registry.FindOrCreateSurgeryLocation(ctx, req.Location)
	}
	if err != nil {
		return nil, nil, uuid.Nil, asValidation(err, "location not found")
	}
	return patient, dentist, location.ID, nil
}

// Update applies a partial change to an existing appointment. Moving it to
// another slot re-checks opening hours and the target week's capacity, with
// the appointment's own current slot excluded from the count. Outstanding
// bills never block an update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Appointment, error) {
	if req == nil {
		return nil, &ValidationError{Msg: "update request is required"}
	}

	var appt *Appointment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.appts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := *current
		if req.Type != nil {
			next.Type = *req.Type
		}
		if req.Status != nil {
			status, err := ParseStatus(*req.Status)
			if err != nil {
				return &ValidationError{Msg: err.Error()}
			}
			next.Status = status
		}
		if req.StartTime != nil {
			next.StartTime = *req.StartTime
		}
		if req.DentistID != nil {
			if _, err := s.registry.GetDentist(ctx, *req.DentistID); err != nil {
				return &ValidationError{Msg: "dentist not found"}
			}
			next.DentistID = *req.DentistID
		}
		if req.LocationID != nil {
			if _, err := s.registry.GetSurgeryLocation(ctx, *req.LocationID); err != nil {
				return &ValidationError{Msg: "location not found"}
			}
			next.LocationID = *req.LocationID
		}

		moved := req.StartTime != nil || req.DentistID != nil
		if moved {
			if req.StartTime != nil {
				if err := ValidateBusinessHours(next.StartTime, s.now()); err != nil {
					return err
				}
			}
			weekStart, weekEnd := WeekWindow(next.StartTime)
			if err := s.appts.LockDentistWeek(ctx, next.DentistID, weekStart); err != nil {
				return err
			}
			count, err := s.appts.CountByDentistInRange(ctx, next.DentistID, weekStart, weekEnd)
			if err != nil {
				return err
			}
			// The appointment being moved still occupies its old slot; when
			// that slot falls inside the target week for the same dentist it
			// must not count against itself.
			if current.DentistID == next.DentistID &&
				!current.StartTime.Before(weekStart) && !current.StartTime.After(weekEnd) {
				count--
			}
			if count >= WeeklyLimit {
				return &LimitExceededError{DentistID: next.DentistID, Count: count, WeekStart: weekStart}
			}
		}

		if err := s.appts.Update(ctx, &next); err != nil {
			return err
		}
		appt = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appts.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, &ValidationError{Msg: fmt.Sprintf("unknown appointment status %q", status)}
	}
	return s.appts.ListByPatient(ctx, patientID, status, limit, offset)
}

func (s *Service) ListByDentist(ctx context.Context, dentistID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, &ValidationError{Msg: fmt.Sprintf("unknown appointment status %q", status)}
	}
	return s.appts.ListByDentist(ctx, dentistID, status, limit, offset)
}

// Stats summarizes a patient's or dentist's appointment history.
type Stats struct {
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

func (s *Service) PatientStats(ctx context.Context, patientID uuid.UUID) (*Stats, error) {
	upcoming, completed, err := s.appts.StatsByPatient(ctx, patientID, s.now())
	if err != nil {
		return nil, err
	}
	return &Stats{Upcoming: upcoming, Completed: completed}, nil
}

func (s *Service) DentistStats(ctx context.Context, dentistID uuid.UUID) (*Stats, error) {
	upcoming, completed, err := s.appts.StatsByDentist(ctx, dentistID, s.now())
	if err != nil {
		return nil, err
	}
	return &Stats{Upcoming: upcoming, Completed: completed}, nil
}

// WeeklyCount reports how many appointments the dentist holds in the week
// containing t.
func (s *Service) WeeklyCount(ctx context.Context, dentistID uuid.UUID, t time.Time) (int, error) {
	weekStart, weekEnd := WeekWindow(t)
	return s.appts.CountByDentistInRange(ctx, dentistID, weekStart, weekEnd)
}
