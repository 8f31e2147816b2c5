package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	bills Repository
}

func NewService(bills Repository) *Service {
	return &Service{bills: bills}
}

// CreateBill issues a bill for an appointment. An appointment carries at
// most one bill.
func (s *Service) CreateBill(ctx context.Context, b *Bill) error {
	if b.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointment_id is required")
	}
	if b.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if b.TotalCost < 0 {
		return fmt.Errorf("total_cost must not be negative")
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = StatusUnpaid
	}
	if _, err := ParsePaymentStatus(string(b.PaymentStatus)); err != nil {
		return err
	}
	if _, err := s.bills.GetByAppointment(ctx, b.AppointmentID); err == nil {
		return fmt.Errorf("appointment %s already has a bill", b.AppointmentID)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if b.IssuedAt.IsZero() {
		b.IssuedAt = time.Now()
	}
	return s.bills.Create(ctx, b)
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

func (s *Service) GetBillByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Bill, error) {
	return s.bills.GetByAppointment(ctx, appointmentID)
}

// UpdateBill changes cost or payment status. Bills never move to another
// appointment or patient.
func (s *Service) UpdateBill(ctx context.Context, b *Bill) error {
	if b.TotalCost < 0 {
		return fmt.Errorf("total_cost must not be negative")
	}
	if _, err := ParsePaymentStatus(string(b.PaymentStatus)); err != nil {
		return err
	}
	return s.bills.Update(ctx, b)
}

func (s *Service) DeleteBill(ctx context.Context, id uuid.UUID) error {
	return s.bills.Delete(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	return s.bills.List(ctx, limit, offset)
}

func (s *Service) ListBillsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	return s.bills.ListByPatient(ctx, patientID, limit, offset)
}

// OutstandingCount reports how many of the patient's bills are not fully
// paid. Booking consults this before accepting a new appointment.
func (s *Service) OutstandingCount(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.bills.CountOutstanding(ctx, patientID)
}
