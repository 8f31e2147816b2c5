package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	addresses AddressRepository
	patients  PatientRepository
	dentists  DentistRepository
	locations SurgeryLocationRepository
}

func NewService(addresses AddressRepository, patients PatientRepository, dentists DentistRepository, locations SurgeryLocationRepository) *Service {
	return &Service{addresses: addresses, patients: patients, dentists: dentists, locations: locations}
}

// NormalizeEmail is the canonical form used for deduplication: trimmed and
// lower-cased. Empty after trimming means "no email".
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// -- Address --

// FindOrCreateAddress returns the existing address whose four fields match
// the candidate exactly, or persists the candidate as a new row. A nil or
// all-blank candidate resolves to nil without touching storage.
func (s *Service) FindOrCreateAddress(ctx context.Context, a *Address) (*Address, error) {
	if a == nil {
		return nil, nil
	}
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Zipcode = strings.TrimSpace(a.Zipcode)
	if a.Street == "" && a.City == "" && a.State == "" && a.Zipcode == "" {
		return nil, nil
	}

	existing, err := s.addresses.GetByFields(ctx, a.Street, a.City, a.State, a.Zipcode)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAddress(ctx context.Context, id uuid.UUID) (*Address, error) {
	return s.addresses.GetByID(ctx, id)
}

func (s *Service) ListAddresses(ctx context.Context, limit, offset int) ([]*Address, int, error) {
	return s.addresses.List(ctx, limit, offset)
}

// -- Patient --

// FindOrCreatePatient reconciles the candidate against existing patients by
// email. On a match the stored record wins and the candidate's other fields
// are discarded. A candidate without an email always creates a new record.
func (s *Service) FindOrCreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: patient is required", ErrInvalid)
	}
	p.Email = NormalizeEmail(p.Email)

	if p.Email != "" {
		existing, err := s.patients.GetByEmail(ctx, p.Email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if err := s.validatePatient(p); err != nil {
		return nil, err
	}
	if p.Address != nil {
		addr, err := s.FindOrCreateAddress(ctx, p.Address)
		if err != nil {
			return nil, err
		}
		if addr != nil {
			p.AddressID = &addr.ID
			p.Address = addr
		}
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) validatePatient(p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	if !p.DOB.IsZero() && p.DOB.After(time.Now()) {
		return fmt.Errorf("%w: dob must be in the past", ErrInvalid)
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	return s.FindOrCreatePatient(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AddressID != nil {
		if addr, err := s.addresses.GetByID(ctx, *p.AddressID); err == nil {
			p.Address = addr
		}
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := s.validatePatient(p); err != nil {
		return err
	}
	p.Email = NormalizeEmail(p.Email)
	if p.Address != nil {
		addr, err := s.FindOrCreateAddress(ctx, p.Address)
		if err != nil {
			return err
		}
		if addr != nil {
			p.AddressID = &addr.ID
			p.Address = addr
		}
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, strings.TrimSpace(q), limit, offset)
}

// -- Dentist --

// FindOrCreateDentist mirrors FindOrCreatePatient: email is the natural key,
// the stored record wins on a hit.
func (s *Service) FindOrCreateDentist(ctx context.Context, d *Dentist) (*Dentist, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dentist is required", ErrInvalid)
	}
	d.Email = NormalizeEmail(d.Email)

	if d.Email != "" {
		existing, err := s.dentists.GetByEmail(ctx, d.Email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	if err := s.dentists.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) CreateDentist(ctx context.Context, d *Dentist) (*Dentist, error) {
	return s.FindOrCreateDentist(ctx, d)
}

func (s *Service) GetDentist(ctx context.Context, id uuid.UUID) (*Dentist, error) {
	return s.dentists.GetByID(ctx, id)
}

func (s *Service) UpdateDentist(ctx context.Context, d *Dentist) error {
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	d.Email = NormalizeEmail(d.Email)
	return s.dentists.Update(ctx, d)
}

func (s *Service) DeleteDentist(ctx context.Context, id uuid.UUID) error {
	return s.dentists.Delete(ctx, id)
}

func (s *Service) ListDentists(ctx context.Context, q string, limit, offset int) ([]*Dentist, int, error) {
	return s.dentists.List(ctx, strings.TrimSpace(q), limit, offset)
}

// -- SurgeryLocation --

// FindOrCreateSurgeryLocation reconciles by the (name, address) pair. The
// nested address is reconciled first so equal addresses collapse to one row
// before the pair lookup runs.
func (s *Service) FindOrCreateSurgeryLocation(ctx context.Context, l *SurgeryLocation) (*SurgeryLocation, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: location is required", ErrInvalid)
	}
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if l.Address != nil {
		addr, err := s.FindOrCreateAddress(ctx, l.Address)
		if err != nil {
			return nil, err
		}
		if addr != nil {
			l.AddressID = &addr.ID
			l.Address = addr
		}
	}

	existing, err := s.locations.GetByNameAndAddress(ctx, l.Name, l.AddressID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) CreateSurgeryLocation(ctx context.Context, l *SurgeryLocation) (*SurgeryLocation, error) {
	return s.FindOrCreateSurgeryLocation(ctx, l)
}

func (s *Service) GetSurgeryLocation(ctx context.Context, id uuid.UUID) (*SurgeryLocation, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.AddressID != nil {
		if addr, err := s.addresses.GetByID(ctx, *l.AddressID); err == nil {
			l.Address = addr
		}
	}
	return l, nil
}

func (s *Service) UpdateSurgeryLocation(ctx context.Context, l *SurgeryLocation) error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if l.Address != nil {
		addr, err := s.FindOrCreateAddress(ctx, l.Address)
		if err != nil {
			return err
		}
		if addr != nil {
			l.AddressID = &addr.ID
			l.Address = addr
		}
	}
	return s.locations.Update(ctx, l)
}

func (s *Service) DeleteSurgeryLocation(ctx context.Context, id uuid.UUID) error {
	return s.locations.Delete(ctx, id)
}

func (s *Service) ListSurgeryLocations(ctx context.Context, limit, offset int) ([]*SurgeryLocation, int, error) {
	return s.locations.List(ctx, limit, offset)
}
