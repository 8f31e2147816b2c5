package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Address Repository --

type mockAddressRepo struct {
	addresses map[uuid.UUID]*Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[uuid.UUID]*Address)}
}

func (m *mockAddressRepo) Create(_ context.Context, a *Address) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepo) GetByID(_ context.Context, id uuid.UUID) (*Address, error) {
	a, ok := m.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) GetByFields(_ context.Context, street, city, state, zipcode string) (*Address, error) {
	for _, a := range m.addresses {
		if a.Street == street && a.City == city && a.State == state && a.Zipcode == zipcode {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockAddressRepo) List(_ context.Context, limit, offset int) ([]*Address, int, error) {
	var result []*Address
	for _, a := range m.addresses {
		result = append(result, a)
	}
	return result, len(result), nil
}

// -- Mock Patient Repository --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == NormalizeEmail(email) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if q == "" || containsFold(p.FirstName, q) || containsFold(p.LastName, q) || containsFold(p.Email, q) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

// -- Mock Dentist Repository --

type mockDentistRepo struct {
	dentists map[uuid.UUID]*Dentist
}

func newMockDentistRepo() *mockDentistRepo {
	return &mockDentistRepo{dentists: make(map[uuid.UUID]*Dentist)}
}

func (m *mockDentistRepo) Create(_ context.Context, d *Dentist) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.dentists[d.ID] = d
	return nil
}

func (m *mockDentistRepo) GetByID(_ context.Context, id uuid.UUID) (*Dentist, error) {
	d, ok := m.dentists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDentistRepo) GetByEmail(_ context.Context, email string) (*Dentist, error) {
	for _, d := range m.dentists {
		if d.Email == NormalizeEmail(email) {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDentistRepo) Update(_ context.Context, d *Dentist) error {
	if _, ok := m.dentists[d.ID]; !ok {
		return ErrNotFound
	}
	m.dentists[d.ID] = d
	return nil
}

func (m *mockDentistRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.dentists[id]; !ok {
		return ErrNotFound
	}
	delete(m.dentists, id)
	return nil
}

func (m *mockDentistRepo) List(_ context.Context, q string, limit, offset int) ([]*Dentist, int, error) {
	var result []*Dentist
	for _, d := range m.dentists {
		if q == "" || containsFold(d.FirstName, q) || containsFold(d.LastName, q) || containsFold(d.Email, q) {
			result = append(result, d)
		}
	}
	return result, len(result), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// -- Mock SurgeryLocation Repository --

type mockLocationRepo struct {
	locations map[uuid.UUID]*SurgeryLocation
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[uuid.UUID]*SurgeryLocation)}
}

func (m *mockLocationRepo) Create(_ context.Context, l *SurgeryLocation) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	l.UpdatedAt = time.Now()
	m.locations[l.ID] = l
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*SurgeryLocation, error) {
	l, ok := m.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (m *mockLocationRepo) GetByNameAndAddress(_ context.Context, name string, addressID *uuid.UUID) (*SurgeryLocation, error) {
	for _, l := range m.locations {
		if l.Name != name {
			continue
		}
		if addressID == nil && l.AddressID == nil {
			return l, nil
		}
		if addressID != nil && l.AddressID != nil && *addressID == *l.AddressID {
			return l, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockLocationRepo) Update(_ context.Context, l *SurgeryLocation) error {
	if _, ok := m.locations[l.ID]; !ok {
		return ErrNotFound
	}
	m.locations[l.ID] = l
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.locations[id]; !ok {
		return ErrNotFound
	}
	delete(m.locations, id)
	return nil
}

func (m *mockLocationRepo) List(_ context.Context, limit, offset int) ([]*SurgeryLocation, int, error) {
	var result []*SurgeryLocation
	for _, l := range m.locations {
		result = append(result, l)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockAddressRepo(), newMockPatientRepo(), newMockDentistRepo(), newMockLocationRepo())
}

// -- Address reconciliation --

func TestFindOrCreateAddress_CreatesNew(t *testing.T) {
	svc := newTestService()
	a, err := svc.FindOrCreateAddress(context.Background(), &Address{
		Street: "12 High St", City: "Leeds", State: "West Yorkshire", Zipcode: "LS1 4DY",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil || a.ID == uuid.Nil {
		t.Fatal("expected persisted address with id")
	}
}

func TestFindOrCreateAddress_ReturnsExistingOnExactMatch(t *testing.T) {
	svc := newTestService()
	first, err := svc.FindOrCreateAddress(context.Background(), &Address{
		Street: "12 High St", City: "Leeds", State: "West Yorkshire", Zipcode: "LS1 4DY",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.FindOrCreateAddress(context.Background(), &Address{
		Street: "12 High St", City: "Leeds", State: "West Yorkshire", Zipcode: "LS1 4DY",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same address row, got %s and %s", first.ID, second.ID)
	}
}

func TestFindOrCreateAddress_DifferentFieldCreatesNew(t *testing.T) {
	svc := newTestService()
	first, _ := svc.FindOrCreateAddress(context.Background(), &Address{
		Street: "12 High St", City: "Leeds", State: "West Yorkshire", Zipcode: "LS1 4DY",
	})
	second, _ := svc.FindOrCreateAddress(context.Background(), &Address{
		Street: "12 High St", City: "Leeds", State: "West Yorkshire", Zipcode: "LS2 7EY",
	})
	if first.ID == second.ID {
		t.Error("expected distinct rows for differing zipcodes")
	}
}

func TestFindOrCreateAddress_NilAndBlankResolveToNil(t *testing.T) {
	svc := newTestService()
	a, err := svc.FindOrCreateAddress(context.Background(), nil)
	if err != nil || a != nil {
		t.Fatalf("expected nil, nil for nil candidate, got %v, %v", a, err)
	}
	a, err = svc.FindOrCreateAddress(context.Background(), &Address{})
	if err != nil || a != nil {
		t.Fatalf("expected nil, nil for blank candidate, got %v, %v", a, err)
	}
}

// -- Patient reconciliation --

func TestFindOrCreatePatient_MatchByEmailWinsOverCandidate(t *testing.T) {
	svc := newTestService()
	existing, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Alice", LastName: "Moran", Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Alicia", LastName: "Morgan", Email: "ALICE@Example.COM ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected existing patient, got new id %s", got.ID)
	}
	if got.FirstName != "Alice" {
		t.Errorf("stored record should win, got first name %q", got.FirstName)
	}
}

func TestFindOrCreatePatient_NoEmailAlwaysCreates(t *testing.T) {
	svc := newTestService()
	first, err := svc.FindOrCreatePatient(context.Background(), &Patient{FirstName: "Bob", LastName: "Hale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.FindOrCreatePatient(context.Background(), &Patient{FirstName: "Bob", LastName: "Hale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Error("patients without email must not be deduplicated")
	}
}

func TestFindOrCreatePatient_NormalizesEmailOnCreate(t *testing.T) {
	svc := newTestService()
	p, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Carol", LastName: "Witt", Email: "  Carol@Example.COM ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "carol@example.com" {
		t.Errorf("expected normalized email, got %q", p.Email)
	}
}

func TestFindOrCreatePatient_ReconcilesNestedAddress(t *testing.T) {
	svc := newTestService()
	addr := Address{Street: "5 Mill Ln", City: "York", State: "North Yorkshire", Zipcode: "YO1 7HY"}

	a := addr
	p1, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Dan", LastName: "Orr", Email: "dan@example.com", Address: &a,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := addr
	p2, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Eve", LastName: "Nash", Email: "eve@example.com", Address: &b,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.AddressID == nil || p2.AddressID == nil {
		t.Fatal("expected both patients to carry an address id")
	}
	if *p1.AddressID != *p2.AddressID {
		t.Error("equal addresses should collapse to one shared row")
	}
}

func TestFindOrCreatePatient_RejectsFutureDOB(t *testing.T) {
	svc := newTestService()
	_, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Fay", LastName: "Ume", DOB: time.Now().Add(24 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected error for future dob")
	}
}

func TestFindOrCreatePatient_RequiresNames(t *testing.T) {
	svc := newTestService()
	_, err := svc.FindOrCreatePatient(context.Background(), &Patient{Email: "nameless@example.com"})
	if err == nil {
		t.Fatal("expected error for missing names")
	}
}

// -- Dentist reconciliation --

func TestFindOrCreateDentist_MatchByEmail(t *testing.T) {
	svc := newTestService()
	existing, err := svc.FindOrCreateDentist(context.Background(), &Dentist{
		FirstName: "Greg", LastName: "Holt", Email: "greg@clinic.com", Specialization: "Orthodontics",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.FindOrCreateDentist(context.Background(), &Dentist{
		FirstName: "Gregory", LastName: "Holtz", Email: "GREG@clinic.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatal("expected existing dentist row")
	}
	if got.Specialization != "Orthodontics" {
		t.Errorf("stored record should win, got specialization %q", got.Specialization)
	}
}

func TestFindOrCreateDentist_NoEmailAlwaysCreates(t *testing.T) {
	svc := newTestService()
	first, _ := svc.FindOrCreateDentist(context.Background(), &Dentist{FirstName: "Hana", LastName: "Ito"})
	second, _ := svc.FindOrCreateDentist(context.Background(), &Dentist{FirstName: "Hana", LastName: "Ito"})
	if first.ID == second.ID {
		t.Error("dentists without email must not be deduplicated")
	}
}

// -- SurgeryLocation reconciliation --

func TestFindOrCreateSurgeryLocation_MatchByNameAndAddress(t *testing.T) {
	svc := newTestService()
	addr := Address{Street: "9 Dock Rd", City: "Hull", State: "East Yorkshire", Zipcode: "HU1 2AB"}

	a := addr
	first, err := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{
		Name: "Riverside Surgery", Address: &a,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := addr
	second, err := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{
		Name: "Riverside Surgery", Address: &b,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Error("same name and address should resolve to one location")
	}
}

func TestFindOrCreateSurgeryLocation_SameNameDifferentAddress(t *testing.T) {
	svc := newTestService()
	first, _ := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{
		Name: "Riverside Surgery",
		Address: &Address{Street: "9 Dock Rd", City: "Hull", State: "East Yorkshire", Zipcode: "HU1 2AB"},
	})
	second, _ := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{
		Name: "Riverside Surgery",
		Address: &Address{Street: "3 North Way", City: "Hull", State: "East Yorkshire", Zipcode: "HU3 6QL"},
	})
	if first.ID == second.ID {
		t.Error("same name at a different address is a distinct location")
	}
}

func TestFindOrCreateSurgeryLocation_NoAddressPairsOnNull(t *testing.T) {
	svc := newTestService()
	first, err := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{Name: "Mobile Unit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{Name: "Mobile Unit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Error("locations without address should dedupe on name alone")
	}
}

func TestFindOrCreateSurgeryLocation_RequiresName(t *testing.T) {
	svc := newTestService()
	if _, err := svc.FindOrCreateSurgeryLocation(context.Background(), &SurgeryLocation{}); err == nil {
		t.Fatal("expected error for blank name")
	}
}

// -- CRUD --

func TestUpdatePatient_NotFound(t *testing.T) {
	svc := newTestService()
	err := svc.UpdatePatient(context.Background(), &Patient{
		ID: uuid.New(), FirstName: "Ida", LastName: "Voss",
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDentist_NotFound(t *testing.T) {
	svc := newTestService()
	if err := svc.DeleteDentist(context.Background(), uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPatient_LoadsAddress(t *testing.T) {
	svc := newTestService()
	p, err := svc.FindOrCreatePatient(context.Background(), &Patient{
		FirstName: "Joe", LastName: "King", Email: "joe@example.com",
		Address: &Address{Street: "1 Oak Ave", City: "Leeds", State: "West Yorkshire", Zipcode: "LS6 2QP"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.GetPatient(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Address == nil || got.Address.Street != "1 Oak Ave" {
		t.Error("expected nested address to be loaded")
	}
}

func TestListPatients_Search(t *testing.T) {
	svc := newTestService()
	for _, p := range []*Patient{
		{FirstName: "Alice", LastName: "Wieland", Email: "alice@example.com"},
		{FirstName: "Bob", LastName: "Smith", Email: "bob@example.com"},
	} {
		if _, err := svc.FindOrCreatePatient(context.Background(), p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	patients, total, err := svc.ListPatients(context.Background(), "wieland", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(patients) != 1 {
		t.Fatalf("expected 1 match, got %d", total)
	}
	if patients[0].LastName != "Wieland" {
		t.Errorf("wrong patient returned: %s", patients[0].LastName)
	}

	_, total, err = svc.ListPatients(context.Background(), "  ", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("blank query should match everything, got %d", total)
	}
}
