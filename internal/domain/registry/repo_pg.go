package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalcare/clinic/internal/platform/db"
)

// -- Address Repository --

type addressRepoPG struct {
	pool *pgxpool.Pool
}

func NewAddressRepo(pool *pgxpool.Pool) AddressRepository {
	return &addressRepoPG{pool: pool}
}

func (r *addressRepoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const addressCols = `id, street, city, state, zipcode, created_at, updated_at`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zipcode, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepoPG) Create(ctx context.Context, a *Address) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO address (id, street, city, state, zipcode)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		a.ID, a.Street, a.City, a.State, a.Zipcode,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *addressRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Address, error) {
	return scanAddress(r.conn(ctx).QueryRow(ctx, `SELECT `+addressCols+` FROM address WHERE id = $1`, id))
}

func (r *addressRepoPG) GetByFields(ctx context.Context, street, city, state, zipcode string) (*Address, error) {
	return scanAddress(r.conn(ctx).QueryRow(ctx, `
		SELECT `+addressCols+` FROM address
		WHERE street = $1 AND city = $2 AND state = $3 AND zipcode = $4
		ORDER BY created_at LIMIT 1`,
		street, city, state, zipcode))
}

func (r *addressRepoPG) List(ctx context.Context, limit, offset int) ([]*Address, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM address`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+addressCols+` FROM address ORDER BY city, street LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var addrs []*Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zipcode, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		addrs = append(addrs, &a)
	}
	return addrs, total, nil
}

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, contact_number, email, dob, address_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.ContactNumber, &p.Email, &p.DOB, &p.AddressID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, contact_number, email, dob, address_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.ContactNumber, p.Email, p.DOB, p.AddressID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE lower(email) = lower($1)`, email))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, contact_number=$4, email=$5, dob=$6, address_id=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.ContactNumber, p.Email, p.DOB, p.AddressID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const patientSearchWhere = `($1 = '' OR first_name ILIKE '%'||$1||'%' OR last_name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%')`

func (r *patientRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE `+patientSearchWhere, q).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient WHERE `+patientSearchWhere+`
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.ContactNumber, &p.Email, &p.DOB, &p.AddressID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, nil
}

// -- Dentist Repository --

type dentistRepoPG struct {
	pool *pgxpool.Pool
}

func NewDentistRepo(pool *pgxpool.Pool) DentistRepository {
	return &dentistRepoPG{pool: pool}
}

func (r *dentistRepoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const dentistCols = `id, first_name, last_name, contact_number, email, specialization, created_at, updated_at`

func scanDentist(row pgx.Row) (*Dentist, error) {
	var d Dentist
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.ContactNumber, &d.Email, &d.Specialization, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dentistRepoPG) Create(ctx context.Context, d *Dentist) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dentist (id, first_name, last_name, contact_number, email, specialization)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		d.ID, d.FirstName, d.LastName, d.ContactNumber, d.Email, d.Specialization,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *dentistRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Dentist, error) {
	return scanDentist(r.conn(ctx).QueryRow(ctx, `SELECT `+dentistCols+` FROM dentist WHERE id = $1`, id))
}

func (r *dentistRepoPG) GetByEmail(ctx context.Context, email string) (*Dentist, error) {
	return scanDentist(r.conn(ctx).QueryRow(ctx, `SELECT `+dentistCols+` FROM dentist WHERE lower(email) = lower($1)`, email))
}

func (r *dentistRepoPG) Update(ctx context.Context, d *Dentist) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE dentist SET
			first_name=$2, last_name=$3, contact_number=$4, email=$5, specialization=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.ContactNumber, d.Email, d.Specialization,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *dentistRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM dentist WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const dentistSearchWhere = `($1 = '' OR first_name ILIKE '%'||$1||'%' OR last_name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%')`

func (r *dentistRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Dentist, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dentist WHERE `+dentistSearchWhere, q).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+dentistCols+` FROM dentist WHERE `+dentistSearchWhere+`
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var dentists []*Dentist
	for rows.Next() {
		var d Dentist
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.ContactNumber, &d.Email, &d.Specialization, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		dentists = append(dentists, &d)
	}
	return dentists, total, nil
}

// -- SurgeryLocation Repository --

type locationRepoPG struct {
	pool *pgxpool.Pool
}

func NewSurgeryLocationRepo(pool *pgxpool.Pool) SurgeryLocationRepository {
	return &locationRepoPG{pool: pool}
}

func (r *locationRepoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const locationCols = `id, name, contact_number, address_id, created_at, updated_at`

func scanLocation(row pgx.Row) (*SurgeryLocation, error) {
	var l SurgeryLocation
	err := row.Scan(&l.ID, &l.Name, &l.ContactNumber, &l.AddressID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepoPG) Create(ctx context.Context, l *SurgeryLocation) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO surgery_location (id, name, contact_number, address_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		l.ID, l.Name, l.ContactNumber, l.AddressID,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *locationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SurgeryLocation, error) {
	return scanLocation(r.conn(ctx).QueryRow(ctx, `SELECT `+locationCols+` FROM surgery_location WHERE id = $1`, id))
}

func (r *locationRepoPG) GetByNameAndAddress(ctx context.Context, name string, addressID *uuid.UUID) (*SurgeryLocation, error) {
	if addressID == nil {
		return scanLocation(r.conn(ctx).QueryRow(ctx, `
			SELECT `+locationCols+` FROM surgery_location
			WHERE name = $1 AND address_id IS NULL
			ORDER BY created_at LIMIT 1`, name))
	}
	return scanLocation(r.conn(ctx).QueryRow(ctx, `
		SELECT `+locationCols+` FROM surgery_location
		WHERE name = $1 AND address_id = $2
		ORDER BY created_at LIMIT 1`, name, *addressID))
}

func (r *locationRepoPG) Update(ctx context.Context, l *SurgeryLocation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgery_location SET name=$2, contact_number=$3, address_id=$4, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.ContactNumber, l.AddressID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *locationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM surgery_location WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *locationRepoPG) List(ctx context.Context, limit, offset int) ([]*SurgeryLocation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM surgery_location`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+locationCols+` FROM surgery_location ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var locs []*SurgeryLocation
	for rows.Next() {
		var l SurgeryLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.ContactNumber, &l.AddressID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		locs = append(locs, &l)
	}
	return locs, total, nil
}
