package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalcare/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, appointment_type, status, start_time, patient_id, dentist_id, location_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Type, &a.Status, &a.StartTime, &a.PatientID, &a.DentistID, &a.LocationID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, appointment_type, status, start_time, patient_id, dentist_id, location_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.Type, a.Status, a.StartTime, a.PatientID, a.DentistID, a.LocationID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			appointment_type=$2, status=$3, start_time=$4, dentist_id=$5, location_id=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Type, a.Status, a.StartTime, a.DentistID, a.LocationID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY start_time LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAppointments(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error) {
	return r.listFiltered(ctx, "patient_id", patientID, status, limit, offset)
}

func (r *repoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error) {
	return r.listFiltered(ctx, "dentist_id", dentistID, status, limit, offset)
}

func (r *repoPG) listFiltered(ctx context.Context, column string, id uuid.UUID, status Status, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE `+column+` = $1 AND ($2 = '' OR status = $2)`, id, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE `+column+` = $1 AND ($2 = '' OR status = $2)
		ORDER BY start_time LIMIT $3 OFFSET $4`, id, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAppointments(rows, total)
}

func (r *repoPG) StatsByPatient(ctx context.Context, patientID uuid.UUID, now time.Time) (int, int, error) {
	return r.stats(ctx, "patient_id", patientID, now)
}

func (r *repoPG) StatsByDentist(ctx context.Context, dentistID uuid.UUID, now time.Time) (int, int, error) {
	return r.stats(ctx, "dentist_id", dentistID, now)
}

func (r *repoPG) stats(ctx context.Context, column string, id uuid.UUID, now time.Time) (int, int, error) {
	var upcoming, completed int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE start_time > $2 AND status NOT IN ($3, $4)),
			COUNT(*) FILTER (WHERE status = $5)
		FROM appointment WHERE `+column+` = $1`,
		id, now, StatusCancelled, StatusNoShow, StatusCompleted,
	).Scan(&upcoming, &completed)
	return upcoming, completed, err
}

func (r *repoPG) CountByDentistInRange(ctx context.Context, dentistID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE dentist_id = $1 AND start_time >= $2 AND start_time <= $3`,
		dentistID, from, to,
	).Scan(&count)
	return count, err
}

func (r *repoPG) FindDuplicate(ctx context.Context, patientID, dentistID uuid.UUID, start time.Time, locationID uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND dentist_id = $2 AND start_time = $3 AND location_id = $4
		LIMIT 1`, patientID, dentistID, start, locationID))
}

func (r *repoPG) LockDentistWeek(ctx context.Context, dentistID uuid.UUID, weekStart time.Time) error {
	key := dentistID.String() + ":" + weekStart.UTC().Format("2006-01-02")
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}

func collectAppointments(rows pgx.Rows, total int) ([]*Appointment, int, error) {
	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Type, &a.Status, &a.StartTime, &a.PatientID, &a.DentistID, &a.LocationID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		appts = append(appts, &a)
	}
	return appts, total, nil
}
