package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Address,
		&p.Mobile,
		&p.GuardianName,
		&p.GuardianRelation,
		&p.GuardianMobile,
		&p.Disease,
		&p.Emergency,
		&p.AmbulanceRequired,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Location,
		&h.Specialization,
		&h.Terms,
		&h.Rating,
		&h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}

	return &h, nil
}

func scanAmbulance(row pgx.Row) (*Ambulance, error) {
	var a Ambulance
	var dispatchedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.DriverName,
		&a.DriverAge,
		&a.DriverGender,
		&a.DriverMobile,
		&a.AmbulanceNumber,
		&a.NurseName,
		&a.NurseAge,
		&a.NurseGender,
		&a.NurseMobile,
		&a.Booked,
		&dispatchedAt,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAmbulanceNotFound
		}
		return nil, err
	}

	a.DispatchedAt = dispatchedAt
	return &a, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.PatientID,
		&b.HospitalID,
		&b.DoctorID,
		&b.AmbulanceID,
		&b.Total,
		&b.BookedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Interface methods

func (r *PgRepository) CreateUser(ctx context.Context, username, email, credential string) (bool, error) {
	// The unique constraints make check-and-insert a single operation.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
	`, username, email, credential)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("create user: %w", err)
	}

	return true, nil
}

func (r *PgRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password, created_at
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *PgRepository) InsertPatient(ctx context.Context, p *Patient) (int64, error) {
	var id int64

	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, age, address, mobile, guardian_name, guardian_relation,
			guardian_mobile, disease, emergency, ambulance_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, p.Name, p.Age, p.Address, p.Mobile, p.GuardianName, p.GuardianRelation,
		p.GuardianMobile, p.Disease, p.Emergency, p.AmbulanceRequired).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", err)
	}

	return id, nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, address, mobile, guardian_name, guardian_relation,
			guardian_mobile, disease, emergency, ambulance_required, created_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) EnsureHospitalCatalog(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin catalog seed: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`).Scan(&count); err != nil {
		return fmt.Errorf("count hospitals: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, h := range hospitalCatalogSeed() {
		_, err := tx.Exec(ctx, `
			INSERT INTO hospitals (name, location, specialization, terms, rating)
			VALUES ($1, $2, $3, $4, $5)
		`, h.Name, h.Location, h.Specialization, h.Terms, h.Rating)
		if err != nil {
			return fmt.Errorf("seed hospital catalog: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog seed: %w", err)
	}

	return nil
}

func (r *PgRepository) ListHospitals(ctx context.Context) ([]Hospital, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, location, specialization, terms, rating, created_at
		FROM hospitals
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetHospitalByID(ctx context.Context, id int64) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, location, specialization, terms, rating, created_at
		FROM hospitals
		WHERE id = $1
	`, id)
	return scanHospital(row)
}

func (r *PgRepository) FirstHospital(ctx context.Context) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, location, specialization, terms, rating, created_at
		FROM hospitals
		ORDER BY id
		LIMIT 1
	`)
	return scanHospital(row)
}

func (r *PgRepository) EnsureDefaultAmbulance(ctx context.Context) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin ambulance seed: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM ambulance`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ambulance pool: %w", err)
	}

	if count == 0 {
		a := defaultAmbulanceSeed()
		_, err := tx.Exec(ctx, `
			INSERT INTO ambulance (driver_name, driver_age, driver_gender, driver_mobile,
				ambulance_number, nurse_name, nurse_age, nurse_gender, nurse_mobile, booked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		`, a.DriverName, a.DriverAge, a.DriverGender, a.DriverMobile,
			a.AmbulanceNumber, a.NurseName, a.NurseAge, a.NurseGender, a.NurseMobile)
		if err != nil {
			return 0, fmt.Errorf("seed default ambulance: %w", err)
		}
	}

	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM ambulance ORDER BY id LIMIT 1`).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAmbulanceNotFound
		}
		return 0, fmt.Errorf("select first ambulance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit ambulance seed: %w", err)
	}

	return id, nil
}

func (r *PgRepository) GetAmbulanceByID(ctx context.Context, id int64) (*Ambulance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, driver_name, driver_age, driver_gender, driver_mobile, ambulance_number,
			nurse_name, nurse_age, nurse_gender, nurse_mobile, booked, dispatched_at, created_at
		FROM ambulance
		WHERE id = $1
	`, id)
	return scanAmbulance(row)
}

// ClaimAmbulance flips the booked flag only when the unit is free, so two
// sessions can never hold the same dispatch.
func (r *PgRepository) ClaimAmbulance(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ambulance
		SET booked = TRUE,
		    dispatched_at = now()
		WHERE id = $1
		  AND booked = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("claim ambulance: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *PgRepository) ReleaseAmbulance(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE ambulance
		SET booked = FALSE,
		    dispatched_at = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("release ambulance: %w", err)
	}

	return nil
}

func (r *PgRepository) ReleaseStaleDispatches(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ambulance
		SET booked = FALSE,
		    dispatched_at = NULL
		WHERE booked = TRUE
		  AND dispatched_at IS NOT NULL
		  AND dispatched_at < $1
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("release stale dispatches: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) (int64, error) {
	var id int64

	err := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (user_id, patient_id, hospital_id, doctor_id, ambulance_id, total, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id
	`, b.UserID, b.PatientID, b.HospitalID, b.DoctorID, b.AmbulanceID, b.Total).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create booking: %w", err)
	}

	return id, nil
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id int64) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, patient_id, hospital_id, doctor_id, ambulance_id, total, booked_at
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) SaveReview(ctx context.Context, rev *Review) (int64, error) {
	var id int64

	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (hospital_id, user_id, rating, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rev.HospitalID, rev.UserID, rev.Rating, rev.Text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save review: %w", err)
	}

	return id, nil
}

func (r *PgRepository) ListReviewsByHospital(ctx context.Context, hospitalID int64) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, hospital_id, user_id, rating, text, created_at
		FROM reviews
		WHERE hospital_id = $1
		ORDER BY id
	`, hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.HospitalID, &rev.UserID, &rev.Rating, &rev.Text, &rev.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev AdmissionEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admission_events (event_type, booking_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.BookingID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert admission event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
