package store

import (
	"context"
	"fmt"
)

// statements are ordered so foreign key targets exist before their referrers.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name               TEXT NOT NULL,
		age                INT NOT NULL,
		address            TEXT NOT NULL DEFAULT '',
		mobile             TEXT NOT NULL DEFAULT '',
		guardian_name      TEXT NOT NULL DEFAULT '',
		guardian_relation  TEXT NOT NULL DEFAULT '',
		guardian_mobile    TEXT NOT NULL DEFAULT '',
		disease            TEXT NOT NULL DEFAULT '',
		emergency          BOOLEAN NOT NULL DEFAULT FALSE,
		ambulance_required BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS hospitals (
		id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name           TEXT NOT NULL,
		location       TEXT NOT NULL,
		specialization TEXT NOT NULL,
		terms          TEXT NOT NULL,
		rating         DOUBLE PRECISION NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ambulance (
		id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		driver_name      TEXT NOT NULL,
		driver_age       INT NOT NULL,
		driver_gender    TEXT NOT NULL,
		driver_mobile    TEXT NOT NULL,
		ambulance_number TEXT NOT NULL,
		nurse_name       TEXT NOT NULL,
		nurse_age        INT NOT NULL,
		nurse_gender     TEXT NOT NULL,
		nurse_mobile     TEXT NOT NULL,
		booked           BOOLEAN NOT NULL DEFAULT FALSE,
		dispatched_at    TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id      BIGINT REFERENCES users(id),
		patient_id   BIGINT NOT NULL REFERENCES patients(id),
		hospital_id  BIGINT REFERENCES hospitals(id),
		doctor_id    BIGINT,
		ambulance_id BIGINT REFERENCES ambulance(id),
		total        BIGINT NOT NULL,
		booked_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		hospital_id BIGINT NOT NULL REFERENCES hospitals(id),
		user_id     BIGINT REFERENCES users(id),
		rating      INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		text        TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS admission_events (
		id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		event_type TEXT NOT NULL,
		booking_id BIGINT,
		payload    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates all tables if they do not exist yet. Safe to run on
// every startup.
func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
