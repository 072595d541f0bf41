package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrHospitalNotFound  = errors.New("hospital not found")
	ErrAmbulanceNotFound = errors.New("ambulance not found")
	ErrBookingNotFound   = errors.New("booking not found")
)

// Repository contains all DB interactions needed by the admission workflow.
type Repository interface {
	// CreateUser inserts a new operator account. It returns false without
	// mutation when the username or email is already taken.
	CreateUser(ctx context.Context, username, email, credential string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	InsertPatient(ctx context.Context, p *Patient) (int64, error)
	GetPatientByID(ctx context.Context, id int64) (*Patient, error)

	// Catalog. EnsureHospitalCatalog seeds the ten-hospital catalog only when
	// the table is empty; listing order is insertion order.
	EnsureHospitalCatalog(ctx context.Context) error
	ListHospitals(ctx context.Context) ([]Hospital, error)
	GetHospitalByID(ctx context.Context, id int64) (*Hospital, error)
	FirstHospital(ctx context.Context) (*Hospital, error)

	// Ambulance pool. EnsureDefaultAmbulance seeds a single unit when the
	// pool is empty and always returns the first unit by insertion order.
	// ClaimAmbulance is a compare-and-set on the booked flag.
	EnsureDefaultAmbulance(ctx context.Context) (int64, error)
	GetAmbulanceByID(ctx context.Context, id int64) (*Ambulance, error)
	ClaimAmbulance(ctx context.Context, id int64) (bool, error)
	ReleaseAmbulance(ctx context.Context, id int64) error
	ReleaseStaleDispatches(ctx context.Context, olderThan time.Time) (int64, error)

	CreateBooking(ctx context.Context, b *Booking) (int64, error)
	GetBookingByID(ctx context.Context, id int64) (*Booking, error)

	SaveReview(ctx context.Context, r *Review) (int64, error)
	ListReviewsByHospital(ctx context.Context, hospitalID int64) ([]Review, error)

	InsertEvent(ctx context.Context, ev AdmissionEvent) error
}
