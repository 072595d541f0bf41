package store

import (
	"time"
)

// User identifies the operator driving an admission run, not the patient.
type User struct {
	ID        int64
	Username  string
	Email     string
	Password  string // opaque credential, bcrypt hash for new rows
	CreatedAt time.Time
}

type Patient struct {
	ID                int64
	Name              string
	Age               int
	Address           string
	Mobile            string
	GuardianName      string
	GuardianRelation  string
	GuardianMobile    string
	Disease           string
	Emergency         bool
	AmbulanceRequired bool
	CreatedAt         time.Time
}

type Hospital struct {
	ID             int64
	Name           string
	Location       string
	Specialization string
	Terms          string
	Rating         float64
	CreatedAt      time.Time
}

type Ambulance struct {
	ID              int64
	DriverName      string
	DriverAge       int
	DriverGender    string
	DriverMobile    string
	AmbulanceNumber string
	NurseName       string
	NurseAge        int
	NurseGender     string
	NurseMobile     string
	Booked          bool
	DispatchedAt    *time.Time
	CreatedAt       time.Time
}

type Booking struct {
	ID          int64
	UserID      *int64
	PatientID   int64
	HospitalID  *int64
	DoctorID    *int64 // always nil, doctor assignment is not persisted
	AmbulanceID *int64
	Total       int64
	BookedAt    time.Time
}

type Review struct {
	ID         int64
	HospitalID int64
	UserID     *int64
	Rating     int
	Text       string
	CreatedAt  time.Time
}

// AdmissionEvent is an append-only audit record of workflow transitions.
type AdmissionEvent struct {
	ID        int64
	EventType string
	BookingID *int64
	Payload   []byte
	CreatedAt time.Time
}
