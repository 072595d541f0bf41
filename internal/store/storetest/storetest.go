// Package storetest provides an in-memory store.Repository for unit tests of
// the workflow, dispatch and auth layers.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/careops/hospital-admission/internal/store"
)

type Repo struct {
	mu sync.Mutex

	users      []store.User
	patients   map[int64]*store.Patient
	hospitals  []store.Hospital
	ambulances map[int64]*store.Ambulance
	ambOrder   []int64
	bookings   map[int64]*store.Booking
	reviews    []store.Review
	events     []store.AdmissionEvent
	nextID     int64

	// CatalogSeeds counts how many times the ten-entry seed actually ran,
	// so idempotency is assertable.
	CatalogSeeds int

	// FailCreateBooking, when set, makes CreateBooking fail with this error.
	FailCreateBooking error
}

func New() *Repo {
	return &Repo{
		patients:   make(map[int64]*store.Patient),
		ambulances: make(map[int64]*store.Ambulance),
		bookings:   make(map[int64]*store.Booking),
	}
}

func (r *Repo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *Repo) CreateUser(_ context.Context, username, email, credential string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return false, nil
		}
	}

	r.users = append(r.users, store.User{
		ID:        r.id(),
		Username:  username,
		Email:     email,
		Password:  credential,
		CreatedAt: time.Now(),
	})
	return true, nil
}

func (r *Repo) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// UserCount reports stored user rows.
func (r *Repo) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *Repo) InsertPatient(_ context.Context, p *store.Patient) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	cp.ID = r.id()
	cp.CreatedAt = time.Now()
	r.patients[cp.ID] = &cp
	return cp.ID, nil
}

func (r *Repo) GetPatientByID(_ context.Context, id int64) (*store.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, store.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Repo) EnsureHospitalCatalog(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.hospitals) > 0 {
		return nil
	}

	for i := 1; i <= 10; i++ {
		r.hospitals = append(r.hospitals, store.Hospital{
			ID:             r.id(),
			Name:           fmt.Sprintf("Specialized Hospital %d", i),
			Location:       fmt.Sprintf("City %d", i),
			Specialization: fmt.Sprintf("Specialty %d", (i%5)+1),
			Terms:          "Hospital terms apply.",
			Rating:         4.0 + float64(i%5)*0.1,
			CreatedAt:      time.Now(),
		})
	}
	r.CatalogSeeds++
	return nil
}

func (r *Repo) ListHospitals(_ context.Context) ([]store.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]store.Hospital, len(r.hospitals))
	copy(out, r.hospitals)
	return out, nil
}

func (r *Repo) GetHospitalByID(_ context.Context, id int64) (*store.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.hospitals {
		if r.hospitals[i].ID == id {
			h := r.hospitals[i]
			return &h, nil
		}
	}
	return nil, store.ErrHospitalNotFound
}

func (r *Repo) FirstHospital(_ context.Context) (*store.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.hospitals) == 0 {
		return nil, store.ErrHospitalNotFound
	}
	h := r.hospitals[0]
	return &h, nil
}

func (r *Repo) EnsureDefaultAmbulance(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ambOrder) == 0 {
		id := r.id()
		r.ambulances[id] = &store.Ambulance{
			ID:              id,
			DriverName:      "Ravi Kumar",
			DriverAge:       36,
			DriverGender:    "Male",
			DriverMobile:    "9845012345",
			AmbulanceNumber: "AMB-1001",
			NurseName:       "Priya",
			NurseAge:        29,
			NurseGender:     "Female",
			NurseMobile:     "9845099999",
			CreatedAt:       time.Now(),
		}
		r.ambOrder = append(r.ambOrder, id)
	}
	return r.ambOrder[0], nil
}

func (r *Repo) GetAmbulanceByID(_ context.Context, id int64) (*store.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.ambulances[id]
	if !ok {
		return nil, store.ErrAmbulanceNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *Repo) ClaimAmbulance(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.ambulances[id]
	if !ok {
		return false, store.ErrAmbulanceNotFound
	}
	if a.Booked {
		return false, nil
	}

	now := time.Now()
	a.Booked = true
	a.DispatchedAt = &now
	return true, nil
}

func (r *Repo) ReleaseAmbulance(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.ambulances[id]; ok {
		a.Booked = false
		a.DispatchedAt = nil
	}
	return nil
}

// BackdateDispatch rewrites a claim's dispatch time so stale-release paths
// can be exercised without sleeping.
func (r *Repo) BackdateDispatch(id int64, to time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.ambulances[id]; ok && a.DispatchedAt != nil {
		a.DispatchedAt = &to
	}
}

func (r *Repo) ReleaseStaleDispatches(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var released int64
	for _, a := range r.ambulances {
		if a.Booked && a.DispatchedAt != nil && a.DispatchedAt.Before(olderThan) {
			a.Booked = false
			a.DispatchedAt = nil
			released++
		}
	}
	return released, nil
}

func (r *Repo) CreateBooking(_ context.Context, b *store.Booking) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreateBooking != nil {
		return 0, r.FailCreateBooking
	}

	cp := *b
	cp.ID = r.id()
	cp.BookedAt = time.Now()
	r.bookings[cp.ID] = &cp
	return cp.ID, nil
}

func (r *Repo) GetBookingByID(_ context.Context, id int64) (*store.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, store.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *Repo) SaveReview(_ context.Context, rev *store.Review) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rev
	cp.ID = r.id()
	cp.CreatedAt = time.Now()
	r.reviews = append(r.reviews, cp)
	return cp.ID, nil
}

func (r *Repo) ListReviewsByHospital(_ context.Context, hospitalID int64) ([]store.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []store.Review
	for _, rev := range r.reviews {
		if rev.HospitalID == hospitalID {
			out = append(out, rev)
		}
	}
	return out, nil
}

// ReviewCount reports stored reviews across all hospitals.
func (r *Repo) ReviewCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}

func (r *Repo) InsertEvent(_ context.Context, ev store.AdmissionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = r.id()
	r.events = append(r.events, ev)
	return nil
}

// EventTypes returns the recorded event types in insertion order.
func (r *Repo) EventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventType)
	}
	return out
}
