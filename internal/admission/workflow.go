package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/careops/hospital-admission/internal/dispatch"
	"github.com/careops/hospital-admission/internal/store"
)

const (
	EventPatientRegistered   = "PATIENT_REGISTERED"
	EventAmbulanceDispatched = "AMBULANCE_DISPATCHED"
	EventDispatchDeclined    = "DISPATCH_DECLINED"
	EventBookingCreated      = "BOOKING_CREATED"
	EventReviewSubmitted     = "REVIEW_SUBMITTED"
	EventWorkflowReset       = "WORKFLOW_RESET"
)

// Dispatcher is the slice of the resource allocator the workflow needs.
type Dispatcher interface {
	TryDispatch(ctx context.Context) (*store.Ambulance, error)
	Release(ctx context.Context, id int64) error
}

// Service drives a patient through the admission pipeline. Each operation
// validates the session's current stage; a failing call leaves the session
// exactly where it was so the operator can retry.
type Service struct {
	repo       store.Repository
	dispatcher Dispatcher
	sessions   *SessionManager
}

func NewService(repo store.Repository, dispatcher Dispatcher, sessions *SessionManager) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		sessions:   sessions,
	}
}

// StartSession opens a fresh workflow run for a logged-in operator.
func (s *Service) StartSession(sessionID string, userID int64) *Session {
	return s.sessions.Start(sessionID, userID)
}

func (s *Service) session(sessionID string) (*Session, error) {
	return s.sessions.Get(sessionID)
}

func requireStage(sess *Session, want Stage) error {
	if sess.Stage != want {
		return validationf("operation not allowed at stage %q", sess.Stage)
	}
	return nil
}

// Intake validates and commits the patient record. When the patient is an
// emergency case that wants an ambulance, the session stops at the dispatch
// decision; otherwise it moves straight on to hospital selection.
func (s *Service) Intake(ctx context.Context, sessionID string, in IntakeInput) (*IntakeResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageIntake); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("patient name is required")
	}

	age, err := parseAge(in.Age)
	if err != nil {
		return nil, err
	}

	patient := &store.Patient{
		Name:              name,
		Age:               age,
		Address:           strings.TrimSpace(in.Address),
		Mobile:            strings.TrimSpace(in.Mobile),
		GuardianName:      strings.TrimSpace(in.GuardianName),
		GuardianRelation:  strings.TrimSpace(in.GuardianRelation),
		GuardianMobile:    strings.TrimSpace(in.GuardianMobile),
		Disease:           strings.TrimSpace(in.Disease),
		Emergency:         in.Emergency,
		AmbulanceRequired: in.AmbulanceRequired,
	}

	pid, err := s.repo.InsertPatient(ctx, patient)
	if err != nil {
		return nil, fmt.Errorf("commit patient: %w", err)
	}

	sess.PatientID = &pid
	s.logEvent(ctx, EventPatientRegistered, nil, map[string]any{
		"patient_id":         pid,
		"emergency":          in.Emergency,
		"ambulance_required": in.AmbulanceRequired,
	})

	res := &IntakeResult{PatientID: pid}

	if in.Emergency && in.AmbulanceRequired {
		sess.Stage = StageEmergencyCheck
		sess.EmergencyDecisionPending = true
		res.DecisionRequired = true
		res.Notice = "Emergency detected. Ambulance dispatch decision required."
		res.Stage = sess.Stage
		return res, nil
	}

	if in.Emergency {
		res.Notice = "Emergency recorded."
	}

	// advance only once the catalog gate succeeds; on failure the session
	// stays at Intake so the operator re-submits the form
	if err := s.enterHospitalSelection(ctx, sess); err != nil {
		return nil, err
	}

	res.Stage = sess.Stage
	return res, nil
}

func parseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, validationf("age must be a non-negative integer")
	}
	return n, nil
}

// enterHospitalSelection runs the catalog seed gate and advances. On failure
// the session keeps its current stage so a retry repeats the seed.
func (s *Service) enterHospitalSelection(ctx context.Context, sess *Session) error {
	if err := s.repo.EnsureHospitalCatalog(ctx); err != nil {
		return fmt.Errorf("ensure hospital catalog: %w", err)
	}
	sess.Stage = StageHospitalSelection
	sess.EmergencyDecisionPending = false
	return nil
}

// ResolveEmergency records the ambulance decision. Unavailable is a normal
// outcome here, never an error. On any outcome the catalog is seeded before
// the session advances.
func (s *Service) ResolveEmergency(ctx context.Context, sessionID string, wantsDispatch bool) (*DispatchOutcome, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageEmergencyCheck); err != nil {
		return nil, err
	}

	outcome := &DispatchOutcome{Status: DispatchDeclined}

	switch {
	case sess.EmergencyDecisionPending && wantsDispatch && sess.DispatchID != nil:
		// a prior attempt already claimed the unit; don't claim twice
		outcome.Status = DispatchDispatched
		outcome.AmbulanceID = sess.DispatchID

	case sess.EmergencyDecisionPending && wantsDispatch:
		amb, dispatchErr := s.dispatcher.TryDispatch(ctx)
		if dispatchErr != nil {
			if errors.Is(dispatchErr, dispatch.ErrUnavailable) {
				outcome.Status = DispatchUnavailable
				break
			}
			return nil, dispatchErr
		}
		sess.DispatchID = &amb.ID
		outcome.Status = DispatchDispatched
		outcome.AmbulanceID = &amb.ID
		outcome.Ambulance = amb
		s.logEvent(ctx, EventAmbulanceDispatched, nil, map[string]any{
			"ambulance_id": amb.ID,
			"patient_id":   sess.PatientID,
		})

	case sess.EmergencyDecisionPending:
		// a prior accepted attempt may have claimed the unit before failing
		// to advance; declining gives it back
		if sess.DispatchID != nil {
			if err := s.dispatcher.Release(ctx, *sess.DispatchID); err != nil {
				return nil, fmt.Errorf("release dispatch: %w", err)
			}
			sess.DispatchID = nil
		}
		s.logEvent(ctx, EventDispatchDeclined, nil, map[string]any{
			"patient_id": sess.PatientID,
		})
	}

	if err := s.enterHospitalSelection(ctx, sess); err != nil {
		return nil, err
	}

	return outcome, nil
}

// SelectHospital records the operator's choice, or an explicit skip when
// hospitalID is nil. Nothing is persisted until booking commit.
func (s *Service) SelectHospital(ctx context.Context, sessionID string, hospitalID *int64) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageHospitalSelection); err != nil {
		return err
	}

	if hospitalID != nil {
		if _, err := s.repo.GetHospitalByID(ctx, *hospitalID); err != nil {
			if errors.Is(err, store.ErrHospitalNotFound) {
				return validationf("hospital %d not found", *hospitalID)
			}
			return fmt.Errorf("load hospital: %w", err)
		}
	}

	sess.SelectedHospitalID = hospitalID
	sess.Stage = StageDoctorConfirmation
	return nil
}

// ConfirmDoctor is an informational acknowledgement; doctor assignment is
// never persisted.
func (s *Service) ConfirmDoctor(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageDoctorConfirmation); err != nil {
		return err
	}

	sess.Stage = StageWardFoodSelection
	return nil
}

func (s *Service) SelectWardFood(sessionID, room, food string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageWardFoodSelection); err != nil {
		return err
	}

	tier, err := ParseRoomTier(room)
	if err != nil {
		return err
	}
	plan, err := ParseFoodPlan(food)
	if err != nil {
		return err
	}

	sess.Room = tier
	sess.Food = plan
	sess.Stage = StageBilling
	return nil
}

// ConfirmBilling computes and quotes the total from the operator's entries.
// The quote is carried on the session; nothing is persisted yet.
func (s *Service) ConfirmBilling(sessionID, doctorFee string, ambulanceUsed bool, misc string) (int64, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageBilling); err != nil {
		return 0, err
	}

	fee := ParseAmount(doctorFee, DefaultDoctorFee)
	m := ParseAmount(misc, DefaultMisc)
	total := ComputeTotal(fee, sess.Room.Charge(), sess.Food.Charge(), ambulanceUsed, m)

	sess.Bill = &billState{
		DoctorFee:     fee,
		AmbulanceUsed: ambulanceUsed,
		Misc:          m,
		Total:         total,
	}

	return total, nil
}

// BackToWardFood is the single permitted backward transition.
func (s *Service) BackToWardFood(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageBilling); err != nil {
		return err
	}

	sess.Bill = nil
	sess.Stage = StageWardFoodSelection
	return nil
}

// CommitBooking re-runs the billing calculation and persists the booking.
// When no hospital was selected the first catalog entry stands in. A
// persistence failure keeps the session in Billing for a retry.
func (s *Service) CommitBooking(ctx context.Context, sessionID string) (int64, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageBilling); err != nil {
		return 0, err
	}
	if sess.Bill == nil {
		return 0, validationf("no billing quote to confirm")
	}
	if sess.BookingID != nil {
		return 0, validationf("patient already has a booking")
	}

	total := ComputeTotal(sess.Bill.DoctorFee, sess.Room.Charge(), sess.Food.Charge(),
		sess.Bill.AmbulanceUsed, sess.Bill.Misc)

	hospitalID := sess.SelectedHospitalID
	if hospitalID == nil {
		first, err := s.repo.FirstHospital(ctx)
		if err != nil {
			if !errors.Is(err, store.ErrHospitalNotFound) {
				return 0, fmt.Errorf("load fallback hospital: %w", err)
			}
			// empty catalog: the booking simply carries no hospital
		} else {
			hospitalID = &first.ID
		}
	}

	userID := sess.UserID
	booking := &store.Booking{
		UserID:      &userID,
		PatientID:   *sess.PatientID,
		HospitalID:  hospitalID,
		AmbulanceID: sess.DispatchID,
		Total:       total,
	}

	id, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return 0, fmt.Errorf("commit booking: %w", err)
	}

	sess.BookingID = &id
	sess.Bill.Total = total
	sess.Stage = StageSummary
	s.logEvent(ctx, EventBookingCreated, &id, map[string]any{
		"booking_id": id,
		"patient_id": *sess.PatientID,
		"total":      total,
	})

	return id, nil
}

func (s *Service) Summary(sessionID string) (*SummaryView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageSummary); err != nil {
		return nil, err
	}

	return &SummaryView{
		PatientID:   *sess.PatientID,
		BookingID:   *sess.BookingID,
		Total:       sess.Bill.Total,
		HospitalID:  sess.SelectedHospitalID,
		AmbulanceID: sess.DispatchID,
	}, nil
}

// SubmitReview appends one rating+text review. With no explicit hospital the
// catalog's first entry receives it. One review per run.
func (s *Service) SubmitReview(ctx context.Context, sessionID string, hospitalID *int64, rating int, text string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireStage(sess, StageSummary); err != nil {
		return err
	}
	if sess.ReviewSubmitted {
		return validationf("review already submitted for this run")
	}
	if rating < 1 || rating > 5 {
		return validationf("rating must be between 1 and 5")
	}

	var hid int64
	if hospitalID != nil {
		if _, err := s.repo.GetHospitalByID(ctx, *hospitalID); err != nil {
			if errors.Is(err, store.ErrHospitalNotFound) {
				return validationf("hospital %d not found", *hospitalID)
			}
			return fmt.Errorf("load hospital: %w", err)
		}
		hid = *hospitalID
	} else {
		first, err := s.repo.FirstHospital(ctx)
		if err != nil {
			if errors.Is(err, store.ErrHospitalNotFound) {
				return validationf("no hospital available to review")
			}
			return fmt.Errorf("load fallback hospital: %w", err)
		}
		hid = first.ID
	}

	userID := sess.UserID
	if _, err := s.repo.SaveReview(ctx, &store.Review{
		HospitalID: hid,
		UserID:     &userID,
		Rating:     rating,
		Text:       text,
	}); err != nil {
		return fmt.Errorf("save review: %w", err)
	}

	sess.ReviewSubmitted = true
	s.logEvent(ctx, EventReviewSubmitted, sess.BookingID, map[string]any{
		"hospital_id": hid,
		"rating":      rating,
	})

	return nil
}

// Reset releases any held dispatch and destroys the session, leaving the
// operator ready for a new run. Finish on the summary screen is the same
// operation.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.DispatchID != nil {
		if err := s.dispatcher.Release(ctx, *sess.DispatchID); err != nil {
			// the reaper will pick it up
			log.Printf("release dispatch %d on reset: %v", *sess.DispatchID, err)
		}
	}

	s.logEvent(ctx, EventWorkflowReset, sess.BookingID, map[string]any{
		"stage": sess.Stage,
	})

	s.sessions.Remove(sessionID)
	return nil
}

// Hospitals returns the catalog snapshot for the selection screen.
func (s *Service) Hospitals(ctx context.Context) ([]store.Hospital, error) {
	if err := s.repo.EnsureHospitalCatalog(ctx); err != nil {
		return nil, fmt.Errorf("ensure hospital catalog: %w", err)
	}
	return s.repo.ListHospitals(ctx)
}

// HospitalReviews returns all reviews recorded for one hospital.
func (s *Service) HospitalReviews(ctx context.Context, hospitalID int64) ([]store.Review, error) {
	if _, err := s.repo.GetHospitalByID(ctx, hospitalID); err != nil {
		return nil, err
	}
	return s.repo.ListReviewsByHospital(ctx, hospitalID)
}

func (s *Service) logEvent(ctx context.Context, eventType string, bookingID *int64, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	ev := store.AdmissionEvent{
		EventType: eventType,
		BookingID: bookingID,
		Payload:   data,
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert admission event %s: %v", eventType, err)
	}
}
