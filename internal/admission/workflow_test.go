package admission

import (
	"context"
	"errors"
	"testing"

	"github.com/careops/hospital-admission/internal/dispatch"
	"github.com/careops/hospital-admission/internal/store/storetest"
)

// passLocker runs the critical section directly, standing in for the Redis
// pool lock.
type passLocker struct{}

func (passLocker) WithPoolLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	testSession = "sess-1"
	testUser    = int64(7)
)

func newTestWorkflow() (*Service, *storetest.Repo) {
	repo := storetest.New()
	allocator := dispatch.NewAllocator(repo, passLocker{})
	svc := NewService(repo, allocator, NewSessionManager())
	svc.StartSession(testSession, testUser)
	return svc, repo
}

func validIntake() IntakeInput {
	return IntakeInput{
		Name:             "Asha",
		Age:              "30",
		Address:          "14 Lake Road",
		Mobile:           "9900112233",
		GuardianName:     "Ravi",
		GuardianRelation: "Father",
		GuardianMobile:   "9900445566",
		Disease:          "Fever",
	}
}

func TestIntakeRoundTrip(t *testing.T) {
	svc, repo := newTestWorkflow()

	in := validIntake()
	res, err := svc.Intake(context.Background(), testSession, in)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	p, err := repo.GetPatientByID(context.Background(), res.PatientID)
	if err != nil {
		t.Fatalf("lookup patient: %v", err)
	}

	if p.Name != "Asha" || p.Age != 30 || p.Address != "14 Lake Road" ||
		p.Mobile != "9900112233" || p.GuardianName != "Ravi" ||
		p.GuardianRelation != "Father" || p.GuardianMobile != "9900445566" ||
		p.Disease != "Fever" || p.Emergency || p.AmbulanceRequired {
		t.Fatalf("stored patient does not match input: %+v", p)
	}

	if res.Stage != StageHospitalSelection {
		t.Fatalf("stage after non-emergency intake = %q, want %q", res.Stage, StageHospitalSelection)
	}
	if res.DecisionRequired {
		t.Fatal("no dispatch decision expected for non-emergency intake")
	}
}

func TestIntakeValidation(t *testing.T) {
	svc, _ := newTestWorkflow()
	ctx := context.Background()

	cases := []struct {
		name string
		in   IntakeInput
	}{
		{"empty name", IntakeInput{Name: "  ", Age: "30"}},
		{"non-numeric age", IntakeInput{Name: "Asha", Age: "abc"}},
		{"negative age", IntakeInput{Name: "Asha", Age: "-1"}},
	}

	for _, tc := range cases {
		if _, err := svc.Intake(ctx, testSession, tc.in); !IsValidation(err) {
			t.Errorf("%s: got %v, want validation error", tc.name, err)
		}
	}

	// rejected input must not advance the stage
	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake after rejected attempts: %v", err)
	}
}

func TestIntakeEmptyAgeDefaultsToZero(t *testing.T) {
	svc, repo := newTestWorkflow()

	in := validIntake()
	in.Age = ""
	res, err := svc.Intake(context.Background(), testSession, in)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	p, _ := repo.GetPatientByID(context.Background(), res.PatientID)
	if p.Age != 0 {
		t.Fatalf("age = %d, want 0", p.Age)
	}
}

func emergencyIntake() IntakeInput {
	in := validIntake()
	in.Emergency = true
	in.AmbulanceRequired = true
	return in
}

func TestEmergencyDispatchAccepted(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	res, err := svc.Intake(ctx, testSession, emergencyIntake())
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if !res.DecisionRequired || res.Stage != StageEmergencyCheck {
		t.Fatalf("expected pending dispatch decision, got %+v", res)
	}

	outcome, err := svc.ResolveEmergency(ctx, testSession, true)
	if err != nil {
		t.Fatalf("resolve emergency: %v", err)
	}
	if outcome.Status != DispatchDispatched {
		t.Fatalf("status = %q, want dispatched", outcome.Status)
	}
	if outcome.AmbulanceID == nil || outcome.Ambulance == nil {
		t.Fatal("dispatched outcome must carry the ambulance")
	}
	if outcome.Ambulance.DriverName != "Ravi Kumar" {
		t.Fatalf("unexpected seeded unit: %+v", outcome.Ambulance)
	}

	amb, _ := repo.GetAmbulanceByID(ctx, *outcome.AmbulanceID)
	if !amb.Booked {
		t.Fatal("claimed unit must have booked=true")
	}

	// carried reference must land on the booking
	bookingID := driveToBooking(t, svc, true)
	b, _ := repo.GetBookingByID(ctx, bookingID)
	if b.AmbulanceID == nil || *b.AmbulanceID != *outcome.AmbulanceID {
		t.Fatalf("booking ambulance = %v, want %d", b.AmbulanceID, *outcome.AmbulanceID)
	}
}

func TestEmergencyDispatchDeclined(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, emergencyIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}

	outcome, err := svc.ResolveEmergency(ctx, testSession, false)
	if err != nil {
		t.Fatalf("resolve emergency: %v", err)
	}
	if outcome.Status != DispatchDeclined {
		t.Fatalf("status = %q, want declined", outcome.Status)
	}
	if outcome.AmbulanceID != nil {
		t.Fatal("declined outcome must not carry an ambulance")
	}

	bookingID := driveToBooking(t, svc, false)
	b, _ := repo.GetBookingByID(ctx, bookingID)
	if b.AmbulanceID != nil {
		t.Fatalf("booking ambulance = %v, want absent", *b.AmbulanceID)
	}
}

func TestEmergencyDispatchUnavailable(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	// another session already holds the unit
	id, err := repo.EnsureDefaultAmbulance(ctx)
	if err != nil {
		t.Fatalf("ensure ambulance: %v", err)
	}
	if ok, _ := repo.ClaimAmbulance(ctx, id); !ok {
		t.Fatal("pre-claim failed")
	}

	if _, err := svc.Intake(ctx, testSession, emergencyIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}

	outcome, err := svc.ResolveEmergency(ctx, testSession, true)
	if err != nil {
		t.Fatalf("resolve emergency: %v", err)
	}
	if outcome.Status != DispatchUnavailable {
		t.Fatalf("status = %q, want unavailable", outcome.Status)
	}
}

func TestCatalogSeedIdempotent(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		hospitals, err := svc.Hospitals(ctx)
		if err != nil {
			t.Fatalf("hospitals: %v", err)
		}
		if len(hospitals) != 10 {
			t.Fatalf("catalog size = %d, want 10", len(hospitals))
		}
	}

	if repo.CatalogSeeds != 1 {
		t.Fatalf("catalog seeded %d times, want 1", repo.CatalogSeeds)
	}
}

// driveToBooking walks an already-intaken session from hospital selection to
// a committed booking with no hospital selected and default billing entries.
func driveToBooking(t *testing.T, svc *Service, ambulanceUsed bool) int64 {
	t.Helper()
	ctx := context.Background()

	if err := svc.SelectHospital(ctx, testSession, nil); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}
	if _, err := svc.ConfirmBilling(testSession, "1500", ambulanceUsed, "0"); err != nil {
		t.Fatalf("confirm billing: %v", err)
	}

	id, err := svc.CommitBooking(ctx, testSession)
	if err != nil {
		t.Fatalf("commit booking: %v", err)
	}
	return id
}

func TestEndToEndNonEmergency(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	res, err := svc.Intake(ctx, testSession, validIntake())
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	if err := svc.SelectHospital(ctx, testSession, nil); err != nil {
		t.Fatalf("skip hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}

	total, err := svc.ConfirmBilling(testSession, "1500", false, "0")
	if err != nil {
		t.Fatalf("confirm billing: %v", err)
	}
	if total != 7000 {
		t.Fatalf("total = %d, want 7000", total)
	}

	bookingID, err := svc.CommitBooking(ctx, testSession)
	if err != nil {
		t.Fatalf("commit booking: %v", err)
	}

	b, err := repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		t.Fatalf("lookup booking: %v", err)
	}
	if b.PatientID != res.PatientID {
		t.Fatalf("booking patient = %d, want %d", b.PatientID, res.PatientID)
	}
	if b.AmbulanceID != nil {
		t.Fatal("booking must not carry an ambulance")
	}
	if b.DoctorID != nil {
		t.Fatal("doctor id must always be absent")
	}
	if b.Total != 7000 {
		t.Fatalf("booking total = %d, want 7000", b.Total)
	}
	if b.UserID == nil || *b.UserID != testUser {
		t.Fatalf("booking user = %v, want %d", b.UserID, testUser)
	}

	// skipped selection falls back to the first catalog hospital
	first, _ := repo.FirstHospital(ctx)
	if b.HospitalID == nil || *b.HospitalID != first.ID {
		t.Fatalf("booking hospital = %v, want first catalog entry %d", b.HospitalID, first.ID)
	}

	view, err := svc.Summary(testSession)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if view.BookingID != bookingID || view.PatientID != res.PatientID || view.Total != 7000 {
		t.Fatalf("summary mismatch: %+v", view)
	}
}

func TestExplicitHospitalSelection(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}

	hospitals, _ := repo.ListHospitals(ctx)
	chosen := hospitals[3].ID
	if err := svc.SelectHospital(ctx, testSession, &chosen); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "4_sharing", "standard"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}
	if _, err := svc.ConfirmBilling(testSession, "", false, ""); err != nil {
		t.Fatalf("confirm billing: %v", err)
	}

	bookingID, err := svc.CommitBooking(ctx, testSession)
	if err != nil {
		t.Fatalf("commit booking: %v", err)
	}

	b, _ := repo.GetBookingByID(ctx, bookingID)
	if b.HospitalID == nil || *b.HospitalID != chosen {
		t.Fatalf("booking hospital = %v, want %d", b.HospitalID, chosen)
	}
	// defaults: doctor fee 1500 + 4-sharing 1500 + standard 300
	if b.Total != 3300 {
		t.Fatalf("booking total = %d, want 3300", b.Total)
	}
}

func TestSelectUnknownHospital(t *testing.T) {
	svc, _ := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}

	bogus := int64(9999)
	if err := svc.SelectHospital(ctx, testSession, &bogus); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestBillingBackTransition(t *testing.T) {
	svc, _ := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := svc.SelectHospital(ctx, testSession, nil); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}

	if err := svc.BackToWardFood(testSession); err != nil {
		t.Fatalf("back to ward/food: %v", err)
	}

	// the corrected selection feeds a fresh quote
	if err := svc.SelectWardFood(testSession, "non_ac_single", "vegetarian"); err != nil {
		t.Fatalf("re-select ward/food: %v", err)
	}
	total, err := svc.ConfirmBilling(testSession, "1500", false, "0")
	if err != nil {
		t.Fatalf("confirm billing: %v", err)
	}
	if total != 4750 {
		t.Fatalf("total = %d, want 4750", total)
	}
}

func TestStageGuards(t *testing.T) {
	svc, _ := newTestWorkflow()
	ctx := context.Background()

	// all of these are out of order at Intake
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); !IsValidation(err) {
		t.Errorf("ward/food at intake: got %v, want validation error", err)
	}
	if _, err := svc.ConfirmBilling(testSession, "1500", false, "0"); !IsValidation(err) {
		t.Errorf("billing at intake: got %v, want validation error", err)
	}
	if _, err := svc.CommitBooking(ctx, testSession); !IsValidation(err) {
		t.Errorf("commit at intake: got %v, want validation error", err)
	}
	if _, err := svc.ResolveEmergency(ctx, testSession, true); !IsValidation(err) {
		t.Errorf("emergency at intake: got %v, want validation error", err)
	}
	if err := svc.SubmitReview(ctx, testSession, nil, 5, "great"); !IsValidation(err) {
		t.Errorf("review at intake: got %v, want validation error", err)
	}
}

func TestCommitWithoutQuote(t *testing.T) {
	svc, _ := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := svc.SelectHospital(ctx, testSession, nil); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}

	if _, err := svc.CommitBooking(ctx, testSession); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestCommitFailureKeepsBillingStage(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := svc.SelectHospital(ctx, testSession, nil); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor(testSession); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood(testSession, "ac_single", "protein"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}
	if _, err := svc.ConfirmBilling(testSession, "1500", false, "0"); err != nil {
		t.Fatalf("confirm billing: %v", err)
	}

	repo.FailCreateBooking = errors.New("relation bookings does not exist")
	if _, err := svc.CommitBooking(ctx, testSession); err == nil || IsValidation(err) {
		t.Fatalf("got %v, want persistence error", err)
	}

	// same stage, so the retry succeeds once the store recovers
	repo.FailCreateBooking = nil
	if _, err := svc.CommitBooking(ctx, testSession); err != nil {
		t.Fatalf("retry after store recovery: %v", err)
	}
}

func TestReviewRatingBounds(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	driveToBooking(t, svc, false)

	for _, rating := range []int{0, 6, -2} {
		if err := svc.SubmitReview(ctx, testSession, nil, rating, "x"); !IsValidation(err) {
			t.Errorf("rating %d: got %v, want validation error", rating, err)
		}
	}
	if repo.ReviewCount() != 0 {
		t.Fatalf("rejected ratings must not persist, found %d reviews", repo.ReviewCount())
	}

	if err := svc.SubmitReview(ctx, testSession, nil, 1, ""); err != nil {
		t.Fatalf("rating 1: %v", err)
	}

	// one review per run
	if err := svc.SubmitReview(ctx, testSession, nil, 5, "again"); !IsValidation(err) {
		t.Fatalf("second review: got %v, want validation error", err)
	}

	// a fresh run accepts the top of the range, defaulting to the first
	// catalog hospital
	svc.StartSession("sess-2", testUser)
	if _, err := svc.Intake(ctx, "sess-2", validIntake()); err != nil {
		t.Fatalf("second intake: %v", err)
	}
	if err := svc.SelectHospital(ctx, "sess-2", nil); err != nil {
		t.Fatalf("select hospital: %v", err)
	}
	if err := svc.ConfirmDoctor("sess-2"); err != nil {
		t.Fatalf("confirm doctor: %v", err)
	}
	if err := svc.SelectWardFood("sess-2", "2_sharing", "special"); err != nil {
		t.Fatalf("select ward/food: %v", err)
	}
	if _, err := svc.ConfirmBilling("sess-2", "1500", false, "0"); err != nil {
		t.Fatalf("confirm billing: %v", err)
	}
	if _, err := svc.CommitBooking(ctx, "sess-2"); err != nil {
		t.Fatalf("commit booking: %v", err)
	}
	if err := svc.SubmitReview(ctx, "sess-2", nil, 5, "smooth admission"); err != nil {
		t.Fatalf("rating 5: %v", err)
	}

	first, _ := repo.FirstHospital(ctx)
	reviews, _ := repo.ListReviewsByHospital(ctx, first.ID)
	if len(reviews) != 2 {
		t.Fatalf("first hospital reviews = %d, want 2", len(reviews))
	}
}

func TestResetReleasesDispatch(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, emergencyIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	outcome, err := svc.ResolveEmergency(ctx, testSession, true)
	if err != nil {
		t.Fatalf("resolve emergency: %v", err)
	}
	if outcome.Status != DispatchDispatched {
		t.Fatalf("status = %q, want dispatched", outcome.Status)
	}

	if err := svc.Reset(ctx, testSession); err != nil {
		t.Fatalf("reset: %v", err)
	}

	amb, _ := repo.GetAmbulanceByID(ctx, *outcome.AmbulanceID)
	if amb.Booked {
		t.Fatal("reset must release the dispatch claim")
	}

	// the session is gone
	if _, err := svc.Intake(ctx, testSession, validIntake()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

// catalogGateRepo fails EnsureHospitalCatalog a set number of times before
// delegating, standing in for a briefly unreachable store.
type catalogGateRepo struct {
	*storetest.Repo
	failures int
}

func (r *catalogGateRepo) EnsureHospitalCatalog(ctx context.Context) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection refused")
	}
	return r.Repo.EnsureHospitalCatalog(ctx)
}

func newGatedWorkflow(failures int) (*Service, *storetest.Repo) {
	repo := storetest.New()
	gate := &catalogGateRepo{Repo: repo, failures: failures}
	allocator := dispatch.NewAllocator(gate, passLocker{})
	svc := NewService(gate, allocator, NewSessionManager())
	svc.StartSession(testSession, testUser)
	return svc, repo
}

func TestDeclineAfterFailedAdvanceReleasesClaim(t *testing.T) {
	svc, repo := newGatedWorkflow(1)
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, emergencyIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}

	// the claim succeeds but the catalog gate fails, so the decision stays open
	if _, err := svc.ResolveEmergency(ctx, testSession, true); err == nil {
		t.Fatal("expected catalog failure on first attempt")
	}

	outcome, err := svc.ResolveEmergency(ctx, testSession, false)
	if err != nil {
		t.Fatalf("decline retry: %v", err)
	}
	if outcome.Status != DispatchDeclined {
		t.Fatalf("status = %q, want declined", outcome.Status)
	}
	if outcome.AmbulanceID != nil {
		t.Fatal("declined outcome must not carry an ambulance")
	}

	// the claim from the failed attempt is given back
	id, _ := repo.EnsureDefaultAmbulance(ctx)
	amb, _ := repo.GetAmbulanceByID(ctx, id)
	if amb.Booked {
		t.Fatal("declining must release the held claim")
	}

	bookingID := driveToBooking(t, svc, false)
	b, _ := repo.GetBookingByID(ctx, bookingID)
	if b.AmbulanceID != nil {
		t.Fatalf("booking ambulance = %v, want absent", *b.AmbulanceID)
	}
}

func TestIntakeStaysPutOnCatalogFailure(t *testing.T) {
	svc, _ := newGatedWorkflow(1)
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err == nil {
		t.Fatal("expected catalog failure")
	} else if IsValidation(err) {
		t.Fatalf("catalog failure must not read as input rejection: %v", err)
	}

	// the session is still at Intake, so re-submitting the form recovers
	res, err := svc.Intake(ctx, testSession, validIntake())
	if err != nil {
		t.Fatalf("intake retry: %v", err)
	}
	if res.Stage != StageHospitalSelection {
		t.Fatalf("stage after retry = %q, want %q", res.Stage, StageHospitalSelection)
	}
}

func TestReviewUnknownHospital(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, validIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	driveToBooking(t, svc, false)

	bogus := int64(9999)
	if err := svc.SubmitReview(ctx, testSession, &bogus, 4, "x"); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	if repo.ReviewCount() != 0 {
		t.Fatalf("rejected review persisted, found %d rows", repo.ReviewCount())
	}
}

func TestWorkflowEventsRecorded(t *testing.T) {
	svc, repo := newTestWorkflow()
	ctx := context.Background()

	if _, err := svc.Intake(ctx, testSession, emergencyIntake()); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := svc.ResolveEmergency(ctx, testSession, true); err != nil {
		t.Fatalf("resolve emergency: %v", err)
	}
	driveToBooking(t, svc, true)
	if err := svc.SubmitReview(ctx, testSession, nil, 4, "ok"); err != nil {
		t.Fatalf("review: %v", err)
	}
	if err := svc.Reset(ctx, testSession); err != nil {
		t.Fatalf("reset: %v", err)
	}

	want := []string{
		EventPatientRegistered,
		EventAmbulanceDispatched,
		EventBookingCreated,
		EventReviewSubmitted,
		EventWorkflowReset,
	}
	got := repo.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
