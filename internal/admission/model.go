package admission

import (
	"sync"
	"time"

	"github.com/careops/hospital-admission/internal/store"
)

// Stage is the workflow checkpoint a session sits at. Stages advance strictly
// forward except the billing back-edge to ward and food selection.
type Stage string

const (
	StageIntake             Stage = "intake"
	StageEmergencyCheck     Stage = "emergency_check"
	StageHospitalSelection  Stage = "hospital_selection"
	StageDoctorConfirmation Stage = "doctor_confirmation"
	StageWardFoodSelection  Stage = "ward_food_selection"
	StageBilling            Stage = "billing"
	StageSummary            Stage = "summary"
)

type RoomTier string

const (
	RoomACSingle    RoomTier = "ac_single"
	RoomNonACSingle RoomTier = "non_ac_single"
	Room2Sharing    RoomTier = "2_sharing"
	Room4Sharing    RoomTier = "4_sharing"
)

var roomCharges = map[RoomTier]int64{
	RoomACSingle:    5000,
	RoomNonACSingle: 3000,
	Room2Sharing:    3000,
	Room4Sharing:    1500,
}

// ParseRoomTier maps an operator selection to a tier.
func ParseRoomTier(s string) (RoomTier, error) {
	t := RoomTier(s)
	if _, ok := roomCharges[t]; !ok {
		return "", validationf("unknown room tier %q", s)
	}
	return t, nil
}

func (t RoomTier) Charge() int64 {
	return roomCharges[t]
}

type FoodPlan string

const (
	FoodStandard   FoodPlan = "standard"
	FoodProtein    FoodPlan = "protein"
	FoodVegetarian FoodPlan = "vegetarian"
	FoodSpecial    FoodPlan = "special"
)

var foodCharges = map[FoodPlan]int64{
	FoodStandard:   300,
	FoodProtein:    500,
	FoodVegetarian: 250,
	FoodSpecial:    800,
}

func ParseFoodPlan(s string) (FoodPlan, error) {
	p := FoodPlan(s)
	if _, ok := foodCharges[p]; !ok {
		return "", validationf("unknown food plan %q", s)
	}
	return p, nil
}

func (p FoodPlan) Charge() int64 {
	return foodCharges[p]
}

type DispatchStatus string

const (
	DispatchDispatched  DispatchStatus = "dispatched"
	DispatchDeclined    DispatchStatus = "declined"
	DispatchUnavailable DispatchStatus = "unavailable"
)

// DispatchOutcome is the result of the emergency decision. Ambulance is set
// only when Status is dispatched.
type DispatchOutcome struct {
	Status      DispatchStatus
	AmbulanceID *int64
	Ambulance   *store.Ambulance
}

// billState carries the quoted billing inputs between quote and commit.
type billState struct {
	DoctorFee     int64
	AmbulanceUsed bool
	Misc          int64
	Total         int64
}

// Session is one operator's run through the admission pipeline. All carried
// references live here; nothing is global.
type Session struct {
	ID        string
	UserID    int64
	Stage     Stage
	CreatedAt time.Time

	PatientID                *int64
	EmergencyDecisionPending bool
	DispatchID               *int64
	SelectedHospitalID       *int64
	Room                     RoomTier
	Food                     FoodPlan
	Bill                     *billState
	BookingID                *int64
	ReviewSubmitted          bool

	mu sync.Mutex
}

// IntakeInput holds the raw patient form fields. Age arrives as entered so
// the workflow owns the parse failure.
type IntakeInput struct {
	Name              string
	Age               string
	Address           string
	Mobile            string
	GuardianName      string
	GuardianRelation  string
	GuardianMobile    string
	Disease           string
	Emergency         bool
	AmbulanceRequired bool
}

// IntakeResult reports the committed patient and whether the emergency
// dispatch decision is now pending.
type IntakeResult struct {
	PatientID        int64
	Stage            Stage
	DecisionRequired bool
	Notice           string
}

// SummaryView is the read-only closing screen of a run.
type SummaryView struct {
	PatientID   int64
	BookingID   int64
	Total       int64
	HospitalID  *int64
	AmbulanceID *int64
}
