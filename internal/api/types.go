package api

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// IntakeRequest mirrors the patient form. Age arrives as entered so the
// workflow decides whether it parses.
type IntakeRequest struct {
	Name              string `json:"name"`
	Age               string `json:"age"`
	Address           string `json:"address"`
	Mobile            string `json:"mobile"`
	GuardianName      string `json:"guardian_name"`
	GuardianRelation  string `json:"guardian_relation"`
	GuardianMobile    string `json:"guardian_mobile"`
	Disease           string `json:"disease"`
	Emergency         bool   `json:"emergency"`
	AmbulanceRequired bool   `json:"ambulance_required"`
}

type IntakeResponse struct {
	PatientID        int64  `json:"patient_id"`
	Stage            string `json:"stage"`
	DecisionRequired bool   `json:"decision_required"`
	Notice           string `json:"notice,omitempty"`
}

type EmergencyRequest struct {
	WantsDispatch bool `json:"wants_dispatch"`
}

type AmbulanceInfo struct {
	ID              int64  `json:"id"`
	DriverName      string `json:"driver_name"`
	DriverMobile    string `json:"driver_mobile"`
	AmbulanceNumber string `json:"ambulance_number"`
	NurseName       string `json:"nurse_name"`
	NurseMobile     string `json:"nurse_mobile"`
}

type EmergencyResponse struct {
	Status      string         `json:"status"`
	AmbulanceID *int64         `json:"ambulance_id,omitempty"`
	Ambulance   *AmbulanceInfo `json:"ambulance,omitempty"`
}

type SelectHospitalRequest struct {
	HospitalID *int64 `json:"hospital_id"`
}

type HospitalResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Specialization string  `json:"specialization"`
	Terms          string  `json:"terms"`
	Rating         float64 `json:"rating"`
}

type DoctorInfo struct {
	Name       string `json:"name"`
	Field      string `json:"field"`
	Experience string `json:"experience"`
}

type DoctorConfirmResponse struct {
	Doctors []DoctorInfo `json:"doctors"`
	Stage   string       `json:"stage"`
}

type WardFoodRequest struct {
	Room string `json:"room"`
	Food string `json:"food"`
}

// BillingRequest carries operator entries as strings; unparseable or negative
// amounts fall back to the field defaults.
type BillingRequest struct {
	DoctorFee     string `json:"doctor_fee"`
	AmbulanceUsed bool   `json:"ambulance_used"`
	Misc          string `json:"misc"`
}

type BillingResponse struct {
	Total int64 `json:"total"`
}

type CommitBookingResponse struct {
	BookingID int64 `json:"booking_id"`
}

type SummaryResponse struct {
	PatientID   int64  `json:"patient_id"`
	BookingID   int64  `json:"booking_id"`
	Total       int64  `json:"total"`
	HospitalID  *int64 `json:"hospital_id,omitempty"`
	AmbulanceID *int64 `json:"ambulance_id,omitempty"`
}

type ReviewRequest struct {
	HospitalID *int64 `json:"hospital_id"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}

type ReviewResponse struct {
	HospitalID int64  `json:"hospital_id"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
