package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careops/hospital-admission/internal/admission"
	"github.com/careops/hospital-admission/internal/auth"
	"github.com/careops/hospital-admission/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleWorkflowError maps the workflow error taxonomy onto HTTP. Store
// failures are surfaced verbatim so the operator sees the diagnostic.
func handleWorkflowError(w http.ResponseWriter, err error) {
	var ve *admission.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Msg)
	case errors.Is(err, admission.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "session_not_found", "log in to start a workflow run")
	case errors.Is(err, store.ErrHospitalNotFound):
		writeError(w, http.StatusNotFound, "hospital_not_found", err.Error())
	case errors.Is(err, store.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
	}
}

func signupHandler(authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "username, email and password are required")
			return
		}

		created, err := authSvc.Signup(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
			return
		}
		if !created {
			writeError(w, http.StatusConflict, "already_exists", "username or email already exists")
			return
		}

		writeJSON(w, http.StatusCreated, StatusResponse{Status: "created"})
	}
}

func loginHandler(authSvc *auth.Service, workflow *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		token, userID, sessionID, err := authSvc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
				return
			}
			writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
			return
		}

		// a successful login opens a fresh workflow run at Intake
		workflow.StartSession(sessionID, userID)

		writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: userID})
	}
}

func intakeHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		res, err := svc.Intake(r.Context(), sessionFromContext(r.Context()), admission.IntakeInput{
			Name:              req.Name,
			Age:               req.Age,
			Address:           req.Address,
			Mobile:            req.Mobile,
			GuardianName:      req.GuardianName,
			GuardianRelation:  req.GuardianRelation,
			GuardianMobile:    req.GuardianMobile,
			Disease:           req.Disease,
			Emergency:         req.Emergency,
			AmbulanceRequired: req.AmbulanceRequired,
		})
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, IntakeResponse{
			PatientID:        res.PatientID,
			Stage:            string(res.Stage),
			DecisionRequired: res.DecisionRequired,
			Notice:           res.Notice,
		})
	}
}

func emergencyHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EmergencyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		outcome, err := svc.ResolveEmergency(r.Context(), sessionFromContext(r.Context()), req.WantsDispatch)
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		resp := EmergencyResponse{
			Status:      string(outcome.Status),
			AmbulanceID: outcome.AmbulanceID,
		}
		if outcome.Ambulance != nil {
			resp.Ambulance = &AmbulanceInfo{
				ID:              outcome.Ambulance.ID,
				DriverName:      outcome.Ambulance.DriverName,
				DriverMobile:    outcome.Ambulance.DriverMobile,
				AmbulanceNumber: outcome.Ambulance.AmbulanceNumber,
				NurseName:       outcome.Ambulance.NurseName,
				NurseMobile:     outcome.Ambulance.NurseMobile,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listHospitalsHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hospitals, err := svc.Hospitals(r.Context())
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		resp := make([]HospitalResponse, 0, len(hospitals))
		for _, h := range hospitals {
			resp = append(resp, HospitalResponse{
				ID:             h.ID,
				Name:           h.Name,
				Location:       h.Location,
				Specialization: h.Specialization,
				Terms:          h.Terms,
				Rating:         h.Rating,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func hospitalReviewsHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_hospital_id", "id must be an integer")
			return
		}

		reviews, err := svc.HospitalReviews(r.Context(), id)
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		resp := make([]ReviewResponse, 0, len(reviews))
		for _, rev := range reviews {
			resp = append(resp, ReviewResponse{
				HospitalID: rev.HospitalID,
				Rating:     rev.Rating,
				Text:       rev.Text,
				CreatedAt:  rev.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func selectHospitalHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.SelectHospital(r.Context(), sessionFromContext(r.Context()), req.HospitalID); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// static doctor card shown at the confirmation step; doctor assignment is
// never persisted
var doctorCard = []DoctorInfo{
	{Name: "Dr. A. Kumar", Field: "Cardiology", Experience: "18 years"},
	{Name: "Dr. M. Sharma", Field: "General Medicine", Experience: "12 years"},
}

func confirmDoctorHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ConfirmDoctor(sessionFromContext(r.Context())); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DoctorConfirmResponse{
			Doctors: doctorCard,
			Stage:   string(admission.StageWardFoodSelection),
		})
	}
}

func wardFoodHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WardFoodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.SelectWardFood(sessionFromContext(r.Context()), req.Room, req.Food); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

func billingQuoteHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BillingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		total, err := svc.ConfirmBilling(sessionFromContext(r.Context()), req.DoctorFee, req.AmbulanceUsed, req.Misc)
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BillingResponse{Total: total})
	}
}

func billingBackHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.BackToWardFood(sessionFromContext(r.Context())); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

func commitBookingHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := svc.CommitBooking(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CommitBookingResponse{BookingID: id})
	}
}

func summaryHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Summary(sessionFromContext(r.Context()))
		if err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SummaryResponse{
			PatientID:   view.PatientID,
			BookingID:   view.BookingID,
			Total:       view.Total,
			HospitalID:  view.HospitalID,
			AmbulanceID: view.AmbulanceID,
		})
	}
}

func reviewHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.SubmitReview(r.Context(), sessionFromContext(r.Context()), req.HospitalID, req.Rating, req.Text); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, StatusResponse{Status: "ok"})
	}
}

func resetHandler(svc *admission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(r.Context(), sessionFromContext(r.Context())); err != nil {
			handleWorkflowError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "reset"})
	}
}
