package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dbogdan/libreria-api/internal/app"
	"github.com/dbogdan/libreria-api/internal/domain"
)

const dateLayout = "2006-01-02"

// ReservationCreator is the minimal interface needed to create a reservation.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (app.ReservationView, error)
}

// ReservationLister is the minimal interface needed for reservation listings.
type ReservationLister interface {
	GetAll(ctx context.Context) ([]app.ReservationView, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]app.ReservationView, error)
	GetActive(ctx context.Context) ([]app.ReservationView, error)
}

// HandleReservations serves POST /reservations and GET /reservations with the
// optional user_id and status=active filters.
func HandleReservations(creator ReservationCreator, lister ReservationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createReservation(w, r, creator)
		case http.MethodGet:
			listReservations(w, r, lister)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func createReservation(w http.ResponseWriter, r *http.Request, svc ReservationCreator) {
	var req createReservationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user_id")
		return
	}
	if req.BookExternalID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidExternalID, "invalid book_external_id")
		return
	}
	if req.RentalDays <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRentalDays, domain.ErrInvalidRentalDays.Error())
		return
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	view, err := svc.CreateReservation(r.Context(), app.CreateReservationInput{
		UserID:         userID,
		BookExternalID: req.BookExternalID,
		RentalDays:     req.RentalDays,
		StartDate:      startDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservationFromView(view))
}

func listReservations(w http.ResponseWriter, r *http.Request, svc ReservationLister) {
	q := r.URL.Query()

	var (
		views []app.ReservationView
		err   error
	)
	switch {
	case q.Get("user_id") != "":
		var userID uuid.UUID
		userID, err = uuid.Parse(q.Get("user_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user_id")
			return
		}
		views, err = svc.GetByUser(r.Context(), userID)
	case q.Get("status") == string(domain.StatusActive):
		views, err = svc.GetActive(r.Context())
	default:
		views, err = svc.GetAll(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]reservationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, reservationFromView(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createReservationRequest struct {
	UserID         string `json:"user_id"`
	BookExternalID int64  `json:"book_external_id"`
	RentalDays     int    `json:"rental_days"`
	StartDate      string `json:"start_date"`
}

type reservationResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"user_id"`
	UserName           string  `json:"user_name"`
	BookExternalID     int64   `json:"book_external_id"`
	BookTitle          string  `json:"book_title"`
	RentalDays         int     `json:"rental_days"`
	StartDate          string  `json:"start_date"`
	ExpectedReturnDate string  `json:"expected_return_date"`
	ActualReturnDate   *string `json:"actual_return_date"`
	DailyRate          string  `json:"daily_rate"`
	TotalFee           string  `json:"total_fee"`
	LateFee            string  `json:"late_fee"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"created_at"`
}

func reservationFromView(v app.ReservationView) reservationResponse {
	resp := reservationResponse{
		ID:                 v.ID.String(),
		UserID:             v.UserID.String(),
		UserName:           v.UserName,
		BookExternalID:     v.BookExternalID,
		BookTitle:          v.BookTitle,
		RentalDays:         v.RentalDays,
		StartDate:          v.StartDate.Format(dateLayout),
		ExpectedReturnDate: v.ExpectedReturnDate.Format(dateLayout),
		DailyRate:          v.DailyRate.StringFixed(2),
		TotalFee:           v.TotalFee.StringFixed(2),
		LateFee:            v.LateFee.StringFixed(2),
		Status:             string(v.Status),
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
	}
	if v.ActualReturnDate != nil {
		formatted := v.ActualReturnDate.Format(dateLayout)
		resp.ActualReturnDate = &formatted
	}
	return resp
}

// writeDomainError maps engine sentinel errors to HTTP status codes. Anything
// unmapped is an internal error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrUserNotFound:
		writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
	case domain.ErrBookNotFound:
		writeError(w, http.StatusNotFound, codeBookNotFound, err.Error())
	case domain.ErrReservationNotFound:
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	case domain.ErrNoCopiesAvailable:
		writeError(w, http.StatusConflict, codeNoCopiesAvailable, err.Error())
	case domain.ErrAlreadyReturned:
		writeError(w, http.StatusConflict, codeAlreadyReturned, err.Error())
	case domain.ErrReturnBeforeStart:
		writeError(w, http.StatusUnprocessableEntity, codeReturnBeforeStart, err.Error())
	case domain.ErrInvalidRentalDays:
		writeError(w, http.StatusBadRequest, codeInvalidRentalDays, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
