package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dbogdan/libreria-api/internal/app"
	"github.com/dbogdan/libreria-api/internal/clock"
)

// ReservationGetter is the minimal interface needed to fetch one reservation.
type ReservationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (app.ReservationView, error)
}

// BookReturner is the minimal interface needed to record a return.
type BookReturner interface {
	ReturnBook(ctx context.Context, reservationID uuid.UUID, returnDate time.Time) (app.ReservationView, error)
}

// OverdueLister is the minimal interface needed for the overdue projection.
type OverdueLister interface {
	GetOverdue(ctx context.Context, asOf time.Time) ([]app.ReservationView, error)
}

// ReservationItemServices bundles the handlers mounted under /reservations/.
type ReservationItemServices struct {
	Getter   ReservationGetter
	Returner BookReturner
	Overdue  OverdueLister
}

// HandleReservationItem serves the /reservations/ subtree:
//
//	GET  /reservations/overdue?as_of=YYYY-MM-DD
//	GET  /reservations/{id}
//	POST /reservations/{id}/return
func HandleReservationItem(svcs ReservationItemServices, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "reservations" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if len(parts) == 2 && parts[1] == "overdue" {
			listOverdue(w, r, svcs.Overdue, clk)
			return
		}

		id, err := uuid.Parse(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid reservation id")
			return
		}

		switch {
		case len(parts) == 2 && r.Method == http.MethodGet:
			getReservation(w, r, svcs.Getter, id)
		case len(parts) == 3 && parts[2] == "return" && r.Method == http.MethodPost:
			returnReservation(w, r, svcs.Returner, clk, id)
		case len(parts) == 2 || (len(parts) == 3 && parts[2] == "return"):
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func getReservation(w http.ResponseWriter, r *http.Request, svc ReservationGetter, id uuid.UUID) {
	view, err := svc.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationFromView(view))
}

func returnReservation(w http.ResponseWriter, r *http.Request, svc BookReturner, clk clock.Clock, id uuid.UUID) {
	// An empty body means the book is returned today.
	returnDate := clk.Now()
	if r.ContentLength != 0 {
		var req returnBookRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ReturnDate != "" {
			parsed, err := time.Parse(dateLayout, req.ReturnDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid return_date, expected YYYY-MM-DD")
				return
			}
			returnDate = parsed
		}
	}

	view, err := svc.ReturnBook(r.Context(), id, returnDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationFromView(view))
}

func listOverdue(w http.ResponseWriter, r *http.Request, svc OverdueLister, clk clock.Clock) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	asOf := clk.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid as_of, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	views, err := svc.GetOverdue(r.Context(), asOf)
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

type returnBookRequest struct {
	ReturnDate string `json:"return_date"`
}
