package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dbogdan/libreria-api/internal/domain"
)

// ReservationView is the reservation representation handed to presentation
// layers: the stored record plus the borrower name and book title resolved
// through the directory and the catalog.
type ReservationView struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	UserName           string
	BookExternalID     int64
	BookTitle          string
	RentalDays         int
	StartDate          time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	DailyRate          decimal.Decimal
	TotalFee           decimal.Decimal
	LateFee            decimal.Decimal
	Status             domain.ReservationStatus
	CreatedAt          time.Time
}

func newReservationView(r domain.Reservation, user domain.User, book domain.Book) ReservationView {
	return ReservationView{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserName:           user.Name,
		BookExternalID:     r.BookExternalID,
		BookTitle:          book.Title,
		RentalDays:         r.RentalDays,
		StartDate:          r.StartDate,
		ExpectedReturnDate: r.ExpectedReturnDate,
		ActualReturnDate:   r.ActualReturnDate,
		DailyRate:          r.DailyRate,
		TotalFee:           r.TotalFee,
		LateFee:            r.LateFee,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
	}
}
