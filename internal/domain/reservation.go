package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusActive   ReservationStatus = "active"
	StatusReturned ReservationStatus = "returned"
	StatusOverdue  ReservationStatus = "overdue"
)

// Terminal reports whether s allows no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == StatusReturned || s == StatusOverdue
}

// TransitionTo enforces the lifecycle: active is the only state with outgoing
// transitions, and the only legal targets are the two terminal states.
func (s ReservationStatus) TransitionTo(next ReservationStatus) error {
	if s != StatusActive {
		return ErrAlreadyReturned
	}
	if !next.Terminal() {
		return ErrInvalidStatus
	}
	return nil
}

// Reservation binds a user to a borrowed book copy for a bounded rental period.
type Reservation struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	BookExternalID     int64
	RentalDays         int
	StartDate          time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	// DailyRate is the book price snapshotted at creation; later catalog
	// price changes never affect the base fee.
	DailyRate decimal.Decimal
	TotalFee  decimal.Decimal
	LateFee   decimal.Decimal
	Status    ReservationStatus
	CreatedAt time.Time
}

// DaysLate returns the whole calendar days between the expected return date
// and returnDate, or zero when the return is on time.
func (r Reservation) DaysLate(returnDate time.Time) int {
	if !returnDate.After(r.ExpectedReturnDate) {
		return 0
	}
	return DaysBetween(r.ExpectedReturnDate, returnDate)
}

// DaysBetween counts whole calendar days from one date to a later one.
// Both arguments must be date-only values (midnight UTC).
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// Date truncates t to a date-only value at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
