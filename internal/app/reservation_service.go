package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dbogdan/libreria-api/internal/clock"
	"github.com/dbogdan/libreria-api/internal/domain"
)

type ReservationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, r domain.Reservation) error
	Update(ctx context.Context, r domain.Reservation) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error)
	FindByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]domain.Reservation, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsActiveForBook(ctx context.Context, bookExternalID int64) (bool, error)
}

type BookCatalog interface {
	GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error)
	// ReserveCopy atomically decrements availability, failing with
	// ErrNoCopiesAvailable when no copy is left. Check and decrement are a
	// single statement so two concurrent creations cannot both take the
	// last copy.
	ReserveCopy(ctx context.Context, externalID int64) error
	ReleaseCopy(ctx context.Context, externalID int64) error
}

type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// 15% of the current book price per day late.
var defaultLateFeeRate = decimal.New(15, -2)

type ReservationService struct {
	store       ReservationStore
	catalog     BookCatalog
	directory   UserDirectory
	clock       clock.Clock
	lateFeeRate decimal.Decimal
}

func NewReservationService(store ReservationStore, catalog BookCatalog, directory UserDirectory, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		store:       store,
		catalog:     catalog,
		directory:   directory,
		clock:       clk,
		lateFeeRate: defaultLateFeeRate,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithLateFeeRate overrides the default per-day late fee rate.
func WithLateFeeRate(rate decimal.Decimal) ReservationServiceOption {
	return func(s *ReservationService) {
		if rate.IsPositive() {
			s.lateFeeRate = rate
		}
	}
}

type CreateReservationInput struct {
	UserID         uuid.UUID
	BookExternalID int64
	RentalDays     int
	StartDate      time.Time
}

func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (ReservationView, error) {
	if in.RentalDays <= 0 {
		return ReservationView{}, domain.ErrInvalidRentalDays
	}

	var (
		result domain.Reservation
		user   domain.User
		book   domain.Book
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.directory.GetUser(txCtx, in.UserID)
		if err != nil {
			return err
		}
		book, err = s.catalog.GetByExternalID(txCtx, in.BookExternalID)
		if err != nil {
			return err
		}
		if book.AvailableQuantity <= 0 {
			return domain.ErrNoCopiesAvailable
		}

		start := domain.Date(in.StartDate)
		reservation := domain.Reservation{
			ID:                 uuid.New(),
			UserID:             user.ID,
			BookExternalID:     book.ExternalID,
			RentalDays:         in.RentalDays,
			StartDate:          start,
			ExpectedReturnDate: start.AddDate(0, 0, in.RentalDays),
			DailyRate:          book.Price,
			TotalFee:           rentalFee(book.Price, in.RentalDays),
			LateFee:            decimal.Zero,
			Status:             domain.StatusActive,
			CreatedAt:          s.clock.Now(),
		}

		if err := s.store.Create(txCtx, reservation); err != nil {
			return err
		}
		// The catalog decrement runs in the same transaction as the insert,
		// and ReserveCopy itself re-checks availability, so the availability
		// read above is only a fast rejection path.
		if err := s.catalog.ReserveCopy(txCtx, book.ExternalID); err != nil {
			return err
		}

		result = reservation
		return nil
	})
	if err != nil {
		return ReservationView{}, err
	}

	return newReservationView(result, user, book), nil
}

func (s *ReservationService) ReturnBook(ctx context.Context, reservationID uuid.UUID, returnDate time.Time) (ReservationView, error) {
	returned := domain.Date(returnDate)

	var (
		result domain.Reservation
		user   domain.User
		book   domain.Book
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		reservation, err := s.store.GetForUpdate(txCtx, reservationID)
		if err != nil {
			return err
		}
		if err := reservation.Status.TransitionTo(domain.StatusReturned); err != nil {
			return err
		}
		if returned.Before(reservation.StartDate) {
			return domain.ErrReturnBeforeStart
		}

		book, err = s.catalog.GetByExternalID(txCtx, reservation.BookExternalID)
		if err != nil {
			return err
		}
		user, err = s.directory.GetUser(txCtx, reservation.UserID)
		if err != nil {
			return err
		}

		reservation.ActualReturnDate = &returned
		if daysLate := reservation.DaysLate(returned); daysLate > 0 {
			// The penalty uses the current catalog price, not the snapshot
			// daily rate the base fee was locked at.
			fee := s.lateFee(book.Price, daysLate)
			reservation.LateFee = fee
			reservation.TotalFee = reservation.TotalFee.Add(fee)
			reservation.Status = domain.StatusOverdue
		} else {
			reservation.Status = domain.StatusReturned
		}

		if err := s.store.Update(txCtx, reservation); err != nil {
			return err
		}
		if err := s.catalog.ReleaseCopy(txCtx, reservation.BookExternalID); err != nil {
			return err
		}

		result = reservation
		return nil
	})
	if err != nil {
		return ReservationView{}, err
	}

	return newReservationView(result, user, book), nil
}

func rentalFee(dailyRate decimal.Decimal, rentalDays int) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromInt(int64(rentalDays))).Round(2)
}

func (s *ReservationService) lateFee(currentPrice decimal.Decimal, daysLate int) decimal.Decimal {
	return currentPrice.Mul(s.lateFeeRate).Mul(decimal.NewFromInt(int64(daysLate))).Round(2)
}
