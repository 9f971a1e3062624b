package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dbogdan/libreria-api/internal/domain"
)

// Query operations. None of these mutate state; GetOverdue in particular is a
// projection over stored dates and never writes the overdue status back.

func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (ReservationView, error) {
	reservation, err := s.store.FindByID(ctx, id)
	if err != nil {
		return ReservationView{}, err
	}
	user, err := s.directory.GetUser(ctx, reservation.UserID)
	if err != nil {
		return ReservationView{}, err
	}
	book, err := s.catalog.GetByExternalID(ctx, reservation.BookExternalID)
	if err != nil {
		return ReservationView{}, err
	}
	return newReservationView(reservation, user, book), nil
}

func (s *ReservationService) GetAll(ctx context.Context) ([]ReservationView, error) {
	reservations, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations)
}

func (s *ReservationService) GetByUser(ctx context.Context, userID uuid.UUID) ([]ReservationView, error) {
	reservations, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations)
}

func (s *ReservationService) GetActive(ctx context.Context) ([]ReservationView, error) {
	reservations, err := s.store.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations)
}

// GetOverdue lists active reservations whose expected return date precedes
// asOf. This is lateness derived from dates, distinct from the stored overdue
// status that is only set once a late return is recorded.
func (s *ReservationService) GetOverdue(ctx context.Context, asOf time.Time) ([]ReservationView, error) {
	reservations, err := s.store.FindOverdue(ctx, domain.Date(asOf))
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations)
}

// CountActiveByUser reports how many active reservations a user holds. Any
// per-user limit is enforced by the caller.
func (s *ReservationService) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.CountActiveByUser(ctx, userID)
}

func (s *ReservationService) HasActiveReservationForBook(ctx context.Context, bookExternalID int64) (bool, error) {
	return s.store.ExistsActiveForBook(ctx, bookExternalID)
}

// views resolves user names and book titles, memoizing per distinct id so a
// listing does not repeat directory/catalog lookups.
func (s *ReservationService) views(ctx context.Context, reservations []domain.Reservation) ([]ReservationView, error) {
	users := make(map[uuid.UUID]domain.User)
	books := make(map[int64]domain.Book)

	out := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		user, ok := users[r.UserID]
		if !ok {
			var err error
			user, err = s.directory.GetUser(ctx, r.UserID)
			if err != nil {
				return nil, err
			}
			users[r.UserID] = user
		}

		book, ok := books[r.BookExternalID]
		if !ok {
			var err error
			book, err = s.catalog.GetByExternalID(ctx, r.BookExternalID)
			if err != nil {
				return nil, err
			}
			books[r.BookExternalID] = book
		}

		out = append(out, newReservationView(r, user, book))
	}
	return out, nil
}
