package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dbogdan/libreria-api/internal/clock"
	"github.com/dbogdan/libreria-api/internal/domain"
)

var (
	testUserID = uuid.MustParse("6f1c1a32-5a3e-4b9b-8f41-2d6f0a9a0c01")
	testBookID = int64(258027)
)

func testUser() domain.User {
	return domain.User{ID: testUserID, Name: "Juan Pérez", Email: "juan@example.com"}
}

func testBook(available int) domain.Book {
	return domain.Book{
		ExternalID:        testBookID,
		Title:             "The Lord of the Rings",
		AuthorNames:       []string{"J.R.R. Tolkien"},
		Price:             decimal.RequireFromString("15.99"),
		StockQuantity:     10,
		AvailableQuantity: available,
	}
}

func TestReservationService_CreateReservation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	makeSvc := func(users []domain.User, books []domain.Book) (*ReservationService, *fakeStore, *fakeCatalog) {
		store := newFakeStore()
		catalog := newFakeCatalog(books)
		directory := newFakeDirectory(users)
		svc := NewReservationService(store, catalog, directory, clock.NewFixed(now))
		return svc, store, catalog
	}

	t.Run("creates reservation with snapshot rate and rounded fee", func(t *testing.T) {
		svc, store, catalog := makeSvc([]domain.User{testUser()}, []domain.Book{testBook(5)})

		view, err := svc.CreateReservation(context.Background(), CreateReservationInput{
			UserID:         testUserID,
			BookExternalID: testBookID,
			RentalDays:     7,
			StartDate:      start,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if view.ID == uuid.Nil {
			t.Fatalf("expected reservation ID to be set")
		}
		if view.UserName != "Juan Pérez" || view.BookTitle != "The Lord of the Rings" {
			t.Fatalf("unexpected view names: %q %q", view.UserName, view.BookTitle)
		}
		wantReturn := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
		if !view.ExpectedReturnDate.Equal(wantReturn) {
			t.Fatalf("expected return date %v, got %v", wantReturn, view.ExpectedReturnDate)
		}
		if !view.DailyRate.Equal(decimal.RequireFromString("15.99")) {
			t.Fatalf("expected daily rate 15.99, got %s", view.DailyRate)
		}
		if !view.TotalFee.Equal(decimal.RequireFromString("111.93")) {
			t.Fatalf("expected total fee 111.93, got %s", view.TotalFee)
		}
		if !view.LateFee.IsZero() {
			t.Fatalf("expected zero late fee, got %s", view.LateFee)
		}
		if view.Status != domain.StatusActive {
			t.Fatalf("expected status %s, got %s", domain.StatusActive, view.Status)
		}
		if !view.CreatedAt.Equal(now) {
			t.Fatalf("expected created at %v, got %v", now, view.CreatedAt)
		}

		if len(store.reservations) != 1 {
			t.Fatalf("expected 1 stored reservation, got %d", len(store.reservations))
		}
		if got := catalog.books[testBookID].AvailableQuantity; got != 4 {
			t.Fatalf("expected availability 4 after reserve, got %d", got)
		}
	})

	t.Run("rejects non-positive rental days", func(t *testing.T) {
		svc, store, _ := makeSvc([]domain.User{testUser()}, []domain.Book{testBook(5)})

		for _, days := range []int{0, -3} {
			_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
				UserID:         testUserID,
				BookExternalID: testBookID,
				RentalDays:     days,
				StartDate:      start,
			})
			if err != domain.ErrInvalidRentalDays {
				t.Fatalf("expected ErrInvalidRentalDays for %d days, got %v", days, err)
			}
		}
		if len(store.reservations) != 0 {
			t.Fatalf("expected no reservations stored")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := makeSvc(nil, []domain.Book{testBook(5)})

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
			UserID:         testUserID,
			BookExternalID: testBookID,
			RentalDays:     7,
			StartDate:      start,
		})
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _, _ := makeSvc([]domain.User{testUser()}, nil)

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
			UserID:         testUserID,
			BookExternalID: testBookID,
			RentalDays:     7,
			StartDate:      start,
		})
		if err != domain.ErrBookNotFound {
			t.Fatalf("expected ErrBookNotFound, got %v", err)
		}
	})

	t.Run("no copies available leaves inventory untouched", func(t *testing.T) {
		svc, store, catalog := makeSvc([]domain.User{testUser()}, []domain.Book{testBook(0)})

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
			UserID:         testUserID,
			BookExternalID: testBookID,
			RentalDays:     7,
			StartDate:      start,
		})
		if err != domain.ErrNoCopiesAvailable {
			t.Fatalf("expected ErrNoCopiesAvailable, got %v", err)
		}
		if catalog.reserveCalls != 0 {
			t.Fatalf("expected no reserve call, got %d", catalog.reserveCalls)
		}
		if got := catalog.books[testBookID].AvailableQuantity; got != 0 {
			t.Fatalf("expected availability unchanged at 0, got %d", got)
		}
		if len(store.reservations) != 0 {
			t.Fatalf("expected no reservations stored")
		}
	})
}

func TestReservationService_ReturnBook(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 25, 11, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	activeReservation := func() domain.Reservation {
		return domain.Reservation{
			ID:                 uuid.MustParse("0f0e7f10-9f51-4a3c-9c3a-77f6f3f0be22"),
			UserID:             testUserID,
			BookExternalID:     testBookID,
			RentalDays:         7,
			StartDate:          start,
			ExpectedReturnDate: start.AddDate(0, 0, 7),
			DailyRate:          decimal.RequireFromString("15.99"),
			TotalFee:           decimal.RequireFromString("111.93"),
			LateFee:            decimal.Zero,
			Status:             domain.StatusActive,
			CreatedAt:          start,
		}
	}

	makeSvc := func(reservations []domain.Reservation, books []domain.Book) (*ReservationService, *fakeStore, *fakeCatalog) {
		store := newFakeStore(reservations...)
		catalog := newFakeCatalog(books)
		directory := newFakeDirectory([]domain.User{testUser()})
		svc := NewReservationService(store, catalog, directory, clock.NewFixed(now))
		return svc, store, catalog
	}

	t.Run("on-time return", func(t *testing.T) {
		seed := activeReservation()
		svc, store, catalog := makeSvc([]domain.Reservation{seed}, []domain.Book{testBook(4)})

		view, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if view.Status != domain.StatusReturned {
			t.Fatalf("expected status %s, got %s", domain.StatusReturned, view.Status)
		}
		if view.ActualReturnDate == nil || !view.ActualReturnDate.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected actual return date %v", view.ActualReturnDate)
		}
		if !view.LateFee.IsZero() {
			t.Fatalf("expected zero late fee, got %s", view.LateFee)
		}
		if !view.TotalFee.Equal(decimal.RequireFromString("111.93")) {
			t.Fatalf("expected total fee unchanged at 111.93, got %s", view.TotalFee)
		}
		if got := catalog.books[testBookID].AvailableQuantity; got != 5 {
			t.Fatalf("expected availability back to 5, got %d", got)
		}
		if stored := store.reservations[seed.ID]; stored.Status != domain.StatusReturned {
			t.Fatalf("expected stored status returned, got %s", stored.Status)
		}
	})

	t.Run("late return adds late fee and marks overdue", func(t *testing.T) {
		seed := activeReservation()
		svc, _, catalog := makeSvc([]domain.Reservation{seed}, []domain.Book{testBook(4)})

		// 2024-01-25 is three days past the expected 2024-01-22.
		view, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if view.Status != domain.StatusOverdue {
			t.Fatalf("expected status %s, got %s", domain.StatusOverdue, view.Status)
		}
		if !view.LateFee.Equal(decimal.RequireFromString("7.20")) {
			t.Fatalf("expected late fee 7.20, got %s", view.LateFee)
		}
		if !view.TotalFee.Equal(decimal.RequireFromString("119.13")) {
			t.Fatalf("expected total fee 119.13, got %s", view.TotalFee)
		}
		if got := catalog.books[testBookID].AvailableQuantity; got != 5 {
			t.Fatalf("expected availability back to 5, got %d", got)
		}
	})

	t.Run("late fee follows the current catalog price, not the snapshot rate", func(t *testing.T) {
		// Deliberate asymmetry inherited from the billing rules: the base fee
		// is locked at booking time, the penalty tracks the current price.
		seed := activeReservation()
		repriced := testBook(4)
		repriced.Price = decimal.RequireFromString("20.00")
		svc, _, _ := makeSvc([]domain.Reservation{seed}, []domain.Book{repriced})

		view, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !view.DailyRate.Equal(decimal.RequireFromString("15.99")) {
			t.Fatalf("expected snapshot daily rate 15.99, got %s", view.DailyRate)
		}
		if !view.LateFee.Equal(decimal.RequireFromString("9.00")) {
			t.Fatalf("expected late fee 9.00 at current price, got %s", view.LateFee)
		}
	})

	t.Run("custom late fee rate", func(t *testing.T) {
		seed := activeReservation()
		store := newFakeStore(seed)
		catalog := newFakeCatalog([]domain.Book{testBook(4)})
		svc := NewReservationService(store, catalog, newFakeDirectory([]domain.User{testUser()}), clock.NewFixed(now),
			WithLateFeeRate(decimal.RequireFromString("0.10")))

		view, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 15.99 * 0.10 * 3 = 4.797 -> 4.80
		if !view.LateFee.Equal(decimal.RequireFromString("4.80")) {
			t.Fatalf("expected late fee 4.80, got %s", view.LateFee)
		}
	})

	t.Run("terminal reservations cannot be returned again", func(t *testing.T) {
		for _, status := range []domain.ReservationStatus{domain.StatusReturned, domain.StatusOverdue} {
			seed := activeReservation()
			seed.Status = status
			svc, _, catalog := makeSvc([]domain.Reservation{seed}, []domain.Book{testBook(4)})

			_, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC))
			if err != domain.ErrAlreadyReturned {
				t.Fatalf("expected ErrAlreadyReturned for %s, got %v", status, err)
			}
			if catalog.releaseCalls != 0 {
				t.Fatalf("expected no release call for %s", status)
			}
		}
	})

	t.Run("return date before start date", func(t *testing.T) {
		seed := activeReservation()
		svc, store, _ := makeSvc([]domain.Reservation{seed}, []domain.Book{testBook(4)})

		_, err := svc.ReturnBook(context.Background(), seed.ID, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
		if err != domain.ErrReturnBeforeStart {
			t.Fatalf("expected ErrReturnBeforeStart, got %v", err)
		}
		if stored := store.reservations[seed.ID]; stored.Status != domain.StatusActive {
			t.Fatalf("expected reservation untouched, got status %s", stored.Status)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		svc, _, _ := makeSvc(nil, []domain.Book{testBook(4)})

		_, err := svc.ReturnBook(context.Background(), uuid.New(), time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC))
		if err != domain.ErrReservationNotFound {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})
}

type fakeStore struct {
	reservations map[uuid.UUID]domain.Reservation
}

func newFakeStore(seed ...domain.Reservation) *fakeStore {
	s := &fakeStore{reservations: make(map[uuid.UUID]domain.Reservation)}
	for _, r := range seed {
		s.reservations[r.ID] = r
	}
	return s
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) Create(_ context.Context, r domain.Reservation) error {
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeStore) Update(_ context.Context, r domain.Reservation) error {
	if _, ok := f.reservations[r.ID]; !ok {
		return domain.ErrReservationNotFound
	}
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeStore) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) FindByUser(_ context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByStatus(_ context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOverdue(_ context.Context, asOf time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.StatusActive && r.ExpectedReturnDate.Before(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CountActiveByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, r := range f.reservations {
		if r.UserID == userID && r.Status == domain.StatusActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ExistsActiveForBook(_ context.Context, bookExternalID int64) (bool, error) {
	for _, r := range f.reservations {
		if r.BookExternalID == bookExternalID && r.Status == domain.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalog struct {
	books        map[int64]domain.Book
	reserveCalls int
	releaseCalls int
}

func newFakeCatalog(books []domain.Book) *fakeCatalog {
	c := &fakeCatalog{books: make(map[int64]domain.Book)}
	for _, b := range books {
		c.books[b.ExternalID] = b
	}
	return c
}

func (f *fakeCatalog) GetByExternalID(_ context.Context, externalID int64) (domain.Book, error) {
	b, ok := f.books[externalID]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeCatalog) ReserveCopy(_ context.Context, externalID int64) error {
	b, ok := f.books[externalID]
	if !ok {
		return domain.ErrBookNotFound
	}
	if b.AvailableQuantity <= 0 {
		return domain.ErrNoCopiesAvailable
	}
	f.reserveCalls++
	b.AvailableQuantity--
	f.books[externalID] = b
	return nil
}

func (f *fakeCatalog) ReleaseCopy(_ context.Context, externalID int64) error {
	b, ok := f.books[externalID]
	if !ok {
		return domain.ErrBookNotFound
	}
	f.releaseCalls++
	b.AvailableQuantity++
	f.books[externalID] = b
	return nil
}

type fakeDirectory struct {
	users map[uuid.UUID]domain.User
}

func newFakeDirectory(users []domain.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[uuid.UUID]domain.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (f *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}
