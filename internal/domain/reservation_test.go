package domain

import (
	"testing"
	"time"
)

func TestReservationStatus_TransitionTo(t *testing.T) {
	t.Parallel()

	t.Run("active can close as returned or overdue", func(t *testing.T) {
		if err := StatusActive.TransitionTo(StatusReturned); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := StatusActive.TransitionTo(StatusOverdue); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("terminal states reject any transition", func(t *testing.T) {
		for _, s := range []ReservationStatus{StatusReturned, StatusOverdue} {
			for _, next := range []ReservationStatus{StatusActive, StatusReturned, StatusOverdue} {
				if err := s.TransitionTo(next); err != ErrAlreadyReturned {
					t.Fatalf("expected ErrAlreadyReturned for %s -> %s, got %v", s, next, err)
				}
			}
		}
	})

	t.Run("active cannot transition back to active", func(t *testing.T) {
		if err := StatusActive.TransitionTo(StatusActive); err != ErrInvalidStatus {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestReservation_DaysLate(t *testing.T) {
	t.Parallel()

	expected := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	r := Reservation{ExpectedReturnDate: expected}

	if got := r.DaysLate(expected); got != 0 {
		t.Fatalf("expected 0 days late on the expected date, got %d", got)
	}
	if got := r.DaysLate(expected.AddDate(0, 0, -2)); got != 0 {
		t.Fatalf("expected 0 days late before the expected date, got %d", got)
	}
	if got := r.DaysLate(expected.AddDate(0, 0, 3)); got != 3 {
		t.Fatalf("expected 3 days late, got %d", got)
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 1, 15, 17, 45, 12, 0, time.FixedZone("ART", -3*3600))
	got := Date(in)
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if DaysBetween(got, got.AddDate(0, 0, 7)) != 7 {
		t.Fatalf("expected 7 days between dates a week apart")
	}
}
