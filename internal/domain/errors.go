package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrAlreadyReturned     = errors.New("reservation already returned")
	ErrReturnBeforeStart   = errors.New("return date before start date")
	ErrInvalidRentalDays   = errors.New("invalid rental days")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrBookExists          = errors.New("book already registered")
	ErrUserExists          = errors.New("user already registered")
	ErrInvalidExternalID   = errors.New("invalid external id")
	ErrBookTitleRequired   = errors.New("book title required")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidStock        = errors.New("invalid stock")
	ErrUserNameRequired    = errors.New("user name required")
	ErrUserEmailRequired   = errors.New("user email required")
)
