package domain

import "github.com/google/uuid"

// User is a borrower known to the directory.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
}
