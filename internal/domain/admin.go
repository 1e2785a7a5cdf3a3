package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin is the single operator account allowed to mutate the catalog.
type Admin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
