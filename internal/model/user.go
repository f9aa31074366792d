package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Users are created by registration and never
// changed by the ledger.
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ID        uuid.UUID `json:"id"`
}
