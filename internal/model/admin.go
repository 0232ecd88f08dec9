package model

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an exam-authoring principal.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
