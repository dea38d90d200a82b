package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusResolved = "resolved"
)

type Contact struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name    string    `gorm:"size:255;not null" json:"name"`
	Email   string    `gorm:"size:255;not null" json:"email"`
	Subject string    `gorm:"size:500" json:"subject"`
	Message string    `gorm:"type:text;not null" json:"message"`

	Status     string `gorm:"size:50;not null;default:'new'" json:"status"`
	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
