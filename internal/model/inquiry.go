package model

import "time"

// Field limits shared by request validation and the store schema.
const (
	MaxNameLength    = 128
	MaxEmailLength   = 128
	MaxInquiryLength = 256
)

// Inquiry represents a message submitted via the contact form.
// ID and CreatedAt are generated by the store and never change.
type Inquiry struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Inquiry   string    `json:"inquiry" db:"inquiry"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
