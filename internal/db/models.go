package db

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Session is a password-protected question box. The id is opaque and
// assigned exactly once at creation.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question belongs to exactly one session and starts out pending.
type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Status    Status    `json:"status" gorm:"default:pending;not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
