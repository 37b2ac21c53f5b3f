package models

import "time"

// User captures application-facing fields for an account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	QRCode       string    `json:"qr_code"`
	TotalPoints  int64     `json:"total_points"`
	CreatedAt    time.Time `json:"created_at"`
}
