package models

import (
	"time"

	"github.com/ecosort/ecosort-be/internal/points"
)

// WasteSubmission is an immutable record of a collected drop-off. PointsEarned
// is fixed at creation from (Type, QualityScore) and never recomputed.
type WasteSubmission struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	CollectorID  int64           `json:"collector_id"`
	Type         points.Category `json:"waste_type"`
	QualityScore int             `json:"quality_score"`
	PointsEarned int             `json:"points_earned"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// CollectorRequest tracks a user asking for the COLLECTOR role.
type CollectorRequest struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Username  string        `json:"username,omitempty"`
	Email     string        `json:"email,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// RequestStatus is the lifecycle of a collector request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
)

// UserStats aggregates a user's submission activity.
type UserStats struct {
	TotalPoints        int64 `json:"total_points"`
	TotalSubmissions   int   `json:"total_submissions"`
	ScoringSubmissions int   `json:"scoring_submissions"`
}
