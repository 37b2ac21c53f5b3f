package storage

import (
	"context"
	"errors"

	"github.com/ecosort/ecosort-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	SetQRCode(ctx context.Context, id int64, qrURL string) error
	AddPoints(ctx context.Context, id int64, delta int64) error
	SetRole(ctx context.Context, id int64, role models.Role) error
	Leaderboard(ctx context.Context, limit int) ([]models.User, error)
}

// WasteStore persists waste submissions.
type WasteStore interface {
	// CreateSubmission records the submission and credits PointsEarned to the
	// owner's total in the same unit of work.
	CreateSubmission(ctx context.Context, sub models.WasteSubmission) (models.WasteSubmission, error)
	SubmissionsByUser(ctx context.Context, userID int64, limit int) ([]models.WasteSubmission, error)
	StatsByUser(ctx context.Context, userID int64) (models.UserStats, error)
}

// CollectorRequestStore persists collector role requests.
type CollectorRequestStore interface {
	CreateRequest(ctx context.Context, userID int64) (models.CollectorRequest, error)
	PendingRequests(ctx context.Context) ([]models.CollectorRequest, error)
	ApproveRequest(ctx context.Context, requestID int64) error
}

// Store is the full persistence surface wired into the server.
type Store interface {
	UserStore
	WasteStore
	CollectorRequestStore
}
