package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users, waste submissions, and
// collector requests.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER',
			qr_code TEXT NOT NULL DEFAULT '',
			total_points BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS waste_submissions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			collector_id BIGINT NOT NULL REFERENCES users(id),
			waste_type TEXT NOT NULL,
			quality_score INT NOT NULL,
			points_earned INT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS waste_submissions_user_idx ON waste_submissions (user_id, submitted_at DESC);`,
		`CREATE TABLE IF NOT EXISTS collector_requests (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, email, password_hash, role, qr_code)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, username, email, password_hash, role, qr_code, total_points, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.QRCode)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT id, username, email, password_hash, role, qr_code, total_points, created_at
	FROM users WHERE username = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `
	SELECT id, username, email, password_hash, role, qr_code, total_points, created_at
	FROM users WHERE id = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// SetQRCode stores the external display URL for a user's QR code.
func (s *Store) SetQRCode(ctx context.Context, id int64, qrURL string) error {
	return s.execOnUser(ctx, `UPDATE users SET qr_code = $2 WHERE id = $1;`, id, qrURL)
}

// AddPoints adjusts a user's running point total.
func (s *Store) AddPoints(ctx context.Context, id int64, delta int64) error {
	return s.execOnUser(ctx, `UPDATE users SET total_points = total_points + $2 WHERE id = $1;`, id, delta)
}

// SetRole updates a user's role.
func (s *Store) SetRole(ctx context.Context, id int64, role models.Role) error {
	return s.execOnUser(ctx, `UPDATE users SET role = $2 WHERE id = $1;`, id, role)
}

func (s *Store) execOnUser(ctx context.Context, query string, id int64, arg any) error {
	tag, err := s.pool.Exec(ctx, query, id, arg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Leaderboard returns the top non-admin users ordered by total points.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	const query = `
	SELECT id, username, email, password_hash, role, qr_code, total_points, created_at
	FROM users
	WHERE role <> 'ADMIN'
	ORDER BY total_points DESC, id ASC
	LIMIT $1;
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateSubmission inserts a waste submission row and credits the owner's
// point total in one transaction, so the ledger and the total cannot diverge.
func (s *Store) CreateSubmission(ctx context.Context, sub models.WasteSubmission) (models.WasteSubmission, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.WasteSubmission{}, err
	}
	defer tx.Rollback(ctx)

	const query = `
	INSERT INTO waste_submissions (user_id, collector_id, waste_type, quality_score, points_earned, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, user_id, collector_id, waste_type, quality_score, points_earned, submitted_at;
	`
	row := tx.QueryRow(ctx, query, sub.UserID, sub.CollectorID, sub.Type, sub.QualityScore, sub.PointsEarned, sub.SubmittedAt)
	created, err := scanSubmission(row)
	if err != nil {
		return models.WasteSubmission{}, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_points = total_points + $2 WHERE id = $1;`,
		created.UserID, created.PointsEarned,
	); err != nil {
		return models.WasteSubmission{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.WasteSubmission{}, err
	}
	return created, nil
}

// SubmissionsByUser returns a user's submissions, newest first.
func (s *Store) SubmissionsByUser(ctx context.Context, userID int64, limit int) ([]models.WasteSubmission, error) {
	const query = `
	SELECT id, user_id, collector_id, waste_type, quality_score, points_earned, submitted_at
	FROM waste_submissions
	WHERE user_id = $1
	ORDER BY submitted_at DESC, id DESC
	LIMIT $2;
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.WasteSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// StatsByUser aggregates a user's points and submission counts.
func (s *Store) StatsByUser(ctx context.Context, userID int64) (models.UserStats, error) {
	const query = `
	SELECT u.total_points,
		COUNT(w.id),
		COUNT(w.id) FILTER (WHERE w.points_earned > 0)
	FROM users u
	LEFT JOIN waste_submissions w ON w.user_id = u.id
	WHERE u.id = $1
	GROUP BY u.total_points;
	`
	var stats models.UserStats
	err := s.pool.QueryRow(ctx, query, userID).Scan(&stats.TotalPoints, &stats.TotalSubmissions, &stats.ScoringSubmissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserStats{}, storage.ErrNotFound
		}
		return models.UserStats{}, err
	}
	return stats, nil
}

// CreateRequest records a pending collector role request.
func (s *Store) CreateRequest(ctx context.Context, userID int64) (models.CollectorRequest, error) {
	const query = `
	INSERT INTO collector_requests (user_id, status)
	VALUES ($1, 'PENDING')
	RETURNING id, user_id, status, created_at;
	`
	var req models.CollectorRequest
	err := s.pool.QueryRow(ctx, query, userID).Scan(&req.ID, &req.UserID, &req.Status, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.CollectorRequest{}, storage.ErrNotFound
		}
		return models.CollectorRequest{}, err
	}
	return req, nil
}

// PendingRequests lists open collector requests with requester details.
func (s *Store) PendingRequests(ctx context.Context) ([]models.CollectorRequest, error) {
	const query = `
	SELECT r.id, r.user_id, u.username, u.email, r.status, r.created_at
	FROM collector_requests r
	JOIN users u ON u.id = r.user_id
	WHERE r.status = 'PENDING'
	ORDER BY r.created_at ASC;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.CollectorRequest
	for rows.Next() {
		var req models.CollectorRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.Username, &req.Email, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ApproveRequest marks a pending request approved and promotes the requester to
// COLLECTOR in one transaction.
func (s *Store) ApproveRequest(ctx context.Context, requestID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx,
		`UPDATE collector_requests SET status = 'APPROVED' WHERE id = $1 AND status = 'PENDING' RETURNING user_id;`,
		requestID,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1;`, userID, models.RoleCollector); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.QRCode, &user.TotalPoints, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanSubmission(row pgx.Row) (models.WasteSubmission, error) {
	var sub models.WasteSubmission
	err := row.Scan(&sub.ID, &sub.UserID, &sub.CollectorID, &sub.Type, &sub.QualityScore, &sub.PointsEarned, &sub.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WasteSubmission{}, storage.ErrNotFound
		}
		return models.WasteSubmission{}, err
	}
	return sub, nil
}
