// Package memory implements storage.Store over process-local maps. It backs
// handler unit tests and single-node development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps all records in memory behind a single mutex.
type Store struct {
	mu          sync.Mutex
	nextUser    int64
	nextSub     int64
	nextReq     int64
	users       map[int64]models.User
	submissions map[int64]models.WasteSubmission
	requests    map[int64]models.CollectorRequest
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]models.User),
		submissions: make(map[int64]models.WasteSubmission),
		requests:    make(map[int64]models.CollectorRequest),
	}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) SetQRCode(_ context.Context, id int64, qrURL string) error {
	return s.updateUser(id, func(u *models.User) { u.QRCode = qrURL })
}

func (s *Store) AddPoints(_ context.Context, id int64, delta int64) error {
	return s.updateUser(id, func(u *models.User) { u.TotalPoints += delta })
}

func (s *Store) SetRole(_ context.Context, id int64, role models.Role) error {
	return s.updateUser(id, func(u *models.User) { u.Role = role })
}

func (s *Store) updateUser(id int64, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	apply(&u)
	s.users[id] = u
	return nil
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, u := range s.users {
		if u.Role != models.RoleAdmin {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalPoints != users[j].TotalPoints {
			return users[i].TotalPoints > users[j].TotalPoints
		}
		return users[i].ID < users[j].ID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// CreateSubmission stores the submission and credits the owner's point total
// under the same lock, mirroring the postgres transaction.
func (s *Store) CreateSubmission(_ context.Context, sub models.WasteSubmission) (models.WasteSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.users[sub.UserID]
	if !ok {
		return models.WasteSubmission{}, storage.ErrNotFound
	}
	s.nextSub++
	sub.ID = s.nextSub
	s.submissions[sub.ID] = sub
	owner.TotalPoints += int64(sub.PointsEarned)
	s.users[sub.UserID] = owner
	return sub, nil
}

func (s *Store) SubmissionsByUser(_ context.Context, userID int64, limit int) ([]models.WasteSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []models.WasteSubmission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
		}
		return subs[i].ID > subs[j].ID
	})
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (s *Store) StatsByUser(_ context.Context, userID int64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.UserStats{}, storage.ErrNotFound
	}
	stats := models.UserStats{TotalPoints: u.TotalPoints}
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			stats.TotalSubmissions++
			if sub.PointsEarned > 0 {
				stats.ScoringSubmissions++
			}
		}
	}
	return stats, nil
}

func (s *Store) CreateRequest(_ context.Context, userID int64) (models.CollectorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return models.CollectorRequest{}, storage.ErrNotFound
	}
	s.nextReq++
	req := models.CollectorRequest{
		ID:        s.nextReq,
		UserID:    userID,
		Status:    models.RequestPending,
		CreatedAt: time.Now(),
	}
	s.requests[req.ID] = req
	return req, nil
}

func (s *Store) PendingRequests(_ context.Context) ([]models.CollectorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reqs []models.CollectorRequest
	for _, req := range s.requests {
		if req.Status != models.RequestPending {
			continue
		}
		if u, ok := s.users[req.UserID]; ok {
			req.Username = u.Username
			req.Email = u.Email
		}
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (s *Store) ApproveRequest(_ context.Context, requestID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return storage.ErrNotFound
	}
	req.Status = models.RequestApproved
	s.requests[requestID] = req

	u, ok := s.users[req.UserID]
	if !ok {
		return storage.ErrNotFound
	}
	u.Role = models.RoleCollector
	s.users[req.UserID] = u
	return nil
}
