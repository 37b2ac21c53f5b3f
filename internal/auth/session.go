// Package auth covers both credential artifacts: server-side sessions for the
// browser surface and signed JWTs for API clients.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ecosort/ecosort-be/internal/models"
)

// SessionCookie is the cookie name carrying the raw session token.
const SessionCookie = "session_token"

var (
	// ErrSessionNotFound indicates no live session for the presented token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the session existed but is past its TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Session is the server-side record behind a session token.
type Session struct {
	ID        string      `json:"session_id"`
	UserID    int64       `json:"user_id"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SessionStore persists session records keyed by session ID.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Find(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionManager issues, validates, and destroys sessions. Only the hash of a
// token is stored, so a leaked store cannot be replayed as cookies.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

// NewSessionManager creates a manager over the given store with session TTL.
func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, ttl: ttl}
}

// Create establishes a session for the user and returns the raw token to be
// handed to the client.
func (m *SessionManager) Create(ctx context.Context, userID int64, role models.Role) (string, Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", Session{}, err
	}
	s := Session{
		ID:        hashToken(token),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", Session{}, err
	}
	return token, s, nil
}

// Validate resolves a raw token to its session, rejecting expired ones. Expired
// sessions are removed from the store as a side effect.
func (m *SessionManager) Validate(ctx context.Context, token string) (Session, error) {
	s, err := m.store.Find(ctx, hashToken(token))
	if err != nil {
		return Session{}, err
	}
	if !time.Now().Before(s.ExpiresAt) {
		_ = m.store.Delete(ctx, s.ID)
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

// Destroy removes the session behind a raw token.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, hashToken(token))
}

func generateToken() (string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return encoder.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
