package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/qrcode"
)

// loginAs logs a seeded user in over the JSON surface and returns a client
// carrying the session cookie.
func loginAs(t *testing.T, env *testEnv, username, password string) *http.Client {
	t.Helper()
	client := env.client(t)
	resp, _ := env.postJSON(t, client, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return client
}

func TestSubmitWasteByReference(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "alice", "p1", models.RoleUser)
	env.seedUser(t, "carl", "collects", models.RoleCollector)
	client := loginAs(t, env, "carl", "collects")

	resp, body := env.postJSON(t, client, "/api/waste", map[string]any{
		"reference":     qrcode.BuildReference(owner.ID),
		"waste_type":    "HAZARDOUS",
		"quality_score": 7,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sub models.WasteSubmission
	require.NoError(t, json.Unmarshal(body.Data, &sub))
	assert.Equal(t, owner.ID, sub.UserID)
	assert.Equal(t, 10, sub.PointsEarned) // 15*7/10 truncates
	assert.False(t, sub.SubmittedAt.IsZero())

	updated, err := env.store.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.TotalPoints)
}

func TestSubmitWasteValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "alice", "p1", models.RoleUser)
	env.seedUser(t, "carl", "collects", models.RoleCollector)
	client := loginAs(t, env, "carl", "collects")

	tests := []struct {
		name    string
		payload map[string]any
		status  int
	}{
		{"bad reference", map[string]any{"reference": "garbage", "waste_type": "DRY", "quality_score": 5}, http.StatusBadRequest},
		{"unknown category", map[string]any{"user_id": owner.ID, "waste_type": "PLASMA", "quality_score": 5}, http.StatusBadRequest},
		{"quality too low", map[string]any{"user_id": owner.ID, "waste_type": "DRY", "quality_score": 0}, http.StatusBadRequest},
		{"quality too high", map[string]any{"user_id": owner.ID, "waste_type": "DRY", "quality_score": 11}, http.StatusBadRequest},
		{"no owner", map[string]any{"waste_type": "DRY", "quality_score": 5}, http.StatusBadRequest},
		{"unknown owner", map[string]any{"user_id": 9999, "waste_type": "DRY", "quality_score": 5}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.postJSON(t, client, "/api/waste", tt.payload, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestSubmitWasteRequiresCollectorRole(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "alice", "p1", models.RoleUser)
	client := loginAs(t, env, "alice", "p1")

	resp, _ := env.postJSON(t, client, "/api/waste", map[string]any{
		"user_id":       owner.ID,
		"waste_type":    "DRY",
		"quality_score": 5,
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.postJSON(t, env.client(t), "/api/waste", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHistoryAndStats(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "alice", "p1", models.RoleUser)
	env.seedUser(t, "carl", "collects", models.RoleCollector)
	collector := loginAs(t, env, "carl", "collects")

	for _, p := range []map[string]any{
		{"user_id": owner.ID, "waste_type": "DRY", "quality_score": 10},   // 10 points
		{"user_id": owner.ID, "waste_type": "MIXED", "quality_score": 1}, // 0 points
		{"user_id": owner.ID, "waste_type": "WET", "quality_score": 5},   // 4 points
	} {
		resp, _ := env.postJSON(t, collector, "/api/waste", p, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	client := loginAs(t, env, "alice", "p1")

	resp, body := env.getJSON(t, client, "/api/waste/history?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.WasteSubmission
	require.NoError(t, json.Unmarshal(body.Data, &history))
	assert.Len(t, history, 2)

	resp, body = env.getJSON(t, client, "/api/me/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.UserStats
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, int64(14), stats.TotalPoints)
	assert.Equal(t, 3, stats.TotalSubmissions)
	assert.Equal(t, 2, stats.ScoringSubmissions)
}

func TestLeaderboardIsPublicAndOrdered(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", "adminpass", models.RoleAdmin)
	low := env.seedUser(t, "low", "p1", models.RoleUser)
	high := env.seedUser(t, "high", "p1", models.RoleUser)
	require.NoError(t, env.store.AddPoints(context.Background(), low.ID, 10))
	require.NoError(t, env.store.AddPoints(context.Background(), high.ID, 120))

	resp, body := env.getJSON(t, env.client(t), "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var board []models.User
	require.NoError(t, json.Unmarshal(body.Data, &board))
	require.Len(t, board, 2, "admins stay off the board")
	assert.Equal(t, "high", board[0].Username)
	assert.Equal(t, "low", board[1].Username)
}
