package handlers

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosort/ecosort-be/internal/models"
)

func TestFeedBroadcastsSubmissions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "alice", "p1", models.RoleUser)
	env.seedUser(t, "carl", "collects", models.RoleCollector)
	client := loginAs(t, env, "carl", "collects")

	dialer := websocket.Dialer{Jar: client.Jar}
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/feed"
	conn, resp, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	httpResp, _ := env.postJSON(t, client, "/api/waste", map[string]any{
		"user_id":       owner.ID,
		"waste_type":    "DRY",
		"quality_score": 10,
	}, nil)
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type       string                 `json:"type"`
		Submission models.WasteSubmission `json:"submission"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "submission", msg.Type)
	assert.Equal(t, owner.ID, msg.Submission.UserID)
	assert.Equal(t, 10, msg.Submission.PointsEarned)
}

func TestFeedConcurrentBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "carl", "collects", models.RoleCollector)
	client := loginAs(t, env, "carl", "collects")

	dialer := websocket.Dialer{Jar: client.Jar}
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/feed"
	conn, resp, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	const broadcasts = 16
	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			env.feed.NotifySubmission(models.WasteSubmission{ID: id, PointsEarned: 10})
		}(int64(i + 1))
	}
	wg.Wait()

	// every frame must arrive intact despite the overlapping writers
	seen := make(map[int64]bool)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < broadcasts; i++ {
		var msg struct {
			Type       string                 `json:"type"`
			Submission models.WasteSubmission `json:"submission"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "submission", msg.Type)
		seen[msg.Submission.ID] = true
	}
	assert.Len(t, seen, broadcasts)
}

func TestFeedRejectsAnonymousAndUserRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "p1", models.RoleUser)
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/feed"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client := loginAs(t, env, "alice", "p1")
	dialer := websocket.Dialer{Jar: client.Jar}
	_, resp, err = dialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
