package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosort/ecosort-be/internal/auth"
	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/qrcode"
	"github.com/ecosort/ecosort-be/internal/storage/postgres"
)

// TestAuthIntegration exercises the register/login endpoints against a live
// Postgres instance.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	require.NoError(t, err, "init store")
	defer store.Close()

	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), time.Hour)
	tokens := auth.NewTokenManager("integration-secret", "ecosort-test", time.Hour)
	authn := middleware.NewAuthenticator(sessions, tokens)

	mux := http.NewServeMux()
	NewAuthHandler(store, sessions, tokens, qrcode.New("")).Register(mux, authn)

	ts := httptest.NewServer(mux)
	defer ts.Close()
	env := &testEnv{ts: ts}
	client := env.client(t)

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	resp, body := env.postJSON(t, client, "/api/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.User
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, username, created.Username)
	assert.Contains(t, created.QRCode, fmt.Sprintf("USER_ID:%d", created.ID))

	resp, body = env.postJSON(t, client, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	assert.Equal(t, created.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)

	t.Logf("created user %s (id=%d) and successfully logged in via /api/login", username, created.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
