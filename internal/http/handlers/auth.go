package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecosort/ecosort-be/internal/auth"
	"github.com/ecosort/ecosort-be/internal/http/respond"
	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/models/dto"
	"github.com/ecosort/ecosort-be/internal/storage"
)

// QRLinker supplies the external display URL for a user's QR code. It is
// injected so the external image service can be swapped for a local encoder
// without touching handler logic.
type QRLinker interface {
	UserDisplayURL(userID int64) string
}

// AuthHandler owns the browser form surface (action=signup|login with
// redirects) and the JSON register/login/logout/me endpoints.
type AuthHandler struct {
	store    storage.UserStore
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
	qr       QRLinker
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, sessions *auth.SessionManager, tokens *auth.TokenManager, qr QRLinker) *AuthHandler {
	return &AuthHandler{store: store, sessions: sessions, tokens: tokens, qr: qr}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("/auth", h.handleAction)
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/logout", h.handleLogout)
	mux.HandleFunc("/api/me", authn.Require(h.handleMe))
}

// handleAction serves the form-encoded surface: a single POST endpoint
// dispatched by the action parameter, answering with redirects.
func (h *AuthHandler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	switch r.FormValue("action") {
	case "signup":
		h.formSignup(w, r)
	case "login":
		h.formLogin(w, r)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (h *AuthHandler) formSignup(w http.ResponseWriter, r *http.Request) {
	_, err := h.signup(r, r.FormValue("username"), r.FormValue("password"), r.FormValue("email"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/login.html", http.StatusFound)
	case errors.Is(err, errValidation):
		http.Redirect(w, r, "/signup.html?error=invalid", http.StatusFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		http.Redirect(w, r, "/signup.html?error=taken", http.StatusFound)
	default:
		log.Printf("signup error: %v", err)
		http.Redirect(w, r, "/signup.html?error=internal", http.StatusFound)
	}
}

func (h *AuthHandler) formLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.login(r, r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, errInvalidCredentials) {
			log.Printf("login error: %v", err)
		}
		http.Redirect(w, r, "/login.html?error=invalid", http.StatusFound)
		return
	}
	if err := h.establishSession(w, r, user); err != nil {
		log.Printf("establish session: %v", err)
		http.Redirect(w, r, "/login.html?error=internal", http.StatusFound)
		return
	}
	http.Redirect(w, r, user.Role.DashboardPath(), http.StatusFound)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.signup(r, req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, errValidation):
			respond.Error(w, http.StatusBadRequest, "username, password, and email are required")
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			log.Printf("create user error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, "user created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.login(r, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("login error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if err := h.establishSession(w, r, user); err != nil {
		log.Printf("establish session: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to establish session")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		Token:    token,
		Redirect: user.Role.DashboardPath(),
		User:     user,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.Printf("destroy session: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	user, err := h.store.FindByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		log.Printf("fetch user error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

var (
	errValidation         = errors.New("missing required fields")
	errInvalidCredentials = errors.New("invalid credentials")
)

// signup creates a USER account, then builds and stores the QR display URL for
// the assigned ID.
func (h *AuthHandler) signup(r *http.Request, username, password, email string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, errValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	created, err := h.store.CreateUser(r.Context(), models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	if err != nil {
		return models.User{}, err
	}
	qrURL := h.qr.UserDisplayURL(created.ID)
	if err := h.store.SetQRCode(r.Context(), created.ID, qrURL); err != nil {
		return models.User{}, err
	}
	created.QRCode = qrURL
	return created, nil
}

// login verifies credentials and returns the matching user. Unknown usernames
// and bad passwords are indistinguishable to the caller.
func (h *AuthHandler) login(r *http.Request, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, errInvalidCredentials
	}
	user, err := h.store.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, errInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, user models.User) error {
	token, s, err := h.sessions.Create(r.Context(), user.ID, user.Role)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
