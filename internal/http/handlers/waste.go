package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ecosort/ecosort-be/internal/http/respond"
	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/models/dto"
	"github.com/ecosort/ecosort-be/internal/points"
	"github.com/ecosort/ecosort-be/internal/qrcode"
	"github.com/ecosort/ecosort-be/internal/storage"
)

const (
	defaultHistoryLimit = 20
	defaultBoardLimit   = 10
	maxListLimit        = 100
)

// SubmissionNotifier receives every newly recorded submission. The live feed
// implements it; tests substitute their own.
type SubmissionNotifier interface {
	NotifySubmission(sub models.WasteSubmission)
}

// WasteHandler owns submission recording, history, stats, and the leaderboard.
type WasteHandler struct {
	users    storage.UserStore
	waste    storage.WasteStore
	notifier SubmissionNotifier
}

// NewWasteHandler constructs the handler. notifier may be nil.
func NewWasteHandler(users storage.UserStore, waste storage.WasteStore, notifier SubmissionNotifier) *WasteHandler {
	return &WasteHandler{users: users, waste: waste, notifier: notifier}
}

// Register attaches waste routes to the mux.
func (h *WasteHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("/api/waste", authn.RequireRole(h.handleSubmit, models.RoleCollector, models.RoleAdmin))
	mux.HandleFunc("/api/waste/history", authn.Require(h.handleHistory))
	mux.HandleFunc("/api/me/stats", authn.Require(h.handleStats))
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
}

// handleSubmit records a drop-off scanned by a collector. Points are computed
// once here and never recomputed.
func (h *WasteHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SubmitWasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	ownerID := req.UserID
	if req.Reference != "" {
		id, err := qrcode.ParseUserID(req.Reference)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "unreadable QR reference")
			return
		}
		ownerID = id
	}
	if ownerID <= 0 {
		respond.Error(w, http.StatusBadRequest, "a user reference or user_id is required")
		return
	}

	category, err := points.ParseCategory(req.WasteType)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "waste_type must be one of DRY, WET, HAZARDOUS, MIXED")
		return
	}
	if !points.ValidQuality(req.QualityScore) {
		respond.Error(w, http.StatusBadRequest, "quality_score must be between 1 and 10")
		return
	}

	owner, err := h.users.FindByID(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "no such user")
			return
		}
		log.Printf("find submission owner: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to record submission")
		return
	}

	p, _ := middleware.PrincipalFrom(r.Context())
	sub := models.WasteSubmission{
		UserID:       owner.ID,
		CollectorID:  p.UserID,
		Type:         category,
		QualityScore: req.QualityScore,
		PointsEarned: points.Compute(category, req.QualityScore),
		SubmittedAt:  time.Now(),
	}
	// the store credits the owner's point total in the same unit of work
	created, err := h.waste.CreateSubmission(r.Context(), sub)
	if err != nil {
		log.Printf("create submission: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to record submission")
		return
	}
	if h.notifier != nil {
		h.notifier.NotifySubmission(created)
	}
	respond.JSON(w, http.StatusCreated, "submission recorded", created)
}

func (h *WasteHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	limit := queryLimit(r, defaultHistoryLimit)
	subs, err := h.waste.SubmissionsByUser(r.Context(), p.UserID, limit)
	if err != nil {
		log.Printf("fetch history for user %d: %v", p.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", subs)
}

func (h *WasteHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	stats, err := h.waste.StatsByUser(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		log.Printf("fetch stats for user %d: %v", p.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", stats)
}

func (h *WasteHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := queryLimit(r, defaultBoardLimit)
	users, err := h.users.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("fetch leaderboard: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch leaderboard")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", users)
}

func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
