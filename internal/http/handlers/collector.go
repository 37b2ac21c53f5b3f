package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ecosort/ecosort-be/internal/http/respond"
	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/models"
	"github.com/ecosort/ecosort-be/internal/models/dto"
	"github.com/ecosort/ecosort-be/internal/storage"
)

// CollectorHandler owns the collector role request workflow.
type CollectorHandler struct {
	requests storage.CollectorRequestStore
}

// NewCollectorHandler constructs the handler.
func NewCollectorHandler(requests storage.CollectorRequestStore) *CollectorHandler {
	return &CollectorHandler{requests: requests}
}

// Register attaches collector request routes to the mux.
func (h *CollectorHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("/api/collector-requests", authn.Require(h.handleRequests))
	mux.HandleFunc("/api/collector-requests/approve", authn.RequireRole(h.handleApprove, models.RoleAdmin))
}

// handleRequests serves both sides of the workflow on one path: a USER posts
// to ask for the role, an ADMIN gets the pending queue.
func (h *CollectorHandler) handleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.listPending(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CollectorHandler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	if p.Role != models.RoleUser {
		respond.Error(w, http.StatusConflict, "only regular users can request the collector role")
		return
	}
	req, err := h.requests.CreateRequest(r.Context(), p.UserID)
	if err != nil {
		log.Printf("create collector request for user %d: %v", p.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to create request")
		return
	}
	respond.JSON(w, http.StatusCreated, "request submitted", req)
}

func (h *CollectorHandler) listPending(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	if p.Role != models.RoleAdmin {
		respond.Error(w, http.StatusForbidden, "insufficient role")
		return
	}
	pending, err := h.requests.PendingRequests(r.Context())
	if err != nil {
		log.Printf("list collector requests: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pending)
}

func (h *CollectorHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.ApproveCollectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.requests.ApproveRequest(r.Context(), req.RequestID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "no such pending request")
			return
		}
		log.Printf("approve collector request %d: %v", req.RequestID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to approve request")
		return
	}
	respond.JSON(w, http.StatusOK, "request approved", nil)
}
