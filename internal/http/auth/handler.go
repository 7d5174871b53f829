package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
)

// Identities minted by the public token endpoints.
var (
	TestIdentity = auth.Identity{
		UserID:   "test-user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Roles:    []string{"user"},
	}

	ServiceIdentity = auth.Identity{
		UserID:   "dealcycle-user-id",
		Username: "dealcycle",
		Email:    "dealcycle@example.com",
		Roles:    []string{"user", "service"},
	}
)

// Handler serves the public token endpoints. Credentials are not checked
// against a user store; any non-empty username and password are accepted.
type Handler struct {
	tokens *auth.Tokens
}

func NewHandler(tokens *auth.Tokens) *Handler {
	return &Handler{tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Get("/test-token", h.testToken)
	r.Get("/service-token", h.serviceToken)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.issue(w, auth.Identity{
		UserID:   fmt.Sprintf("user-%d", time.Now().UnixMilli()),
		Username: req.Username,
		Email:    req.Username + "@example.com",
		Roles:    []string{"user"},
	}, false)
}

func (h *Handler) testToken(w http.ResponseWriter, _ *http.Request) {
	h.issue(w, TestIdentity, false)
}

func (h *Handler) serviceToken(w http.ResponseWriter, _ *http.Request) {
	h.issue(w, ServiceIdentity, true)
}

func (h *Handler) issue(w http.ResponseWriter, id auth.Identity, nonExpiring bool) {
	var (
		token string
		err   error
	)

	resp := tokenResponse{TokenType: "Bearer"}

	if nonExpiring {
		token, err = h.tokens.IssueNonExpiring(id)
	} else {
		token, err = h.tokens.Issue(id)
		resp.ExpiresIn = int64(h.tokens.TTL().Seconds())
	}

	if err != nil {
		slog.Error("failed to issue token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp.AccessToken = token

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
