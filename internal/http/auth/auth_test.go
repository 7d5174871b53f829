package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
	authHandler "github.com/MrJamesThe3rd/dealdesk/internal/http/auth"
)

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newRouter(tokens *auth.Tokens) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", authHandler.NewHandler(tokens).Routes)

	r.With(authHandler.Authenticate(tokens)).Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		_ = json.NewEncoder(w).Encode(id)
	})

	return r
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) tokenBody {
	t.Helper()

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body tokenBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func TestLogin(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	h := newRouter(tokens)

	body := decodeToken(t, do(t, h, http.MethodPost, "/auth/login", `{"username":"ann","password":"pw"}`, ""))
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(3600), body.ExpiresIn)

	id, err := tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann", id.Username)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.True(t, strings.HasPrefix(id.UserID, "user-"))
}

func TestLogin_MissingCredentials(t *testing.T) {
	h := newRouter(auth.NewTokens("secret", time.Hour))

	rec := do(t, h, http.MethodPost, "/auth/login", `{"username":"ann"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", `{`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceToken(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	h := newRouter(tokens)

	body := decodeToken(t, do(t, h, http.MethodGet, "/auth/service-token", "", ""))
	assert.Zero(t, body.ExpiresIn)

	id, err := tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, authHandler.ServiceIdentity, id)
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	h := newRouter(tokens)

	testToken := decodeToken(t, do(t, h, http.MethodGet, "/auth/test-token", "", "")).AccessToken

	t.Run("Valid", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/whoami", "", testToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var id auth.Identity
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
		assert.Equal(t, authHandler.TestIdentity, id)
	})

	t.Run("Missing", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/whoami", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("Invalid", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/whoami", "", "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic "+testToken)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
