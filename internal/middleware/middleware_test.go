package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

const secret = "test-secret"

func token(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserID(r.Context())
		w.Write([]byte(id))
	})
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(secret, zerolog.Nop())(echoUser())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token(t, "user-1", time.Now().Add(time.Hour)), http.StatusOK, "user-1"},
		{"lowercase scheme", "bearer " + token(t, "user-2", time.Now().Add(time.Hour)), http.StatusOK, "user-2"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + token(t, "user-1", time.Now().Add(-time.Hour)), http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, rr.Body.String())
			}
		})
	}
}

func TestUserID_Missing(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)
}

func TestLoggerMiddleware_PassesStatusThrough(t *testing.T) {
	h := LoggerMiddleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x?y=1", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestPubSubAuth(t *testing.T) {
	validator := func(_ context.Context, tok, audience string) (*idtoken.Payload, error) {
		if tok != "good" && tok != "stranger" {
			return nil, errors.New("bad token")
		}
		email := "push@proj.iam.gserviceaccount.com"
		if tok == "stranger" {
			email = "other@proj.iam.gserviceaccount.com"
		}
		return &idtoken.Payload{Audience: audience, Claims: map[string]interface{}{"email": email}}, nil
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := pubSubAuth(false, "https://api/v1/dlq", "push@proj.iam.gserviceaccount.com", validator, zerolog.Nop())(ok)

	cases := []struct {
		header string
		status int
	}{
		{"Bearer good", http.StatusNoContent},
		{"Bearer stranger", http.StatusForbidden},
		{"Bearer bad", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
		{"Token good", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/dlq", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, tc.status, rr.Code, tc.header)
	}

	local := pubSubAuth(true, "", "", validator, zerolog.Nop())(ok)
	rr := httptest.NewRecorder()
	local.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/dlq", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	misconfigured := pubSubAuth(false, "", "", validator, zerolog.Nop())(ok)
	rr = httptest.NewRecorder()
	misconfigured.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/dlq", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
