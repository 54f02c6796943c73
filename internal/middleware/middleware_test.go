package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAcceptsValidToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		PropertyID: "prop-1",
		Scopes:     []string{"tickets:read"},
	}

	var gotUser, gotProperty string
	var gotScoped bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotProperty = GetPropertyID(r.Context())
		gotScoped = HasScope(r.Context(), "tickets:read")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/INS-000001", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "prop-1", gotProperty)
	assert.True(t, gotScoped)
}

func TestAuthRejections(t *testing.T) {
	handler := Auth(testSecret)(okHandler())

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})},
		{"expired", "Bearer " + signToken(t, testSecret, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireScope(t *testing.T) {
	inner := RequireScope("tickets:write")(okHandler())
	handler := Auth(testSecret)(inner)

	token := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Scopes:           []string{"tickets:read"},
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookAuth(t *testing.T) {
	handler := WebhookAuth("hook-secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/webhook/messages", nil)
	req.Header.Set("X-Webhook-Token", "hook-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, token := range []string{"", "wrong"} {
		req = httptest.NewRequest(http.MethodPost, "/webhook/messages", nil)
		if token != "" {
			req.Header.Set("X-Webhook-Token", token)
		}
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("no hay agua en la 1205"))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText(strings.Repeat("a", 8193)))
	assert.Error(t, ValidateMessageText("bad \xff utf8"))
}

func TestValidateChatID(t *testing.T) {
	assert.NoError(t, ValidateChatID("5215551234567@g.us"))
	assert.NoError(t, ValidateChatID("chat_1:primary"))
	assert.Error(t, ValidateChatID("ab"))
	assert.Error(t, ValidateChatID("has spaces"))
	assert.Error(t, ValidateChatID(strings.Repeat("x", 129)))
}

func TestValidateFolio(t *testing.T) {
	assert.NoError(t, ValidateFolio("INS-000001"))
	assert.NoError(t, ValidateFolio("MX-1234"))
	assert.Error(t, ValidateFolio("ins-000001"))
	assert.Error(t, ValidateFolio("INS000001"))
	assert.Error(t, ValidateFolio("TOOLONG-123456789"))
}
