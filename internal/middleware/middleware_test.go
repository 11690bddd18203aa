package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ := Subject(r.Context())
		_, _ = w.Write([]byte(sub))
	})
}

func TestRequireAuth(t *testing.T) {
	valid := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	noSubject := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1"})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
	}
	handler := RequireAuth(secret)(echoSubject())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			}
		})
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/files/1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DELETE", entry["method"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(5), entry["bytes"])
}
