package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/auth"
	"github.com/stretchr/testify/assert"
)

type fakeValidator struct {
	claims *auth.Claims
	err    error
	tokens []string
}

func (f *fakeValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	f.tokens = append(f.tokens, token)
	return f.claims, f.err
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name            string
		authHeader      string
		validateErr     error
		claims          *auth.Claims
		expectedStatus  int
		expectedSubject string
	}{
		{
			name:            "valid token",
			authHeader:      "Bearer valid-token",
			claims:          &auth.Claims{Subject: "grader"},
			expectedStatus:  http.StatusOK,
			expectedSubject: "grader",
		},
		{
			name:            "lowercase scheme",
			authHeader:      "bearer valid-token",
			claims:          &auth.Claims{Subject: "grader"},
			expectedStatus:  http.StatusOK,
			expectedSubject: "grader",
		},
		{name: "missing auth header", expectedStatus: http.StatusUnauthorized},
		{name: "invalid auth format", authHeader: "InvalidFormat", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer invalid-token",
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected validation failure",
			authHeader:     "Bearer some-token",
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			validator := &fakeValidator{claims: tc.claims, err: tc.validateErr}
			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = shared.GetSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(validator).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedSubject, gotSubject)
		})
	}
}
