package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestTokenValidator_ActorFromRequest(t *testing.T) {
	t.Run("should resolve the actor from a valid bearer token", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret}
		token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"name": "asha", "role": "coordinator"})
		request := httptest.NewRequest("GET", "/api/company-expenses", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		// when
		actor, err := validator.ActorFromRequest(request)

		// then
		require.NoError(t, err)
		assert.Equal(t, "asha", actor.Name)
		assert.Equal(t, RoleCoordinator, actor.Role)
	})

	t.Run("should reject a token signed with the wrong secret", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: []byte("other-secret")}
		token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"name": "asha", "role": "coordinator"})
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.Error(t, err)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret}
		token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"name": "asha",
			"role": "coordinator",
			"exp":  time.Now().Add(-time.Hour).Unix(),
		})
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.Error(t, err)
	})

	t.Run("should reject an unknown role claim", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret}
		token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"name": "asha", "role": "clerk"})
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.Error(t, err)
	})

	t.Run("should report missing credentials", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret}
		request := httptest.NewRequest("GET", "/", nil)

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("should reject a malformed authorization header", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret}
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.Error(t, err)
	})

	t.Run("should trust identity headers when enabled", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret, TrustHeaders: true}
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("X-User-Role", "principal")
		request.Header.Set("X-User-Name", "dr-rao")

		// when
		actor, err := validator.ActorFromRequest(request)

		// then
		require.NoError(t, err)
		assert.Equal(t, RolePrincipal, actor.Role)
		assert.Equal(t, "dr-rao", actor.Name)
	})

	t.Run("should ignore identity headers when trust is disabled", func(t *testing.T) {
		// given
		validator := TokenValidator{Secret: testSecret, TrustHeaders: false}
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("X-User-Role", "principal")

		// when
		_, err := validator.ActorFromRequest(request)

		// then
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "coordinator", want: RoleCoordinator},
		{input: "officer", want: RoleOfficer},
		{input: "sw-officer", want: RoleSWOfficer},
		{input: "principal", want: RolePrincipal},
		{input: "clerk", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRole(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseRole(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
