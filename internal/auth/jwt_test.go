package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/auth"
)

func newService(key, issuer, audience string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     issuer,
		Audience:   audience,
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "skywindow", "skywindow-app")

	token, expiresAt, err := svc.GenerateDeviceToken("dev_123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenTTL), expiresAt, time.Minute)

	claims, err := svc.ValidateDeviceToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dev_123", claims.DeviceID)
	assert.Equal(t, "dev_123", claims.Subject)
	assert.Equal(t, "skywindow", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "skywindow", "skywindow-app")

	sign := func(other *auth.JWTService) string {
		token, _, err := other.GenerateDeviceToken("dev_123")
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
		{"wrong signing key", sign(newService("another-secret-key", "skywindow", "skywindow-app"))},
		{"wrong issuer", sign(newService("test-secret-key-for-testing-only", "someone-else", "skywindow-app"))},
		{"wrong audience", sign(newService("test-secret-key-for-testing-only", "skywindow", "other-app"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateDeviceToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	issuer := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "k",
		Issuer:     "skywindow",
		Audience:   "skywindow-app",
		TTL:        time.Hour,
		Now:        func() time.Time { return issued },
	})
	token, _, err := issuer.GenerateDeviceToken("dev_123")
	require.NoError(t, err)

	_, err = newService("k", "skywindow", "skywindow-app").ValidateDeviceToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
	assert.Equal(t, time.Hour, issuer.TTL())
}
