package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire/internal/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-unit-tests",
		ExpirationHours: 1,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "hr")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
	assert.Equal(t, "hr", claims.GetRole())
}

func TestValidateTokenEmpty(t *testing.T) {
	svc := newTestJWTService()
	_, err := svc.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateTokenMalformed(t *testing.T) {
	svc := newTestJWTService()
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateToken(uuid.New(), "applicant")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{
		Secret:          "a-different-secret",
		ExpirationHours: 1,
	})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService()

	claims := &Claims{
		UserID: uuid.New(),
		Role:   "hr",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateTokenWrongAlgorithm(t *testing.T) {
	svc := newTestJWTService()

	// alg=none tokens must never validate
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.New()})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
