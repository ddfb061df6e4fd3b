package auth_test

import (
	"testing"
	"time"

	"taskboard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	// Генерируем токен
	token, err := auth.GenerateToken(testSecret, "test-user-id", 24*time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Парсим токен
	parsedUserID, err := auth.ParseToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, "test-user-id", parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken(testSecret, "invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken("other-secret", "test-user-id", time.Hour)

	_, err := auth.ParseToken(testSecret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// Токен истек 1 час назад
	token, _ := auth.GenerateToken(testSecret, "test-user-id", -time.Hour)

	_, err := auth.ParseToken(testSecret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_SubjectClaim(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "user-from-sub",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	userID, err := auth.ParseToken(testSecret, token)

	assert.NoError(t, err)
	assert.Equal(t, "user-from-sub", userID)
}

func TestParseToken_MissingClaims(t *testing.T) {
	// Токен без ID пользователя
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.ParseToken(testSecret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))

	_, err := auth.ParseToken(testSecret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
