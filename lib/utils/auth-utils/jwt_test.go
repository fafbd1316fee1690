package authutils

import (
	"expense-tools-backend/config"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/models"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func initTestConfig() {
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 60
	config.Conf.Auth.JWTRefreshExpireInSec = 120
}

func parse(t *testing.T, tokenString string) jwt.MapClaims {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	return token.Claims.(jwt.MapClaims)
}

func TestTokens(t *testing.T) {
	initTestConfig()

	t.Run(`access token gives actor`, func(t *testing.T) {
		tokenString, err := GetToken("user-1", "Анна", models.ManagerRole)
		require.NoError(t, err)
		actor, err := CurrentActor(parse(t, tokenString))
		require.NoError(t, err)
		require.Equal(t, models.Actor{ID: "user-1", Role: models.ManagerRole}, actor)
	})

	t.Run(`refresh token is not access token`, func(t *testing.T) {
		tokenString, err := GetRefreshToken("user-1", "Анна")
		require.NoError(t, err)
		_, err = CurrentActor(parse(t, tokenString))
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))

		userID, err := ParseRefreshToken(tokenString)
		require.NoError(t, err)
		require.Equal(t, "user-1", userID)
	})

	t.Run(`access token is not refresh token`, func(t *testing.T) {
		tokenString, err := GetToken("user-1", "Анна", models.EmployeeRole)
		require.NoError(t, err)
		_, err = ParseRefreshToken(tokenString)
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	})

	t.Run(`bad claims`, func(t *testing.T) {
		_, err := CurrentActor(jwt.MapClaims{})
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
		_, err = CurrentActor(jwt.MapClaims{"sub": "user-1", "role": "ROOT"})
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
		_, err = ParseRefreshToken("garbage")
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	})

	t.Run(`password hash`, func(t *testing.T) {
		hash, err := HashPassword("secret")
		require.NoError(t, err)
		require.True(t, CheckPassword(hash, "secret"))
		require.False(t, CheckPassword(hash, "other"))
		require.False(t, CheckPassword("", "secret"))
	})
}
