package authutils

import (
	"expense-tools-backend/config"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const refreshTokenType = "refresh"

func GetToken(userID, name string, role models.UserRole) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name": name,
		"sub":  userID,
		"role": string(role),
		"exp":  time.Now().Add(time.Second * time.Duration(config.Conf.Auth.JWTExpireInSec)).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func GetRefreshToken(userID, name string) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name": name,
		"sub":  userID,
		"typ":  refreshTokenType,
		"exp":  time.Now().Add(time.Second * time.Duration(config.Conf.Auth.JWTRefreshExpireInSec)).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

// ParseRefreshToken проверяет подпись и срок refresh токена, возвращает ид пользователя
func ParseRefreshToken(tokenString string) (userID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Conf.Auth.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperrors.Unauthenticated("refresh токен недействителен: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != refreshTokenType {
		return "", apperrors.Unauthenticated("получен токен неверного типа")
	}
	userID, err = claims.GetSubject()
	if err != nil || userID == "" {
		return "", apperrors.Unauthenticated("в токене нет пользователя")
	}
	return userID, nil
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

// CurrentActor пользователь и роль из access токена
func CurrentActor(claims jwt.MapClaims) (models.Actor, error) {
	if claims["typ"] == refreshTokenType {
		return models.Actor{}, apperrors.Unauthenticated("refresh токен нельзя использовать для доступа")
	}
	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return models.Actor{}, apperrors.Unauthenticated("в токене нет пользователя")
	}
	roleValue, _ := claims["role"].(string)
	role := models.UserRole(roleValue)
	if !role.IsValid() {
		return models.Actor{}, errors.Wrapf(apperrors.ErrUnauthenticated, "неизвестная роль %q", roleValue)
	}
	return models.Actor{ID: userID, Role: role}, nil
}
