package middleware

import (
	authutils "expense-tools-backend/lib/utils/auth-utils"
	"expense-tools-backend/models"

	"github.com/gofiber/fiber/v2"
)

const actorLocalsKey = "actor"

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// GetActor пользователь запроса, пустой Actor для неавторизованного запроса.
// После RbacMiddleware роль берется из базы, до него из токена
func GetActor(ctx *fiber.Ctx) models.Actor {
	if actor, ok := ctx.Locals(actorLocalsKey).(models.Actor); ok {
		return actor
	}
	actor, err := authutils.CurrentActor(authutils.GetClaims(ctx))
	if err != nil {
		return models.Actor{}
	}
	return actor
}
