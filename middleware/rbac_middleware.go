package middleware

import (
	"expense-tools-backend/db"
	"expense-tools-backend/lib/rbac"
	usersstore "expense-tools-backend/lib/users/store"
	apimodels "expense-tools-backend/models/api"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// RbacMiddleware роль и активность пользователя перечитываются из базы на каждый запрос,
// смена роли или блокировка действуют сразу, не дожидаясь истечения токена
func RbacMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenActor := GetActor(ctx)
		if tokenActor.IsEmpty() {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("пользователь не определен"))
		}

		user, err := usersstore.NewInstance(db.DB).GetByID(ctx.UserContext(), tokenActor.ID)
		if err != nil {
			log.WithError(err).WithField("user_id", tokenActor.ID).Error("ошибка получения пользователя")
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("сервис временно недоступен"))
		}
		if user == nil || !user.IsActive {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("пользователь не найден или заблокирован"))
		}
		actor := user.ToActor()
		ctx.Locals(actorLocalsKey, actor)

		handler, found := rbac.Instance.GetRuleFunc(ctx.Method(), ctx.Path())
		if !found {
			return ctx.Next()
		}

		if !handler(actor.ID, actor.Role, ctx.Path()) {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("RBAC_FORBIDDEN"))
		}

		return ctx.Next()
	}
}
