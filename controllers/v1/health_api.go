package apiv1

import (
	"context"
	"expense-tools-backend/controllers"
	"expense-tools-backend/db"
	apimodels "expense-tools-backend/models/api"
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthApiController struct {
	controllers.BaseAPIController
}

func InitHealthApiRouters(app *fiber.App) {
	controller := healthApiController{}
	app.Get("health", controller.health)
}

// @Summary Проверка доступности сервиса
// @Tags Служебные
// @Description Проверка доступности сервиса и БД
// @Success 200 {object} apimodels.Response
// @Failure 503 {object} apimodels.Response
// @router /api/v1/health [get]
func (c *healthApiController) health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 3*time.Second)
	defer cancel()
	if err := db.PingDB(pingCtx); err != nil {
		c.GetLogger(ctx).WithError(err).Error("БД недоступна")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("БД недоступна"))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
