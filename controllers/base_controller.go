package controllers

import (
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/middleware"
	apimodels "expense-tools-backend/models/api"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := strings.TrimSpace(ctx.Params(key))
	if id == "" {
		return "", errors.Errorf("не указан параметр %v", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.WithField("method", ctx.Method()).
		WithField("path", ctx.Path()).
		WithField("user_id", middleware.GetUserID(ctx))
}

// ValidationResponse ответ 400 со списком полей, не прошедших проверку
type ValidationResponse struct {
	apimodels.Response
	Fields []apperrors.FieldError `json:"fields,omitempty"`
}

// SendError код ответа по виду ошибки, 500 пишется в лог с полным текстом
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, logMessage string) error {
	if vErr, ok := apperrors.AsValidation(err); ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(ValidationResponse{
			Response: apimodels.NewError(apperrors.ErrValidation.Error()),
			Fields:   vErr.Fields,
		})
	}
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError(apperrors.ErrUnauthenticated.Error()))
	case errors.Is(err, apperrors.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(apperrors.ErrForbidden.Error()))
	case errors.Is(err, apperrors.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(apperrors.ErrNotFound.Error()))
	case errors.Is(err, apperrors.ErrAlreadyDecided):
		return ctx.Status(fiber.StatusConflict).JSON(apimodels.NewError(apperrors.ErrAlreadyDecided.Error()))
	case errors.Is(err, apperrors.ErrPersistence):
		logger.WithError(err).Error(logMessage)
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError(logMessage))
	}
	logger.WithError(err).Error(logMessage)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(logMessage))
}
