package apiv1

import (
	"expense-tools-backend/controllers"
	expensehandler "expense-tools-backend/lib/expense"
	expensereport "expense-tools-backend/lib/expense-report"
	"expense-tools-backend/middleware"
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	expenseapimodels "expense-tools-backend/models/api/expense"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type expenseReviewApiController struct {
	controllers.BaseAPIController
}

// @Summary Заявки на согласование
// @Tags Согласование заявок
// @Description Заявки в статусе PENDING, кроме собственных заявок согласующего
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]expenseapimodels.ClaimView}
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/review/pending [get]
func (c *expenseReviewApiController) pending(ctx *fiber.Ctx) error {
	list, err := expensereport.Instance.ListPendingForReview(ctx.UserContext(), middleware.GetActor(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявок на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Реестр заявок
// @Tags Согласование заявок
// @Description Все заявки с фильтром и постраничным выводом
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 expenseapimodels.ClaimFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]expenseapimodels.ClaimView}
// @Failure 400 {object} controllers.ValidationResponse
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/review/list [post]
func (c *expenseReviewApiController) list(ctx *fiber.Ctx) error {
	var payload expenseapimodels.ClaimFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, rowCount, err := expensereport.Instance.ListAll(ctx.UserContext(), middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения реестра заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Заявки команды
// @Tags Согласование заявок
// @Description Заявки прямых подчиненных текущего руководителя с фильтром и постраничным выводом
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 expenseapimodels.ClaimFilter	false	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]expenseapimodels.ClaimView}
// @Failure 400 {object} controllers.ValidationResponse
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/review/team [post]
func (c *expenseReviewApiController) team(ctx *fiber.Ctx) error {
	var payload expenseapimodels.ClaimFilter
	if len(ctx.Body()) > 0 {
		if err := c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}

	list, rowCount, err := expensereport.Instance.ListTeam(ctx.UserContext(), middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявок команды")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Выгрузка реестра заявок в Excel
// @Tags Согласование заявок
// @Description Выгрузка заявок по фильтру в xlsx, пагинация не применяется
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 expenseapimodels.ClaimFilter	true	"request body"
// @Success 200
// @Failure 400 {object} controllers.ValidationResponse
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/review/export [post]
func (c *expenseReviewApiController) export(ctx *fiber.Ctx) error {
	var payload expenseapimodels.ClaimFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	data, err := expensereport.Instance.ExportXLS(ctx.UserContext(), middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки заявок в Excel")
	}
	fileName := fmt.Sprintf("claims-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Согласовать заявку
// @Tags Согласование заявок
// @Description Перевод заявки из PENDING в APPROVED
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Param	body body	 expenseapimodels.DecisionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=expenseapimodels.ClaimView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/approve [put]
func (c *expenseReviewApiController) approve(ctx *fiber.Ctx) error {
	return c.decide(ctx, models.OutcomeApprove, "Ошибка согласования заявки")
}

// @Summary Отклонить заявку
// @Tags Согласование заявок
// @Description Перевод заявки из PENDING в REJECTED
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Param	body body	 expenseapimodels.DecisionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=expenseapimodels.ClaimView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/reject [put]
func (c *expenseReviewApiController) reject(ctx *fiber.Ctx) error {
	return c.decide(ctx, models.OutcomeReject, "Ошибка отклонения заявки")
}

func (c *expenseReviewApiController) decide(ctx *fiber.Ctx, outcome models.DecisionOutcome, errMessage string) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	var payload expenseapimodels.DecisionRequest
	if len(ctx.Body()) > 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}

	resp, err := expensehandler.Instance.Decide(ctx.UserContext(), middleware.GetActor(ctx), id, outcome, payload.Comment)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, errMessage)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
