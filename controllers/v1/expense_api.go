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
	"io"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const receiptFormKey = "receipt"

type expenseApiController struct {
	controllers.BaseAPIController
}

func InitExpenseApiRouters(app *fiber.App) {
	controller := expenseApiController{}
	reviewController := expenseReviewApiController{}
	app.Route("expense", func(router fiber.Router) {
		router.Use(middleware.AuthorizationRequired())
		router.Use(middleware.RbacMiddleware())
		router.Post("", controller.submit)
		router.Get("my", controller.listMine)
		router.Get("summary", controller.summary)
		router.Route("review", func(reviewRoute fiber.Router) {
			reviewRoute.Get("pending", reviewController.pending)
			reviewRoute.Post("list", reviewController.list)
			reviewRoute.Post("team", reviewController.team)
			reviewRoute.Post("export", reviewController.export)
		})
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Get("history", controller.history)
			idRoute.Post("receipt", controller.uploadReceipt)
			idRoute.Get("receipt", controller.getReceipt)
			idRoute.Get("pdf", controller.pdf)
			idRoute.Put("approve", reviewController.approve)
			idRoute.Put("reject", reviewController.reject)
		})
	})
}

// @Summary Подача заявки
// @Tags Заявки на возмещение
// @Description Подача заявки на возмещение расходов, заявка создается в статусе PENDING
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 expenseapimodels.ClaimForm	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} controllers.ValidationResponse
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense [post]
func (c *expenseApiController) submit(ctx *fiber.Ctx) error {
	var payload expenseapimodels.ClaimForm
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	id, err := expensehandler.Instance.Submit(ctx.UserContext(), middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка подачи заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Мои заявки
// @Tags Заявки на возмещение
// @Description Заявки текущего пользователя, новые сверху
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]expenseapimodels.ClaimView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/my [get]
func (c *expenseApiController) listMine(ctx *fiber.Ctx) error {
	list, err := expensereport.Instance.ListMine(ctx.UserContext(), middleware.GetActor(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Сводка по моим заявкам
// @Tags Заявки на возмещение
// @Description Количество заявок текущего пользователя по статусам
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=expenseapimodels.Summary}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/summary [get]
func (c *expenseApiController) summary(ctx *fiber.Ctx) error {
	resp, err := expensereport.Instance.Summary(ctx.UserContext(), middleware.GetActor(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сводки по заявкам")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Получение заявки по ИД
// @Tags Заявки на возмещение
// @Description Получение заявки по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Success 200 {object} apimodels.Response{data=expenseapimodels.ClaimView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id} [get]
func (c *expenseApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	resp, err := expensehandler.Instance.Get(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary История заявки
// @Tags Заявки на возмещение
// @Description История действий по заявке в порядке выполнения
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Success 200 {object} apimodels.Response{data=[]expenseapimodels.HistoryView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/history [get]
func (c *expenseApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	resp, err := expensereport.Instance.History(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Загрузить чек
// @Tags Заявки на возмещение
// @Description Загрузить чек к заявке в статусе PENDING, загружает только автор заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Param   receipt		formData	file 	true 	"file to upload"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/receipt [post]
func (c *expenseApiController) uploadReceipt(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	file, err := ctx.FormFile(receiptFormKey)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("файл чека не передан"))
	}
	buffer, err := file.Open()
	if err != nil {
		c.GetLogger(ctx).WithError(err).Error("Ошибка при получении файла чека")
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	defer buffer.Close()
	fileBody, err := io.ReadAll(buffer)
	if err != nil {
		c.GetLogger(ctx).WithError(err).Error("Ошибка при загрузке файла чека")
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = expensehandler.Instance.AttachReceipt(ctx.UserContext(), middleware.GetActor(ctx), id, models.File{
		FileName:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Body:        fileBody,
	})
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка загрузки чека")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Скачать чек
// @Tags Заявки на возмещение
// @Description Скачать чек заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/receipt [get]
func (c *expenseApiController) getReceipt(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	file, err := expensehandler.Instance.GetReceipt(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения чека")
	}
	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, attachment(file.FileName))
	return ctx.Send(file.Body)
}

// @Summary Заявка в PDF
// @Tags Заявки на возмещение
// @Description Карточка заявки с историей и чеком в PDF
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "ID заявки"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/expense/{id}/pdf [get]
func (c *expenseApiController) pdf(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	body, err := expensereport.Instance.ExportClaimPDF(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования PDF по заявке")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, attachment(fmt.Sprintf("claim-%v.pdf", id)))
	return ctx.Send(body)
}

func attachment(fileName string) string {
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(fileName))
}
