package middleware

import (
	apimodels "expense-tools-backend/models/api"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// WithBodyLimit отклоняет запрос до чтения тела, если Content-Length больше лимита
func WithBodyLimit(limit int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentLength := c.Get(fiber.HeaderContentLength)
		if contentLength != "" && contentLength != "0" {
			size, err := strconv.ParseInt(contentLength, 10, 64)
			if err == nil && size > limit {
				return c.Status(fiber.StatusRequestEntityTooLarge).
					JSON(apimodels.NewError(fmt.Sprintf("размер запроса превышает %d байт", limit)))
			}
		}
		return c.Next()
	}
}
