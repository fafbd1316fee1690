package fiberlog

import (
	authutils "expense-tools-backend/lib/utils/auth-utils"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid       = "pid"
	TagLatency   = "latency"
	TagStatus    = "status"
	TagMethod    = "method"
	TagPath      = "path"
	TagURL       = "url"
	TagIP        = "ip"
	TagUserAgent = "user_agent"
	TagBody      = "body"
	TagResBody   = "res_body"
	TagUserID    = "user_id"
	RequestID    = "request_id"
)

// тела больше лимита и не json в лог не пишутся
const maxLoggedBody = 4096

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

type FuncTag func(c *fiber.Ctx, d *data) interface{}

func getFuncTagMap(cfg Config) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid: func(_ *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagLatency: func(_ *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagStatus: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Response().StatusCode()
		},
		TagMethod: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Path()
		},
		TagURL: func(c *fiber.Ctx, _ *data) interface{} {
			return c.OriginalURL()
		},
		TagIP: func(c *fiber.Ctx, _ *data) interface{} {
			return c.IP()
		},
		TagUserAgent: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Get(fiber.HeaderUserAgent)
		},
		TagBody: func(c *fiber.Ctx, _ *data) interface{} {
			return loggedBody(string(c.Request().Header.ContentType()), c.Body())
		},
		TagResBody: func(c *fiber.Ctx, _ *data) interface{} {
			return loggedBody(string(c.Response().Header.ContentType()), c.Response().Body())
		},
		TagUserID: func(c *fiber.Ctx, _ *data) interface{} {
			sub, _ := authutils.GetClaims(c)["sub"].(string)
			return sub
		},
		RequestID: func(c *fiber.Ctx, _ *data) interface{} {
			return c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func loggedBody(contentType string, body []byte) string {
	if len(body) == 0 || len(body) > maxLoggedBody {
		return ""
	}
	if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		return ""
	}
	return string(body)
}
