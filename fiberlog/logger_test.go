package fiberlog

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&log.JSONFormatter{})

	app := fiber.New()
	app.Use(New(Config{
		Logger: logger,
		Tags:   []string{TagMethod, TagPath, TagStatus, TagBody},
	}))
	app.Post("/claims", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "fail"})
	})

	t.Run(`json body and warn level`, func(t *testing.T) {
		req := httptest.NewRequest("POST", "/claims", strings.NewReader(`{"amount":"10"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		_, err := app.Test(req)
		require.NoError(t, err)

		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "warning", entry["level"])
		require.Equal(t, "POST", entry[TagMethod])
		require.Equal(t, "/claims", entry[TagPath])
		require.Equal(t, float64(fiber.StatusBadRequest), entry[TagStatus])
		require.Equal(t, `{"amount":"10"}`, entry[TagBody])
	})

	t.Run(`binary body is skipped`, func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest("POST", "/claims", strings.NewReader("binary"))
		req.Header.Set(fiber.HeaderContentType, "image/png")
		_, err := app.Test(req)
		require.NoError(t, err)

		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.NotContains(t, entry, TagBody)
	})
}
