package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// fail writes the {error} envelope for err. Server-side failures are logged
// with the handler's label.
func fail(c *fiber.Ctx, label string, err error, fallback string) error {
	kind := apperr.KindOf(err)
	status := kind.StatusCode()

	if status >= fiber.StatusInternalServerError {
		slog.Error(label, "error", err, "kind", kind.String(), "path", c.Path())
	} else {
		slog.Debug(label, "error", err, "kind", kind.String(), "path", c.Path())
	}

	return c.Status(status).JSON(fiber.Map{
		"error": apperr.Message(err, fallback),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// bindJSON decodes the request body regardless of Content-Type. Decode
// failures are Validation errors.
func bindJSON(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.New(apperr.Validation, "Request body is required")
	}
	if err := c.App().Config().JSONDecoder(body, v); err != nil {
		if apperr.IsValidation(err) {
			return err
		}
		return apperr.New(apperr.Validation, "Invalid request body")
	}
	return nil
}

// optionalString returns def only when the field was absent from the body.
// An explicit null or a non-string yields "", which no allow-list accepts.
func optionalString(raw json.RawMessage, def string) string {
	if raw == nil {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
