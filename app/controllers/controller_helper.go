package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/confcenter/confcenter/internal/pkg/apperrors"
)

// respondError maps a typed service error to its fixed HTTP status and
// JSON envelope. Untyped errors are logged and become a bare 500.
func respondError(c *fiber.Ctx, err error) error {
	var ae *apperrors.Error
	if !errors.As(err, &ae) {
		log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Internal server error",
		})
	}

	status, code := fiber.StatusInternalServerError, "internal_server_error"
	switch ae.Kind {
	case apperrors.KindConflict:
		status, code = fiber.StatusConflict, "conflict"
	case apperrors.KindNotFound:
		status, code = fiber.StatusNotFound, "not_found"
	case apperrors.KindUnauthorized:
		status, code = fiber.StatusUnauthorized, "unauthorized"
	case apperrors.KindValidation:
		status, code = fiber.StatusUnprocessableEntity, "unprocessable_entity"
	case apperrors.KindUpstream:
		status, code = fiber.StatusBadGateway, "bad_gateway"
	case apperrors.KindConnectivity:
		status, code = fiber.StatusServiceUnavailable, "service_unavailable"
	}

	if ae.Err != nil {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), ae)
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": ae.Message,
	})
}
