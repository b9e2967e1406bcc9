package controller

import (
	"strconv"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/apperror"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// PlaceCall dials a lead through the voice provider on behalf of the
// calling agent.
func PlaceCall(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	leadID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lead ID",
		})
	}

	call, err := telephonyService.PlaceCall(c.Context(), actor, uint(leadID))
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Call initiated",
		"call":    call,
	})
}

// GetLeadCalls lists call attempts against one lead.
func GetLeadCalls(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var calls []model.Call
	if err := database.GetDB().
		Where("lead_id = ? AND organization_id = ?", leadID, claims.OrganizationID).
		Order("created_at desc").
		Find(&calls).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch calls",
		})
	}

	return c.JSON(calls)
}

// HandleTelephonyWebhook relays the voice provider's asynchronous
// status callback. The provider posts form fields keyed by the opaque
// call SID; unknown SIDs are acknowledged so the provider stops
// retrying.
func HandleTelephonyWebhook(c *fiber.Ctx) error {
	callSID := c.FormValue("CallSid")
	status := c.FormValue("CallStatus")
	if callSID == "" || status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing CallSid or CallStatus",
		})
	}

	duration := 0
	if raw := c.FormValue("CallDuration"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			duration = v
		}
	}

	if _, err := telephonyService.CompleteCall(c.Context(), callSID, status, duration); err != nil {
		if apperror.StatusCode(err) == fiber.StatusNotFound {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process callback",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
