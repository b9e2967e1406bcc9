package controller

import (
	"time"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/pkg/apperror"
	"leadflow_backend/pkg/report"
	"leadflow_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type GenerateReportInput struct {
	Type        string `json:"type"`
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end" validate:"required"`
}

// GenerateReport computes and persists an analytics snapshot for the
// caller's organization over a closed date interval.
func GenerateReport(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	input := new(GenerateReportInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if messages := validation.ValidateStruct(input); messages != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid input",
			"details": messages,
		})
	}

	periodStart, err := time.Parse("2006-01-02", input.PeriodStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "period_start must be YYYY-MM-DD",
		})
	}
	periodEnd, err := time.Parse("2006-01-02", input.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "period_end must be YYYY-MM-DD",
		})
	}
	// Close the interval at end of day so same-day records count.
	periodEnd = periodEnd.Add(24*time.Hour - time.Second)

	result, err := reportService.Generate(c.Context(), actor, input.Type, periodStart, periodEnd)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Report generated successfully",
		"report":  result,
	})
}

// ListReports returns the organization's reports, newest first.
func ListReports(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	reports, err := reportService.List(c.Context(), actor)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch reports",
		})
	}

	return c.JSON(reports)
}

// GetReport returns one report with its decoded payload.
func GetReport(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	reportID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID",
		})
	}

	result, err := reportService.Get(c.Context(), actor, uint(reportID))
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	data, err := report.Decode(result)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not decode report payload",
		})
	}

	return c.JSON(fiber.Map{
		"report": result,
		"data":   data,
	})
}

// DeleteReport removes a snapshot.
func DeleteReport(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	reportID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID",
		})
	}

	if err := reportService.Delete(c.Context(), actor, uint(reportID)); err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Report deleted successfully",
	})
}
