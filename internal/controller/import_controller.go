package controller

import (
	"errors"
	"io"
	"log"
	"strconv"
	"time"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/pkg/apperror"
	"leadflow_backend/pkg/csvimport"
	"leadflow_backend/pkg/email"
	"leadflow_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// ImportLeads validates an uploaded CSV and inserts the valid rows in
// batches. Row and batch failures are isolated; the response always
// carries counts plus the error lists.
func ImportLeads(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	claims := c.Locals("user").(*jwt.Claims)

	raw, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read uploaded file",
		})
	}
	if len(raw) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Empty file",
		})
	}

	parsed, err := csvimport.Parse(string(raw))
	if err != nil {
		var missing *csvimport.MissingColumnsError
		if errors.As(err, &missing) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":         false,
				"error":           missing.Error(),
				"missing_columns": missing.Columns,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if len(parsed.Records) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"error":      "No valid rows in file",
			"row_errors": parsed.RowErrors,
		})
	}

	campaignID := queryUint(c, "campaign_id")
	clientID := queryUint(c, "client_id")

	result, err := leadImporter.Execute(c.Context(), actor, campaignID, clientID, parsed.Records)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if email.GlobalEmailService != nil {
		err := email.GlobalEmailService.SendImportSummary(claims.Email, email.ImportSummaryData{
			Imported: result.Imported,
			Total:    result.Total,
			Errors:   result.Errors,
			Date:     time.Now(),
		})
		if err != nil {
			log.Printf("Could not send import summary email: %v", err)
		}
	}

	status := fiber.StatusCreated
	if result.Outcome == csvimport.OutcomeFailure {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"success":    result.Outcome != csvimport.OutcomeFailure,
		"imported":   result.Imported,
		"total":      result.Total,
		"outcome":    result.Outcome,
		"errors":     result.Errors,
		"row_errors": parsed.RowErrors,
	})
}

// ValidateLeadCSV dry-runs the parser so the UI can preview row errors
// before committing an import.
func ValidateLeadCSV(c *fiber.Ctx) error {
	raw, err := readUpload(c)
	if err != nil || len(raw) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read uploaded file",
		})
	}

	parsed, err := csvimport.Parse(string(raw))
	if err != nil {
		var missing *csvimport.MissingColumnsError
		if errors.As(err, &missing) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"valid":           false,
				"error":           missing.Error(),
				"missing_columns": missing.Columns,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid": false,
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"valid":      true,
		"records":    len(parsed.Records),
		"row_errors": parsed.RowErrors,
	})
}

// readUpload accepts either a multipart "file" field or a raw text
// body.
func readUpload(c *fiber.Ctx) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return c.Body(), nil
}

func queryUint(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}
