package controller

import (
	"fmt"
	"log"
	"time"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/apperror"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/export"
	"leadflow_backend/pkg/utils/jwt"
	"leadflow_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
)

// ExportLeads streams the organization's leads as a CSV download.
// Agents only get their own assignments; the same query filters as the
// list endpoint apply.
func ExportLeads(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	query := database.GetDB().
		Where("organization_id = ?", claims.OrganizationID).
		Order("created_at asc")

	if claims.Role == model.RoleAgent {
		query = query.Where("assigned_agent_id = ?", claims.UserID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}

	var leads []model.Lead
	if err := query.Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch leads",
		})
	}

	body, err := export.LeadsCSV(leads)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not build export",
		})
	}

	archiveURL := archiveIfEnabled(c, claims.OrganizationID, "leads", body, "text/csv")

	filename := fmt.Sprintf("leads_%s.csv", time.Now().Format("20060102"))
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if archiveURL != "" {
		c.Set("X-Archive-URL", archiveURL)
	}
	return c.Send(body)
}

// ExportReport serves one report as a JSON document download.
func ExportReport(c *fiber.Ctx) error {
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

	body, err := export.ReportJSON(result)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not build export",
		})
	}

	archiveURL := archiveIfEnabled(c, actor.OrganizationID, "report", body, "application/json")

	filename := fmt.Sprintf("report_%d_%s.json", result.ID, result.PeriodStart.Format("20060102"))
	c.Set("Content-Type", "application/json")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if archiveURL != "" {
		c.Set("X-Archive-URL", archiveURL)
	}
	return c.Send(body)
}

// archiveIfEnabled is best effort: a failed upload never blocks the
// download.
func archiveIfEnabled(c *fiber.Ctx, organizationID uint, kind string, body []byte, contentType string) string {
	if !storage.Enabled() {
		return ""
	}
	url, err := storage.ArchiveExport(c.Context(), organizationID, kind, body, contentType)
	if err != nil {
		log.Printf("Could not archive %s export: %v", kind, err)
		return ""
	}
	return url
}
