package controller

import (
	"time"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"
	"leadflow_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type LeadInput struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	JobTitle   string `json:"job_title"`
	Source     string `json:"source"`
	Priority   int    `json:"priority"`
	CampaignID *uint  `json:"campaign_id"`
	ClientID   *uint  `json:"client_id"`
}

// CreateLead adds a single lead by hand; imports go through the CSV
// pipeline instead.
func CreateLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(LeadInput)
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

	lead := model.Lead{
		OrganizationID: claims.OrganizationID,
		CampaignID:     input.CampaignID,
		ClientID:       input.ClientID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          input.Phone,
		Email:          input.Email,
		Company:        input.Company,
		JobTitle:       input.JobTitle,
		Source:         input.Source,
		Priority:       input.Priority,
		Status:         model.LeadStatusNew,
	}

	if err := database.GetDB().Create(&lead).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lead",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lead created successfully",
		"lead":    lead,
	})
}

// GetLeads lists the organization's leads with optional filters. Agents
// only ever see their own assignments.
func GetLeads(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var leads []model.Lead
	query := database.GetDB().
		Where("leads.organization_id = ?", claims.OrganizationID).
		Preload("Campaign").
		Preload("AssignedAgent")

	if claims.Role == model.RoleAgent {
		query = query.Where("leads.assigned_agent_id = ?", claims.UserID)
	} else if assigned := c.Query("assigned"); assigned != "" {
		if assigned == "none" {
			query = query.Where("leads.assigned_agent_id IS NULL")
		} else {
			query = query.Where("leads.assigned_agent_id = ?", assigned)
		}
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("leads.status = ?", status)
	}

	if campaignID := c.Query("campaign_id"); campaignID != "" {
		query = query.Where("leads.campaign_id = ?", campaignID)
	}

	if sortBy := c.Query("sort"); sortBy != "" {
		query = query.Order(sortBy)
	} else {
		query = query.Order("leads.created_at desc")
	}

	if err := query.Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch leads",
		})
	}

	return c.JSON(leads)
}

// GetLead returns one lead with its relations.
func GetLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var lead model.Lead
	if err := database.GetDB().
		Preload("Campaign").
		Preload("Client").
		Preload("AssignedAgent").
		Where("id = ? AND organization_id = ?", leadID, claims.OrganizationID).
		First(&lead).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}

	return c.JSON(lead)
}

// UpdateLeadStatus moves a lead through its lifecycle and records the
// transition in the audit trail.
func UpdateLeadStatus(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var lead model.Lead
	if err := database.GetDB().
		Where("id = ? AND organization_id = ?", leadID, claims.OrganizationID).
		First(&lead).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}

	if claims.Role == model.RoleAgent && (lead.AssignedAgentID == nil || *lead.AssignedAgentID != claims.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this lead",
		})
	}

	input := struct {
		Status         string     `json:"status"`
		NextFollowUpAt *time.Time `json:"next_follow_up_at"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if !model.ValidLeadStatus(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":          "Invalid status value",
			"valid_statuses": model.LeadStatuses,
		})
	}

	previousStatus := lead.Status

	updates := map[string]interface{}{"status": input.Status}
	if input.Status == model.LeadStatusContacted {
		updates["last_contacted_at"] = time.Now()
	}
	if input.NextFollowUpAt != nil {
		updates["next_follow_up_at"] = *input.NextFollowUpAt
	}

	if err := database.GetDB().Model(&lead).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update lead status",
		})
	}

	id := lead.ID
	activityLogger.Record(c.Context(), activity.Entry{
		OrganizationID: claims.OrganizationID,
		LeadID:         &id,
		UserID:         claims.UserID,
		Type:           model.ActivityStatus,
		Content:        "Lead status changed to " + input.Status,
		Metadata: map[string]interface{}{
			"previous_status": previousStatus,
			"status":          input.Status,
		},
	})

	database.GetDB().First(&lead, lead.ID)

	return c.JSON(fiber.Map{
		"message": "Lead status updated successfully",
		"lead":    lead,
	})
}

// GetLeadActivities returns the lead's audit trail, newest first.
func GetLeadActivities(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	leadID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lead ID",
		})
	}

	entries, err := activityLogger.ForLead(c.Context(), actor.OrganizationID, uint(leadID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch activities",
		})
	}

	return c.JSON(entries)
}
