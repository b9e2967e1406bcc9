package controller

import (
	"log"

	"leadflow_backend/internal/middleware"
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/apperror"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/email"
	"leadflow_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type BatchAssignInput struct {
	CampaignID uint `json:"campaign_id" validate:"required"`
	AgentID    uint `json:"agent_id" validate:"required"`
	Count      int  `json:"count"`
}

// BatchAssignLeads hands the oldest unassigned leads of a campaign to
// one agent.
func BatchAssignLeads(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	input := new(BatchAssignInput)
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

	result, err := assignmentService.BatchAssign(c.Context(), actor, input.CampaignID, input.AgentID, input.Count)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	notifyAgent(input.AgentID, result.Assigned)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leads assigned successfully",
		"result":  result,
	})
}

type DistributeInput struct {
	CampaignID uint `json:"campaign_id" validate:"required"`
}

// AutoDistributeLeads spreads a campaign's unassigned leads across the
// agent pool round-robin.
func AutoDistributeLeads(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	input := new(DistributeInput)
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

	result, err := assignmentService.AutoDistribute(c.Context(), actor, input.CampaignID)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	for _, share := range result.Agents {
		if share.Count > 0 {
			notifyAgent(share.AgentID, share.Count)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leads distributed successfully",
		"result":  result,
	})
}

type ReassignInput struct {
	AgentID uint `json:"agent_id" validate:"required"`
}

// ReassignLead moves one lead to a different agent.
func ReassignLead(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	leadID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lead ID",
		})
	}

	input := new(ReassignInput)
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

	lead, err := assignmentService.Reassign(c.Context(), actor, uint(leadID), input.AgentID)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	notifyAgent(input.AgentID, 1)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Lead reassigned successfully",
		"lead":    lead,
	})
}

type BulkReassignInput struct {
	LeadIDs []uint `json:"lead_ids" validate:"required,min=1"`
	AgentID uint   `json:"agent_id" validate:"required"`
}

// BulkReassignLeads moves a set of leads to a different agent in one
// operation.
func BulkReassignLeads(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	input := new(BulkReassignInput)
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

	result, err := assignmentService.BulkReassign(c.Context(), actor, input.LeadIDs, input.AgentID)
	if err != nil {
		return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	notifyAgent(input.AgentID, result.Reassigned)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leads reassigned successfully",
		"result":  result,
	})
}

// notifyAgent emails the agent about new assignments. Failures only get
// logged; assignment already succeeded.
func notifyAgent(agentID uint, count int) {
	if email.GlobalEmailService == nil || count == 0 {
		return
	}

	var agent model.User
	if err := database.GetDB().First(&agent, agentID).Error; err != nil {
		return
	}

	err := email.GlobalEmailService.SendAssignmentNotification(agent.Email, email.AssignmentNotificationData{
		AgentName: agent.GetFullName(),
		Count:     count,
	})
	if err != nil {
		log.Printf("Could not send assignment notification email: %v", err)
	}
}
