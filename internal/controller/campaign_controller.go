package controller

import (
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"
	"leadflow_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type CampaignInput struct {
	Name        string  `json:"name" validate:"required"`
	ClientID    uint    `json:"client_id" validate:"required"`
	TargetLeads int     `json:"target_leads"`
	Budget      float64 `json:"budget"`
}

func CreateCampaign(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(CampaignInput)
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

	var client model.Client
	if err := database.GetDB().
		Where("id = ? AND organization_id = ?", input.ClientID, claims.OrganizationID).
		First(&client).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	campaign := model.Campaign{
		OrganizationID: claims.OrganizationID,
		ClientID:       client.ID,
		Name:           input.Name,
		Status:         model.CampaignStatusDraft,
		TargetLeads:    input.TargetLeads,
		Budget:         input.Budget,
	}

	if err := database.GetDB().Create(&campaign).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create campaign",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Campaign created successfully",
		"campaign": campaign,
	})
}

func GetCampaigns(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var campaigns []model.Campaign
	query := database.GetDB().
		Where("organization_id = ?", claims.OrganizationID).
		Preload("Client").
		Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch campaigns",
		})
	}

	// Attach lead counts so the dashboard can show campaign progress.
	results := make([]fiber.Map, len(campaigns))
	for i := range campaigns {
		total, _ := campaigns[i].GetLeadsCount()
		unassigned, _ := campaigns[i].GetUnassignedLeadsCount()
		results[i] = fiber.Map{
			"campaign":         campaigns[i],
			"leads_total":      total,
			"leads_unassigned": unassigned,
		}
	}

	return c.JSON(results)
}

type CampaignStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft active paused completed"`
}

func UpdateCampaignStatus(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	campaignID := c.Params("id")

	var campaign model.Campaign
	if err := database.GetDB().
		Where("id = ? AND organization_id = ?", campaignID, claims.OrganizationID).
		First(&campaign).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Campaign not found",
		})
	}

	input := new(CampaignStatusInput)
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

	if err := database.GetDB().Model(&campaign).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update campaign status",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Campaign status updated successfully",
		"campaign": campaign,
	})
}
