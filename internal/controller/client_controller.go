package controller

import (
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"
	"leadflow_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type ClientInput struct {
	CompanyName string  `json:"company_name" validate:"required"`
	ContactName string  `json:"contact_name"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone"`
	CostPerLead float64 `json:"cost_per_lead"`
}

func CreateClient(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ClientInput)
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

	client := model.Client{
		OrganizationID: claims.OrganizationID,
		CompanyName:    input.CompanyName,
		ContactName:    input.ContactName,
		Email:          input.Email,
		Phone:          input.Phone,
		CostPerLead:    input.CostPerLead,
		Status:         "active",
	}

	if err := database.GetDB().Create(&client).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create client",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Client created successfully",
		"client":  client,
	})
}

func GetClients(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var clients []model.Client
	if err := database.GetDB().
		Where("organization_id = ?", claims.OrganizationID).
		Order("created_at desc").
		Find(&clients).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch clients",
		})
	}

	return c.JSON(clients)
}

func UpdateClient(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	clientID := c.Params("id")

	var client model.Client
	if err := database.GetDB().
		Where("id = ? AND organization_id = ?", clientID, claims.OrganizationID).
		First(&client).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	input := new(ClientInput)
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

	updates := map[string]interface{}{
		"company_name":  input.CompanyName,
		"contact_name":  input.ContactName,
		"email":         input.Email,
		"phone":         input.Phone,
		"cost_per_lead": input.CostPerLead,
	}
	if err := database.GetDB().Model(&client).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update client",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Client updated successfully",
		"client":  client,
	})
}
