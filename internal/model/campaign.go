package model

import (
	"leadflow_backend/pkg/database"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

type Campaign struct {
	gorm.Model
	OrganizationID uint   `json:"organization_id" gorm:"index;not null"`
	ClientID       uint   `json:"client_id" gorm:"index"`
	Name           string `json:"name" gorm:"not null"`
	Slug           string `json:"slug" gorm:"index"`

	Status      string  `json:"status" gorm:"default:'draft'"`
	TargetLeads int     `json:"target_leads" gorm:"default:0"`
	Budget      float64 `json:"budget" gorm:"default:0"`

	Client Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Leads  []Lead `json:"-"`
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

func (c *Campaign) GetLeadsCount() (int64, error) {
	var count int64
	db := database.GetDB()
	err := db.Model(&Lead{}).Where("campaign_id = ?", c.ID).Count(&count).Error
	return count, err
}

func (c *Campaign) GetUnassignedLeadsCount() (int64, error) {
	var count int64
	db := database.GetDB()
	err := db.Model(&Lead{}).
		Where("campaign_id = ? AND assigned_agent_id IS NULL", c.ID).
		Count(&count).Error
	return count, err
}
