package model

import (
	"gorm.io/gorm"
)

// Client is a company for whom leads are generated. CostPerLead feeds
// the revenue figure in generated reports.
type Client struct {
	gorm.Model
	OrganizationID uint   `json:"organization_id" gorm:"index;not null"`
	CompanyName    string `json:"company_name" gorm:"not null"`
	ContactName    string `json:"contact_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`

	CostPerLead float64 `json:"cost_per_lead" gorm:"default:0"`
	Status      string  `json:"status" gorm:"default:'active'"`

	Campaigns []Campaign `json:"-"`
}
