package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityAssignment = "assignment"
	ActivityNote       = "note"
	ActivityCall       = "call"
	ActivityImport     = "import"
	ActivityStatus     = "status"
)

// Activity is an append-only audit trail entry. Rows are created
// alongside every assignment/status/call/import mutation and never
// updated afterwards.
type Activity struct {
	gorm.Model
	OrganizationID uint  `json:"organization_id" gorm:"index;not null"`
	LeadID         *uint `json:"lead_id" gorm:"index"`
	UserID         uint  `json:"user_id" gorm:"index"`

	Type     string            `json:"type" gorm:"index;not null"`
	Content  string            `json:"content" gorm:"type:text"`
	Metadata datatypes.JSONMap `json:"metadata"`

	Lead *Lead `json:"-" gorm:"foreignKey:LeadID"`
}
