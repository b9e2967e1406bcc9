package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is a persisted analytics snapshot. Data holds the computed
// JSON payload; rows are immutable once created except for deletion.
type Report struct {
	gorm.Model
	OrganizationID uint   `json:"organization_id" gorm:"index;not null"`
	CreatedBy      uint   `json:"created_by" gorm:"index"`
	Name           string `json:"name" gorm:"not null"`
	Type           string `json:"type" gorm:"default:'performance'"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Data datatypes.JSON `json:"data"`
}
