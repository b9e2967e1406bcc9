package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every lead, campaign, client,
// call, activity and report belongs to exactly one organization.
type Organization struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	Users []User `json:"-"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.Slug == "" {
		o.Slug = slug.Make(o.Name)
	}
	return nil
}
