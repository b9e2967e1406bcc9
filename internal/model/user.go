package model

import (
	"strings"

	"gorm.io/gorm"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleClient  = "client"
)

type User struct {
	gorm.Model
	OrganizationID uint   `json:"organization_id" gorm:"index;not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	Password       string `json:"-" gorm:"not null"`
	Role           string `json:"role" gorm:"index;default:'agent'"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar"`

	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID"`
}

func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"email":           u.Email,
		"full_name":       u.GetFullName(),
		"role":            u.Role,
		"organization_id": u.OrganizationID,
		"phone_number":    u.PhoneNumber,
		"avatar":          u.Avatar,
	}
}

// Actor identifies who is performing a core operation. Controllers
// build it from JWT claims; services never read ambient session state.
type Actor struct {
	ID             uint
	Role           string
	OrganizationID uint
}

// CanManage reports whether the actor may assign leads, generate
// reports and run imports.
func (a Actor) CanManage() bool {
	return a.Role == RoleOwner || a.Role == RoleManager
}

func (u *User) AsActor() Actor {
	return Actor{ID: u.ID, Role: u.Role, OrganizationID: u.OrganizationID}
}
