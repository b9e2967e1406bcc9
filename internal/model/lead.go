package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LeadStatusNew           = "new"
	LeadStatusContacted     = "contacted"
	LeadStatusQualified     = "qualified"
	LeadStatusInterested    = "interested"
	LeadStatusNotInterested = "not_interested"
	LeadStatusCallback      = "callback"
	LeadStatusConverted     = "converted"
	LeadStatusClosedWon     = "closed_won"
	LeadStatusClosedLost    = "closed_lost"
	LeadStatusLost          = "lost"
)

// LeadStatuses lists every valid status, in lifecycle order.
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusInterested,
	LeadStatusNotInterested,
	LeadStatusCallback,
	LeadStatusConverted,
	LeadStatusClosedWon,
	LeadStatusClosedLost,
	LeadStatusLost,
}

func ValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TerminalLeadStatus reports whether a lead has reached the end of its
// lifecycle.
func TerminalLeadStatus(s string) bool {
	switch s {
	case LeadStatusConverted, LeadStatusClosedWon, LeadStatusClosedLost, LeadStatusLost:
		return true
	}
	return false
}

type Lead struct {
	gorm.Model
	OrganizationID  uint  `json:"organization_id" gorm:"index;not null"`
	CampaignID      *uint `json:"campaign_id" gorm:"index"`
	ClientID        *uint `json:"client_id" gorm:"index"`
	AssignedAgentID *uint `json:"assigned_agent_id" gorm:"index"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" gorm:"index"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	JobTitle  string `json:"job_title"`
	Source    string `json:"source"`

	Status   string         `json:"status" gorm:"index;default:'new'"`
	Priority int            `json:"priority" gorm:"index;default:0"` // higher = more urgent
	Score    int            `json:"score" gorm:"default:0"`
	Tags     datatypes.JSON `json:"tags"`

	LastContactedAt *time.Time `json:"last_contacted_at"`
	NextFollowUpAt  *time.Time `json:"next_follow_up_at"`

	Campaign      *Campaign `json:"campaign,omitempty" gorm:"foreignKey:CampaignID"`
	Client        *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	AssignedAgent *User     `json:"assigned_agent,omitempty" gorm:"foreignKey:AssignedAgentID"`
}

func (l *Lead) GetFullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}
