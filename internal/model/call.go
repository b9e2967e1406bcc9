package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	CallDirectionOutbound = "outbound"
	CallDirectionInbound  = "inbound"

	CallStatusQueued     = "queued"
	CallStatusRinging    = "ringing"
	CallStatusInProgress = "in-progress"
	CallStatusCompleted  = "completed"
	CallStatusFailed     = "failed"
	CallStatusNoAnswer   = "no-answer"
	CallStatusBusy       = "busy"

	CallOutcomeConnected = "connected"
	CallOutcomeVoicemail = "voicemail"
	CallOutcomeNoAnswer  = "no_answer"
	CallOutcomeBusy      = "busy"
	CallOutcomeFailed    = "failed"
)

// Call is one outbound/inbound call attempt against a lead. CallSID is
// the telephony provider's opaque identifier; status callbacks are
// matched against it.
type Call struct {
	gorm.Model
	OrganizationID uint `json:"organization_id" gorm:"index;not null"`
	LeadID         uint `json:"lead_id" gorm:"index"`
	AgentID        uint `json:"agent_id" gorm:"index"`

	Direction  string `json:"direction" gorm:"default:'outbound'"`
	Status     string `json:"status" gorm:"default:'queued'"`
	Outcome    string `json:"outcome"`
	Duration   int    `json:"duration" gorm:"default:0"` // seconds
	CallSID    string `json:"call_sid" gorm:"index"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`

	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`

	Lead  Lead `json:"-" gorm:"foreignKey:LeadID"`
	Agent User `json:"-" gorm:"foreignKey:AgentID"`
}
