package activity

import (
	"context"
	"log"

	"leadflow_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WritePolicy controls what happens when an audit insert fails.
type WritePolicy int

const (
	// BestEffort logs the dropped write and reports success. The
	// primary business mutation is never rolled back or failed because
	// the audit trail could not be appended.
	BestEffort WritePolicy = iota
	// Strict propagates insert failures to the caller.
	Strict
)

// Logger appends audit trail entries for assignment/status/call/import
// mutations.
type Logger struct {
	db     *gorm.DB
	policy WritePolicy
}

func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db, policy: BestEffort}
}

func NewStrictLogger(db *gorm.DB) *Logger {
	return &Logger{db: db, policy: Strict}
}

// Entry is one audit record to append.
type Entry struct {
	OrganizationID uint
	LeadID         *uint
	UserID         uint
	Type           string
	Content        string
	Metadata       map[string]interface{}
}

// Record appends one entry. Under BestEffort it always returns nil.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	row := model.Activity{
		OrganizationID: e.OrganizationID,
		LeadID:         e.LeadID,
		UserID:         e.UserID,
		Type:           e.Type,
		Content:        e.Content,
		Metadata:       datatypes.JSONMap(e.Metadata),
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		if l.policy == Strict {
			return err
		}
		log.Printf("activity: dropped %s audit entry for lead %v: %v", e.Type, e.LeadID, err)
		return nil
	}
	return nil
}

// ForLead returns the audit trail for one lead, newest first.
func (l *Logger) ForLead(ctx context.Context, organizationID, leadID uint) ([]model.Activity, error) {
	var entries []model.Activity
	err := l.db.WithContext(ctx).
		Where("organization_id = ? AND lead_id = ?", organizationID, leadID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}
