package telephony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/apperror"

	"gorm.io/gorm"
)

// Service owns Call rows. PlaceCall starts an outbound attempt through
// the provider; CompleteCall applies the provider's asynchronous status
// callback keyed by call SID.
type Service struct {
	db         *gorm.DB
	provider   Provider
	callerID   string
	activities *activity.Logger
}

func NewService(db *gorm.DB, provider Provider, callerID string, activities *activity.Logger) *Service {
	return &Service{db: db, provider: provider, callerID: callerID, activities: activities}
}

// PlaceCall dials a lead on behalf of an agent and records the attempt.
func (s *Service) PlaceCall(ctx context.Context, actor model.Actor, leadID uint) (*model.Call, error) {
	var lead model.Lead
	if err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", leadID, actor.OrganizationID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("could not fetch lead: %w", err)
	}
	if lead.Phone == "" {
		return nil, apperror.NewValidation("lead has no phone number")
	}

	result, err := s.provider.Dial(ctx, s.callerID, lead.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrUpstream, err)
	}

	now := time.Now()
	call := model.Call{
		OrganizationID: actor.OrganizationID,
		LeadID:         lead.ID,
		AgentID:        actor.ID,
		Direction:      model.CallDirectionOutbound,
		Status:         result.Status,
		CallSID:        result.CallSID,
		FromNumber:     s.callerID,
		ToNumber:       lead.Phone,
		StartedAt:      &now,
	}
	if err := s.db.WithContext(ctx).Create(&call).Error; err != nil {
		return nil, fmt.Errorf("could not record call: %w", err)
	}

	return &call, nil
}

// CompleteCall applies a completion signal from the provider. The only
// contract with the voice service: match the opaque call identifier and
// update the row's status, duration and outcome.
func (s *Service) CompleteCall(ctx context.Context, callSID, status string, duration int) (*model.Call, error) {
	var call model.Call
	if err := s.db.WithContext(ctx).
		Where("call_sid = ?", callSID).
		First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("call not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("could not fetch call: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":   status,
		"duration": duration,
		"outcome":  outcomeForStatus(status),
		"ended_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&call).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("could not update call: %w", err)
	}

	// Stamp the lead; a finished call counts as contact regardless of
	// outcome.
	s.db.WithContext(ctx).Model(&model.Lead{}).
		Where("id = ?", call.LeadID).
		Update("last_contacted_at", now)

	leadID := call.LeadID
	s.activities.Record(ctx, activity.Entry{
		OrganizationID: call.OrganizationID,
		LeadID:         &leadID,
		UserID:         call.AgentID,
		Type:           model.ActivityCall,
		Content:        fmt.Sprintf("Call %s after %ds", status, duration),
		Metadata: map[string]interface{}{
			"call_sid": callSID,
			"status":   status,
			"duration": duration,
		},
	})

	call.Status = status
	call.Duration = duration
	call.Outcome = outcomeForStatus(status)
	call.EndedAt = &now
	return &call, nil
}

func outcomeForStatus(status string) string {
	switch status {
	case model.CallStatusCompleted:
		return model.CallOutcomeConnected
	case model.CallStatusNoAnswer:
		return model.CallOutcomeNoAnswer
	case model.CallStatusBusy:
		return model.CallOutcomeBusy
	case model.CallStatusFailed:
		return model.CallOutcomeFailed
	default:
		return ""
	}
}
