package assignment

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/apperror"

	"gorm.io/gorm"
)

// Service decides which leads become assigned to which agent and
// records every decision in the audit trail. All operations take an
// explicit actor; role and organization checks happen before any
// mutation.
type Service struct {
	db         *gorm.DB
	activities *activity.Logger
}

func NewService(db *gorm.DB, activities *activity.Logger) *Service {
	return &Service{db: db, activities: activities}
}

// BatchAssignResult reports how many of the selected leads were
// actually assigned. Assigned can be lower than Requested when another
// request claimed a lead first.
type BatchAssignResult struct {
	Requested int    `json:"requested"`
	Assigned  int    `json:"assigned"`
	LeadIDs   []uint `json:"lead_ids"`
}

// AgentShare is one agent's slice of an auto-distribution.
type AgentShare struct {
	AgentID uint   `json:"agent_id"`
	Count   int    `json:"count"`
	LeadIDs []uint `json:"lead_ids"`
}

// DistributeResult summarizes a round-robin distribution.
type DistributeResult struct {
	Assigned int          `json:"assigned"`
	Agents   []AgentShare `json:"agents"`
}

// BulkReassignResult reports a bulk reassignment. SkippedIDs lists
// requested leads that were not found inside the actor's organization.
type BulkReassignResult struct {
	Reassigned int    `json:"reassigned"`
	SkippedIDs []uint `json:"skipped_ids"`
}

// BatchAssign assigns the oldest `count` unassigned leads of a campaign
// to one agent, oldest first. count <= 0 means all.
func (s *Service) BatchAssign(ctx context.Context, actor model.Actor, campaignID, agentID uint, count int) (*BatchAssignResult, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("batch assign requires owner or manager role: %w", apperror.ErrUnauthorized)
	}

	campaign, err := s.loadCampaign(ctx, actor, campaignID)
	if err != nil {
		return nil, err
	}

	agent, err := s.loadAgent(ctx, actor, agentID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("campaign_id = ? AND organization_id = ? AND assigned_agent_id IS NULL", campaign.ID, actor.OrganizationID).
		Order("created_at asc")
	if count > 0 {
		query = query.Limit(count)
	}

	var leads []model.Lead
	if err := query.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("could not fetch unassigned leads: %w", err)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("no unassigned leads in campaign: %w", apperror.ErrNotFound)
	}

	result := &BatchAssignResult{Requested: len(leads)}
	for i := range leads {
		ok, err := s.claimLead(ctx, &leads[i], agent.ID)
		if err != nil {
			return result, err
		}
		if !ok {
			// Another request claimed it between select and update.
			continue
		}
		result.Assigned++
		result.LeadIDs = append(result.LeadIDs, leads[i].ID)

		leadID := leads[i].ID
		s.activities.Record(ctx, activity.Entry{
			OrganizationID: actor.OrganizationID,
			LeadID:         &leadID,
			UserID:         actor.ID,
			Type:           model.ActivityAssignment,
			Content:        fmt.Sprintf("Lead assigned to %s", agent.GetFullName()),
			Metadata: map[string]interface{}{
				"agent_id":    agent.ID,
				"assigned_by": actor.ID,
			},
		})
	}

	return result, nil
}

// AutoDistribute spreads every unassigned lead of a campaign across the
// organization's agents in strict round-robin. Leads are ordered by
// priority descending then creation time ascending, so the hottest
// leads land across the whole agent pool instead of on one agent. The
// split is always even within one lead.
func (s *Service) AutoDistribute(ctx context.Context, actor model.Actor, campaignID uint) (*DistributeResult, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("auto distribution requires owner or manager role: %w", apperror.ErrUnauthorized)
	}

	campaign, err := s.loadCampaign(ctx, actor, campaignID)
	if err != nil {
		return nil, err
	}

	var agents []model.User
	if err := s.db.WithContext(ctx).
		Where("organization_id = ? AND role = ?", actor.OrganizationID, model.RoleAgent).
		Order("created_at asc").
		Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("could not fetch agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents available for distribution: %w", apperror.ErrNotFound)
	}

	var leads []model.Lead
	if err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND organization_id = ? AND assigned_agent_id IS NULL", campaign.ID, actor.OrganizationID).
		Order("priority desc, created_at asc").
		Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("could not fetch unassigned leads: %w", err)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("no unassigned leads in campaign: %w", apperror.ErrNotFound)
	}

	shares := make([]AgentShare, len(agents))
	for i, agent := range agents {
		shares[i] = AgentShare{AgentID: agent.ID}
	}

	result := &DistributeResult{}
	for i := range leads {
		agent := agents[i%len(agents)]

		ok, err := s.claimLead(ctx, &leads[i], agent.ID)
		if err != nil {
			return result, err
		}
		if !ok {
			continue
		}

		share := &shares[i%len(agents)]
		share.Count++
		share.LeadIDs = append(share.LeadIDs, leads[i].ID)
		result.Assigned++

		leadID := leads[i].ID
		s.activities.Record(ctx, activity.Entry{
			OrganizationID: actor.OrganizationID,
			LeadID:         &leadID,
			UserID:         actor.ID,
			Type:           model.ActivityAssignment,
			Content:        fmt.Sprintf("Lead auto-assigned to %s", agent.GetFullName()),
			Metadata: map[string]interface{}{
				"agent_id":          agent.ID,
				"assigned_by":       actor.ID,
				"distribution_type": "auto",
			},
		})
	}

	result.Agents = shares
	return result, nil
}

// Reassign moves one lead to a new agent at any status. The audit entry
// always records the agent the lead was taken from.
func (s *Service) Reassign(ctx context.Context, actor model.Actor, leadID, newAgentID uint) (*model.Lead, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("reassignment requires owner or manager role: %w", apperror.ErrUnauthorized)
	}

	var lead model.Lead
	if err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", leadID, actor.OrganizationID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("could not fetch lead: %w", err)
	}

	agent, err := s.loadAgent(ctx, actor, newAgentID)
	if err != nil {
		return nil, err
	}

	previousAgentID := lead.AssignedAgentID

	if err := s.db.WithContext(ctx).Model(&lead).
		Update("assigned_agent_id", agent.ID).Error; err != nil {
		return nil, fmt.Errorf("could not reassign lead: %w", err)
	}

	metadata := map[string]interface{}{
		"agent_id":    agent.ID,
		"assigned_by": actor.ID,
	}
	if previousAgentID != nil {
		metadata["previous_agent_id"] = *previousAgentID
	} else {
		metadata["previous_agent_id"] = nil
	}

	id := lead.ID
	s.activities.Record(ctx, activity.Entry{
		OrganizationID: actor.OrganizationID,
		LeadID:         &id,
		UserID:         actor.ID,
		Type:           model.ActivityAssignment,
		Content:        fmt.Sprintf("Lead reassigned to %s", agent.GetFullName()),
		Metadata:       metadata,
	})

	lead.AssignedAgentID = &agent.ID
	return &lead, nil
}

// BulkReassign moves a set of leads to a new agent in one logical
// operation. Each lead still gets its own audit entry so its history
// stays independently queryable; entries are tagged bulk:true.
func (s *Service) BulkReassign(ctx context.Context, actor model.Actor, leadIDs []uint, newAgentID uint) (*BulkReassignResult, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("reassignment requires owner or manager role: %w", apperror.ErrUnauthorized)
	}
	if len(leadIDs) == 0 {
		return nil, apperror.NewValidation("no lead ids provided")
	}

	agent, err := s.loadAgent(ctx, actor, newAgentID)
	if err != nil {
		return nil, err
	}

	var leads []model.Lead
	if err := s.db.WithContext(ctx).
		Where("id IN ? AND organization_id = ?", leadIDs, actor.OrganizationID).
		Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("could not fetch leads: %w", err)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("no matching leads found: %w", apperror.ErrNotFound)
	}

	found := make(map[uint]bool, len(leads))
	result := &BulkReassignResult{}

	for i := range leads {
		lead := &leads[i]
		found[lead.ID] = true
		previousAgentID := lead.AssignedAgentID

		if err := s.db.WithContext(ctx).Model(lead).
			Update("assigned_agent_id", agent.ID).Error; err != nil {
			return result, fmt.Errorf("could not reassign lead %d: %w", lead.ID, err)
		}
		result.Reassigned++

		metadata := map[string]interface{}{
			"agent_id":    agent.ID,
			"assigned_by": actor.ID,
			"bulk":        true,
		}
		if previousAgentID != nil {
			metadata["previous_agent_id"] = *previousAgentID
		} else {
			metadata["previous_agent_id"] = nil
		}

		id := lead.ID
		s.activities.Record(ctx, activity.Entry{
			OrganizationID: actor.OrganizationID,
			LeadID:         &id,
			UserID:         actor.ID,
			Type:           model.ActivityAssignment,
			Content:        fmt.Sprintf("Lead reassigned to %s", agent.GetFullName()),
			Metadata:       metadata,
		})
	}

	for _, id := range leadIDs {
		if !found[id] {
			result.SkippedIDs = append(result.SkippedIDs, id)
		}
	}

	return result, nil
}

// claimLead sets the agent on a still-unassigned lead. The IS NULL
// guard turns a concurrent double-assign into a skipped lead instead of
// a silent overwrite; zero rows affected means someone else won.
func (s *Service) claimLead(ctx context.Context, lead *model.Lead, agentID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Lead{}).
		Where("id = ? AND assigned_agent_id IS NULL", lead.ID).
		Update("assigned_agent_id", agentID)
	if res.Error != nil {
		return false, fmt.Errorf("could not assign lead %d: %w", lead.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	lead.AssignedAgentID = &agentID
	return true, nil
}

func (s *Service) loadCampaign(ctx context.Context, actor model.Actor, campaignID uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("campaign not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("could not fetch campaign: %w", err)
	}
	if campaign.OrganizationID != actor.OrganizationID {
		return nil, fmt.Errorf("campaign belongs to another organization: %w", apperror.ErrUnauthorized)
	}
	return &campaign, nil
}

func (s *Service) loadAgent(ctx context.Context, actor model.Actor, agentID uint) (*model.User, error) {
	var agent model.User
	if err := s.db.WithContext(ctx).First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("could not fetch agent: %w", err)
	}
	if agent.OrganizationID != actor.OrganizationID {
		return nil, fmt.Errorf("agent belongs to another organization: %w", apperror.ErrUnauthorized)
	}
	if agent.Role != model.RoleAgent {
		return nil, fmt.Errorf("user %d is not an agent: %w", agent.ID, apperror.ErrUnauthorized)
	}
	return &agent, nil
}
