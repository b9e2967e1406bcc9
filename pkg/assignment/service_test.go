package assignment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Client{},
		&model.Campaign{},
		&model.Lead{},
		&model.Activity{},
	)
	require.NoError(t, err)

	return db
}

type fixture struct {
	org      model.Organization
	manager  model.User
	agents   []model.User
	campaign model.Campaign
}

func seedFixture(t *testing.T, db *gorm.DB, agentCount int) fixture {
	t.Helper()

	org := model.Organization{Name: "Acme Leads"}
	require.NoError(t, db.Create(&org).Error)

	manager := model.User{
		OrganizationID: org.ID,
		Email:          fmt.Sprintf("manager-%d@test.local", time.Now().UnixNano()),
		Password:       "x",
		Role:           model.RoleManager,
		FirstName:      "Mia",
		LastName:       "Manager",
	}
	require.NoError(t, db.Create(&manager).Error)

	f := fixture{org: org, manager: manager}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < agentCount; i++ {
		agent := model.User{
			OrganizationID: org.ID,
			Email:          fmt.Sprintf("agent-%d-%d@test.local", i, time.Now().UnixNano()),
			Password:       "x",
			Role:           model.RoleAgent,
			FirstName:      fmt.Sprintf("Agent%d", i+1),
			LastName:       "Smith",
		}
		agent.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&agent).Error)
		f.agents = append(f.agents, agent)
	}

	client := model.Client{OrganizationID: org.ID, CompanyName: "BigCo", CostPerLead: 200}
	require.NoError(t, db.Create(&client).Error)

	f.campaign = model.Campaign{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Name:           "Q3 Outbound Push",
		Status:         model.CampaignStatusActive,
	}
	require.NoError(t, db.Create(&f.campaign).Error)

	return f
}

func seedLead(t *testing.T, db *gorm.DB, f fixture, priority int, createdAt time.Time) model.Lead {
	t.Helper()

	lead := model.Lead{
		OrganizationID: f.org.ID,
		CampaignID:     &f.campaign.ID,
		FirstName:      "Lee",
		LastName:       "Prospect",
		Phone:          "+15550001234",
		Status:         model.LeadStatusNew,
		Priority:       priority,
	}
	lead.CreatedAt = createdAt
	require.NoError(t, db.Create(&lead).Error)
	return lead
}

func TestBatchAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns oldest leads first", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		base := time.Now().Add(-time.Hour)
		var created []model.Lead
		for i := 0; i < 5; i++ {
			created = append(created, seedLead(t, db, f, 0, base.Add(time.Duration(i)*time.Minute)))
		}

		result, err := svc.BatchAssign(ctx, f.manager.AsActor(), f.campaign.ID, f.agents[0].ID, 3)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Assigned)
		assert.Equal(t, []uint{created[0].ID, created[1].ID, created[2].ID}, result.LeadIDs)

		var lead model.Lead
		require.NoError(t, db.First(&lead, created[3].ID).Error)
		assert.Nil(t, lead.AssignedAgentID, "fourth lead should stay unassigned")
	})

	t.Run("count zero assigns everything", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		base := time.Now().Add(-time.Hour)
		for i := 0; i < 4; i++ {
			seedLead(t, db, f, 0, base.Add(time.Duration(i)*time.Minute))
		}

		result, err := svc.BatchAssign(ctx, f.manager.AsActor(), f.campaign.ID, f.agents[0].ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Assigned)
	})

	t.Run("writes one audit entry per assignment", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		base := time.Now().Add(-time.Hour)
		seedLead(t, db, f, 0, base)
		seedLead(t, db, f, 0, base.Add(time.Minute))

		_, err := svc.BatchAssign(ctx, f.manager.AsActor(), f.campaign.ID, f.agents[0].ID, 2)
		require.NoError(t, err)

		var count int64
		db.Model(&model.Activity{}).
			Where("organization_id = ? AND type = ?", f.org.ID, model.ActivityAssignment).
			Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("agent role cannot assign", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))
		seedLead(t, db, f, 0, time.Now())

		_, err := svc.BatchAssign(ctx, f.agents[0].AsActor(), f.campaign.ID, f.agents[0].ID, 1)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("campaign from another organization is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		other := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))
		seedLead(t, db, other, 0, time.Now())

		_, err := svc.BatchAssign(ctx, f.manager.AsActor(), other.campaign.ID, f.agents[0].ID, 1)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("no unassigned leads", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		_, err := svc.BatchAssign(ctx, f.manager.AsActor(), f.campaign.ID, f.agents[0].ID, 5)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestAutoDistribute(t *testing.T) {
	ctx := context.Background()

	t.Run("round robin over priority order", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 3)
		svc := NewService(db, activity.NewLogger(db))

		// Priorities 5,1,5,3,1,1,1 in creation order. Distribution
		// walks priority desc then created_at asc, so the two hot
		// leads land on different agents.
		base := time.Now().Add(-time.Hour)
		priorities := []int{5, 1, 5, 3, 1, 1, 1}
		leads := make([]model.Lead, len(priorities))
		for i, p := range priorities {
			leads[i] = seedLead(t, db, f, p, base.Add(time.Duration(i)*time.Minute))
		}

		result, err := svc.AutoDistribute(ctx, f.manager.AsActor(), f.campaign.ID)
		require.NoError(t, err)

		assert.Equal(t, 7, result.Assigned)
		require.Len(t, result.Agents, 3)

		assert.Equal(t, []uint{leads[0].ID, leads[1].ID, leads[6].ID}, result.Agents[0].LeadIDs)
		assert.Equal(t, []uint{leads[2].ID, leads[4].ID}, result.Agents[1].LeadIDs)
		assert.Equal(t, []uint{leads[3].ID, leads[5].ID}, result.Agents[2].LeadIDs)

		assert.Equal(t, 3, result.Agents[0].Count)
		assert.Equal(t, 2, result.Agents[1].Count)
		assert.Equal(t, 2, result.Agents[2].Count)
	})

	t.Run("already assigned leads are untouched", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 2)
		svc := NewService(db, activity.NewLogger(db))

		base := time.Now().Add(-time.Hour)
		taken := seedLead(t, db, f, 9, base)
		require.NoError(t, db.Model(&taken).Update("assigned_agent_id", f.agents[1].ID).Error)
		free := seedLead(t, db, f, 0, base.Add(time.Minute))

		result, err := svc.AutoDistribute(ctx, f.manager.AsActor(), f.campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Assigned)

		var lead model.Lead
		require.NoError(t, db.First(&lead, taken.ID).Error)
		require.NotNil(t, lead.AssignedAgentID)
		assert.Equal(t, f.agents[1].ID, *lead.AssignedAgentID)

		require.NoError(t, db.First(&lead, free.ID).Error)
		require.NotNil(t, lead.AssignedAgentID)
		assert.Equal(t, f.agents[0].ID, *lead.AssignedAgentID)
	})

	t.Run("no agents available", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 0)
		svc := NewService(db, activity.NewLogger(db))
		seedLead(t, db, f, 0, time.Now())

		_, err := svc.AutoDistribute(ctx, f.manager.AsActor(), f.campaign.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestReassign(t *testing.T) {
	ctx := context.Background()

	t.Run("records previous agent", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 2)
		svc := NewService(db, activity.NewLogger(db))

		lead := seedLead(t, db, f, 0, time.Now())
		require.NoError(t, db.Model(&lead).Update("assigned_agent_id", f.agents[0].ID).Error)

		updated, err := svc.Reassign(ctx, f.manager.AsActor(), lead.ID, f.agents[1].ID)
		require.NoError(t, err)
		require.NotNil(t, updated.AssignedAgentID)
		assert.Equal(t, f.agents[1].ID, *updated.AssignedAgentID)

		var entry model.Activity
		require.NoError(t, db.
			Where("lead_id = ? AND type = ?", lead.ID, model.ActivityAssignment).
			Order("created_at desc").
			First(&entry).Error)
		assert.EqualValues(t, f.agents[0].ID, entry.Metadata["previous_agent_id"])
	})

	t.Run("unassigned lead records nil previous agent", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		lead := seedLead(t, db, f, 0, time.Now())

		_, err := svc.Reassign(ctx, f.manager.AsActor(), lead.ID, f.agents[0].ID)
		require.NoError(t, err)

		var entry model.Activity
		require.NoError(t, db.
			Where("lead_id = ? AND type = ?", lead.ID, model.ActivityAssignment).
			First(&entry).Error)
		assert.Nil(t, entry.Metadata["previous_agent_id"])
	})

	t.Run("lead from another organization is invisible", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		other := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		lead := seedLead(t, db, other, 0, time.Now())

		_, err := svc.Reassign(ctx, f.manager.AsActor(), lead.ID, f.agents[0].ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("target must be an agent", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		lead := seedLead(t, db, f, 0, time.Now())

		_, err := svc.Reassign(ctx, f.manager.AsActor(), lead.ID, f.manager.ID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestBulkReassign(t *testing.T) {
	ctx := context.Background()

	t.Run("reassigns found leads and reports skipped ids", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 2)
		svc := NewService(db, activity.NewLogger(db))

		a := seedLead(t, db, f, 0, time.Now())
		b := seedLead(t, db, f, 0, time.Now())
		require.NoError(t, db.Model(&a).Update("assigned_agent_id", f.agents[0].ID).Error)

		result, err := svc.BulkReassign(ctx, f.manager.AsActor(), []uint{a.ID, b.ID, 9999}, f.agents[1].ID)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Reassigned)
		assert.Equal(t, []uint{9999}, result.SkippedIDs)

		var entries []model.Activity
		require.NoError(t, db.Where("type = ?", model.ActivityAssignment).Find(&entries).Error)
		assert.Len(t, entries, 2, "each lead gets its own audit entry")
		for _, e := range entries {
			assert.Equal(t, true, e.Metadata["bulk"])
		}
	})

	t.Run("empty id list is a validation error", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db, 1)
		svc := NewService(db, activity.NewLogger(db))

		_, err := svc.BulkReassign(ctx, f.manager.AsActor(), nil, f.agents[0].ID)
		require.Error(t, err)
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestClaimLeadRace(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db, 2)
	svc := NewService(db, activity.NewLogger(db))
	ctx := context.Background()

	lead := seedLead(t, db, f, 0, time.Now())

	ok, err := svc.claimLead(ctx, &lead, f.agents[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim loses without overwriting the first.
	stale := model.Lead{Model: gorm.Model{ID: lead.ID}}
	ok, err = svc.claimLead(ctx, &stale, f.agents[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var got model.Lead
	require.NoError(t, db.First(&got, lead.ID).Error)
	require.NotNil(t, got.AssignedAgentID)
	assert.Equal(t, f.agents[0].ID, *got.AssignedAgentID)
}
