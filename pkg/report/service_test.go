package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadflow_backend/internal/model"
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

	// One connection so the in-memory database is shared across the
	// concurrent period queries.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Client{},
		&model.Campaign{},
		&model.Lead{},
		&model.Call{},
		&model.Report{},
	)
	require.NoError(t, err)

	return db
}

type fixture struct {
	org      model.Organization
	owner    model.User
	agent    model.User
	client   model.Client
	campaign model.Campaign
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	org := model.Organization{Name: "Acme Leads"}
	require.NoError(t, db.Create(&org).Error)

	owner := model.User{
		OrganizationID: org.ID,
		Email:          fmt.Sprintf("owner-%d@test.local", time.Now().UnixNano()),
		Password:       "x",
		Role:           model.RoleOwner,
		FirstName:      "Olive",
		LastName:       "Owner",
	}
	require.NoError(t, db.Create(&owner).Error)

	agent := model.User{
		OrganizationID: org.ID,
		Email:          fmt.Sprintf("agent-%d@test.local", time.Now().UnixNano()),
		Password:       "x",
		Role:           model.RoleAgent,
		FirstName:      "Andy",
		LastName:       "Agent",
	}
	require.NoError(t, db.Create(&agent).Error)

	client := model.Client{OrganizationID: org.ID, CompanyName: "BigCo", CostPerLead: 200}
	require.NoError(t, db.Create(&client).Error)

	campaign := model.Campaign{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Name:           "Q3 Outbound Push",
		Status:         model.CampaignStatusActive,
	}
	require.NoError(t, db.Create(&campaign).Error)

	return fixture{org: org, owner: owner, agent: agent, client: client, campaign: campaign}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	periodStart := time.Now().AddDate(0, 0, -2).Truncate(24 * time.Hour)
	periodEnd := time.Now().Add(time.Hour)

	t.Run("conversion rate and revenue from closed won", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		// 100 leads, 12 of them closed won at £200 per lead.
		for i := 0; i < 100; i++ {
			status := model.LeadStatusNew
			var clientID *uint
			if i < 12 {
				status = model.LeadStatusClosedWon
				clientID = &f.client.ID
			}
			lead := model.Lead{
				OrganizationID: f.org.ID,
				CampaignID:     &f.campaign.ID,
				ClientID:       clientID,
				FirstName:      "Lee",
				LastName:       fmt.Sprintf("Prospect%d", i),
				Phone:          "+15550001234",
				Status:         status,
			}
			require.NoError(t, db.Create(&lead).Error)
		}

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
		require.NoError(t, err)

		data, err := Decode(rep)
		require.NoError(t, err)

		assert.Equal(t, 100, data.Summary.TotalLeads)
		assert.Equal(t, 12, data.Summary.ClosedWonLeads)
		assert.Equal(t, 12.0, data.Summary.ConversionRate)
		assert.Equal(t, 2400.0, data.Summary.Revenue)
	})

	t.Run("zero leads means zero conversion rate", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
		require.NoError(t, err)

		data, err := Decode(rep)
		require.NoError(t, err)
		assert.Equal(t, 0, data.Summary.TotalLeads)
		assert.Equal(t, 0.0, data.Summary.ConversionRate)
		assert.Equal(t, 0.0, data.Summary.Revenue)
	})

	t.Run("idle campaigns and agents are dropped", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		idle := model.Campaign{
			OrganizationID: f.org.ID,
			ClientID:       f.client.ID,
			Name:           "Dormant Campaign",
		}
		require.NoError(t, db.Create(&idle).Error)

		lead := model.Lead{
			OrganizationID: f.org.ID,
			CampaignID:     &f.campaign.ID,
			FirstName:      "Lee",
			LastName:       "Prospect",
			Phone:          "+15550001234",
			Status:         model.LeadStatusQualified,
		}
		require.NoError(t, db.Create(&lead).Error)

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
		require.NoError(t, err)

		data, err := Decode(rep)
		require.NoError(t, err)

		require.Len(t, data.Campaigns, 1, "campaign with no leads in period is dropped")
		assert.Equal(t, f.campaign.ID, data.Campaigns[0].CampaignID)
		assert.Equal(t, 1, data.Campaigns[0].LeadsGenerated)
		assert.Equal(t, 1, data.Campaigns[0].LeadsConverted)

		assert.Empty(t, data.Agents, "agent with no calls and no conversions is dropped")
	})

	t.Run("agent rollup aggregates calls", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		lead := model.Lead{
			OrganizationID: f.org.ID,
			FirstName:      "Lee",
			LastName:       "Prospect",
			Phone:          "+15550001234",
			Status:         model.LeadStatusNew,
		}
		require.NoError(t, db.Create(&lead).Error)

		for _, duration := range []int{60, 120, 90} {
			call := model.Call{
				OrganizationID: f.org.ID,
				LeadID:         lead.ID,
				AgentID:        f.agent.ID,
				Status:         model.CallStatusCompleted,
				Duration:       duration,
			}
			require.NoError(t, db.Create(&call).Error)
		}

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
		require.NoError(t, err)

		data, err := Decode(rep)
		require.NoError(t, err)

		assert.Equal(t, 3, data.Summary.TotalCalls)
		assert.Equal(t, 270, data.Summary.TotalCallDuration)

		require.Len(t, data.Agents, 1)
		assert.Equal(t, f.agent.ID, data.Agents[0].AgentID)
		assert.Equal(t, 3, data.Agents[0].Calls)
		assert.Equal(t, 270, data.Agents[0].TotalDuration)
		assert.Equal(t, 90.0, data.Agents[0].AvgCallDuration)
	})

	t.Run("daily buckets cover every day of the period", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		dayOne := periodStart.Add(2 * time.Hour)
		lead := model.Lead{
			OrganizationID: f.org.ID,
			FirstName:      "Lee",
			LastName:       "Prospect",
			Phone:          "+15550001234",
			Status:         model.LeadStatusNew,
		}
		lead.CreatedAt = dayOne
		require.NoError(t, db.Create(&lead).Error)

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
		require.NoError(t, err)

		data, err := Decode(rep)
		require.NoError(t, err)

		wantDays := 0
		for day := periodStart; !day.After(periodEnd); day = day.AddDate(0, 0, 1) {
			wantDays++
		}
		require.Len(t, data.Daily, wantDays)

		assert.Equal(t, dayOne.Format("2006-01-02"), data.Daily[0].Date)
		assert.Equal(t, 1, data.Daily[0].LeadsCreated)
		assert.Equal(t, 0, data.Daily[1].LeadsCreated)
	})

	t.Run("persists the snapshot", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		rep, err := svc.Generate(ctx, f.owner.AsActor(), "weekly", periodStart, periodEnd)
		require.NoError(t, err)
		assert.NotZero(t, rep.ID)
		assert.Contains(t, rep.Name, "Weekly Report")

		var stored model.Report
		require.NoError(t, db.First(&stored, rep.ID).Error)
		assert.Equal(t, f.org.ID, stored.OrganizationID)
		assert.Equal(t, f.owner.ID, stored.CreatedBy)
	})

	t.Run("agent role cannot generate", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		_, err := svc.Generate(ctx, f.agent.AsActor(), "performance", periodStart, periodEnd)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("inverted period is a validation error", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		svc := NewService(db)

		_, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodEnd, periodStart)
		require.Error(t, err)
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestReportAccess(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	f := seedFixture(t, db)
	other := seedFixture(t, db)
	svc := NewService(db)

	periodStart := time.Now().AddDate(0, 0, -1)
	periodEnd := time.Now()

	rep, err := svc.Generate(ctx, f.owner.AsActor(), "performance", periodStart, periodEnd)
	require.NoError(t, err)

	t.Run("scoped to organization", func(t *testing.T) {
		_, err := svc.Get(ctx, other.owner.AsActor(), rep.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		got, err := svc.Get(ctx, f.owner.AsActor(), rep.ID)
		require.NoError(t, err)
		assert.Equal(t, rep.ID, got.ID)
	})

	t.Run("list newest first", func(t *testing.T) {
		reports, err := svc.List(ctx, f.owner.AsActor())
		require.NoError(t, err)
		require.Len(t, reports, 1)
	})

	t.Run("delete requires manage role", func(t *testing.T) {
		err := svc.Delete(ctx, f.agent.AsActor(), rep.ID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		require.NoError(t, svc.Delete(ctx, f.owner.AsActor(), rep.ID))
		_, err = svc.Get(ctx, f.owner.AsActor(), rep.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.0, round1(12.0))
	assert.Equal(t, 33.3, round1(100.0/3))
	assert.Equal(t, 66.7, round1(200.0/3))
}
