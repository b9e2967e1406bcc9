package activity

import (
	"context"
	"testing"

	"leadflow_backend/internal/model"

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

	require.NoError(t, db.AutoMigrate(&model.Activity{}))
	return db
}

// brokenDB returns a database without the activities table, so every
// insert fails.
func brokenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	leadID := uint(42)

	entry := Entry{
		OrganizationID: 1,
		LeadID:         &leadID,
		UserID:         7,
		Type:           model.ActivityAssignment,
		Content:        "Lead assigned to Andy Agent",
		Metadata:       map[string]interface{}{"agent_id": 9},
	}

	t.Run("persists the entry", func(t *testing.T) {
		db := setupTestDB(t)
		logger := NewLogger(db)

		require.NoError(t, logger.Record(ctx, entry))

		var stored model.Activity
		require.NoError(t, db.First(&stored).Error)
		assert.Equal(t, model.ActivityAssignment, stored.Type)
		assert.Equal(t, "Lead assigned to Andy Agent", stored.Content)
		require.NotNil(t, stored.LeadID)
		assert.Equal(t, leadID, *stored.LeadID)
		assert.EqualValues(t, 9, stored.Metadata["agent_id"])
	})

	t.Run("best effort swallows insert failures", func(t *testing.T) {
		logger := NewLogger(brokenDB(t))
		assert.NoError(t, logger.Record(ctx, entry))
	})

	t.Run("strict propagates insert failures", func(t *testing.T) {
		logger := NewStrictLogger(brokenDB(t))
		assert.Error(t, logger.Record(ctx, entry))
	})
}

func TestForLead(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	logger := NewLogger(db)

	leadID := uint(5)
	otherLead := uint(6)

	for _, e := range []Entry{
		{OrganizationID: 1, LeadID: &leadID, UserID: 1, Type: model.ActivityAssignment, Content: "first"},
		{OrganizationID: 1, LeadID: &leadID, UserID: 1, Type: model.ActivityStatus, Content: "second"},
		{OrganizationID: 1, LeadID: &otherLead, UserID: 1, Type: model.ActivityNote, Content: "unrelated"},
		{OrganizationID: 2, LeadID: &leadID, UserID: 1, Type: model.ActivityNote, Content: "other org"},
	} {
		require.NoError(t, logger.Record(ctx, e))
	}

	entries, err := logger.ForLead(ctx, 1, leadID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.LeadID)
		assert.Equal(t, leadID, *e.LeadID)
		assert.Equal(t, uint(1), e.OrganizationID)
	}
}
