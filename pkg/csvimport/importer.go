package csvimport

import (
	"context"
	"encoding/json"
	"fmt"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BatchSize bounds one insert request. Failed batches are isolated:
// later batches are still attempted.
const BatchSize = 100

const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// Inserter persists one batch of leads. The production implementation
// is GORM-backed; tests substitute failing ones.
type Inserter interface {
	InsertLeads(ctx context.Context, leads []model.Lead) error
}

type gormInserter struct {
	db *gorm.DB
}

func (g *gormInserter) InsertLeads(ctx context.Context, leads []model.Lead) error {
	return g.db.WithContext(ctx).Create(&leads).Error
}

// ImportResult reports a bulk insert run: counts, per-batch errors and
// an overall classification.
type ImportResult struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
	Outcome  string   `json:"outcome"`
	BatchRef string   `json:"batch_ref"`
}

// Importer executes validated imports against the lead store in
// bounded-size batches.
type Importer struct {
	inserter   Inserter
	activities *activity.Logger
}

func NewImporter(db *gorm.DB, activities *activity.Logger) *Importer {
	return &Importer{inserter: &gormInserter{db: db}, activities: activities}
}

// NewImporterWith lets callers substitute the insert step.
func NewImporterWith(inserter Inserter, activities *activity.Logger) *Importer {
	return &Importer{inserter: inserter, activities: activities}
}

// Execute persists the records in batches of BatchSize. One batch
// failing does not stop the rest; the result carries counts plus one
// error per failed batch. Exactly one import audit entry is written
// regardless of partial failure.
func (im *Importer) Execute(ctx context.Context, actor model.Actor, campaignID, clientID *uint, records []Record) (*ImportResult, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("lead import requires owner or manager role: %w", apperror.ErrUnauthorized)
	}
	if len(records) == 0 {
		return nil, apperror.NewValidation("no valid records to import")
	}

	leads := make([]model.Lead, len(records))
	for i, r := range records {
		tags, _ := json.Marshal(r.Tags)
		leads[i] = model.Lead{
			OrganizationID: actor.OrganizationID,
			CampaignID:     campaignID,
			ClientID:       clientID,
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Phone:          r.Phone,
			Email:          r.Email,
			Company:        r.Company,
			JobTitle:       r.JobTitle,
			Source:         r.Source,
			Priority:       r.Priority,
			Status:         model.LeadStatusNew,
			Tags:           datatypes.JSON(tags),
		}
	}

	result := &ImportResult{
		Total:    len(leads),
		Errors:   []string{},
		BatchRef: uuid.NewString(),
	}

	for start := 0; start < len(leads); start += BatchSize {
		end := start + BatchSize
		if end > len(leads) {
			end = len(leads)
		}
		batchNum := start/BatchSize + 1

		if err := im.inserter.InsertLeads(ctx, leads[start:end]); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", batchNum, err))
			continue
		}
		result.Imported += end - start
	}

	switch {
	case result.Imported == 0:
		result.Outcome = OutcomeFailure
	case len(result.Errors) > 0:
		result.Outcome = OutcomePartial
	default:
		result.Outcome = OutcomeSuccess
	}

	im.activities.Record(ctx, activity.Entry{
		OrganizationID: actor.OrganizationID,
		UserID:         actor.ID,
		Type:           model.ActivityImport,
		Content:        fmt.Sprintf("Imported %d of %d leads", result.Imported, result.Total),
		Metadata: map[string]interface{}{
			"imported":    result.Imported,
			"total":       result.Total,
			"errors":      len(result.Errors),
			"outcome":     result.Outcome,
			"batch_ref":   result.BatchRef,
			"campaign_id": campaignID,
		},
	})

	return result, nil
}
