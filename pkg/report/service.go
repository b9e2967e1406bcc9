package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/apperror"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrGenerationFailed is returned when any of the underlying period
// queries fails. No partial report is ever persisted.
var ErrGenerationFailed = errors.New("report generation failed")

const dateLayout = "2006-01-02"

// Service computes and persists analytics snapshots for one
// organization and date interval.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Generate runs the six period queries in parallel, rolls them up into
// a typed payload and persists the snapshot. The interval is closed on
// both ends.
func (s *Service) Generate(ctx context.Context, actor model.Actor, reportType string, periodStart, periodEnd time.Time) (*model.Report, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("report generation requires owner or manager role: %w", apperror.ErrUnauthorized)
	}
	if periodEnd.Before(periodStart) {
		return nil, apperror.NewValidation("period end is before period start")
	}
	if reportType == "" {
		reportType = "performance"
	}

	var (
		calls        []model.Call
		leadsCreated []model.Lead
		qualified    []model.Lead
		closedWon    []model.Lead
		campaigns    []model.Campaign
		agents       []model.User
	)

	// Six independent reads, no ordering dependency between them.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("organization_id = ? AND created_at >= ? AND created_at <= ?", actor.OrganizationID, periodStart, periodEnd).
			Find(&calls).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("organization_id = ? AND created_at >= ? AND created_at <= ?", actor.OrganizationID, periodStart, periodEnd).
			Find(&leadsCreated).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("organization_id = ? AND status = ? AND updated_at >= ? AND updated_at <= ?", actor.OrganizationID, model.LeadStatusQualified, periodStart, periodEnd).
			Find(&qualified).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Preload("Client").
			Where("organization_id = ? AND status = ? AND updated_at >= ? AND updated_at <= ?", actor.OrganizationID, model.LeadStatusClosedWon, periodStart, periodEnd).
			Find(&closedWon).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Preload("Leads").
			Where("organization_id = ?", actor.OrganizationID).
			Find(&campaigns).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("organization_id = ? AND role = ?", actor.OrganizationID, model.RoleAgent).
			Find(&agents).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	data := buildData(calls, leadsCreated, qualified, closedWon, campaigns, agents, periodStart, periodEnd)

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	report := model.Report{
		OrganizationID: actor.OrganizationID,
		CreatedBy:      actor.ID,
		Name: fmt.Sprintf("%s Report - %s to %s",
			titleCase(reportType),
			periodStart.Format(dateLayout),
			periodEnd.Format(dateLayout)),
		Type:        reportType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Data:        datatypes.JSON(payload),
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &report, nil
}

func buildData(calls []model.Call, leadsCreated, qualified, closedWon []model.Lead, campaigns []model.Campaign, agents []model.User, periodStart, periodEnd time.Time) Data {
	totalDuration := 0
	for _, c := range calls {
		totalDuration += c.Duration
	}

	revenue := 0.0
	for _, l := range closedWon {
		if l.Client != nil {
			revenue += l.Client.CostPerLead
		}
	}

	conversionRate := 0.0
	if len(leadsCreated) > 0 {
		conversionRate = round1(float64(len(closedWon)) / float64(len(leadsCreated)) * 100)
	}

	data := Data{
		Summary: Summary{
			TotalLeads:        len(leadsCreated),
			QualifiedLeads:    len(qualified),
			ClosedWonLeads:    len(closedWon),
			TotalCalls:        len(calls),
			TotalCallDuration: totalDuration,
			ConversionRate:    conversionRate,
			Revenue:           revenue,
		},
		Campaigns: []CampaignRollup{},
		Agents:    []AgentRollup{},
		Daily:     []DailyBucket{},
	}

	// Per-campaign rollup over leads created in the period. Campaigns
	// that generated nothing are dropped, not zeroed.
	for _, campaign := range campaigns {
		rollup := CampaignRollup{CampaignID: campaign.ID, Name: campaign.Name}
		for _, lead := range campaign.Leads {
			if lead.CreatedAt.Before(periodStart) || lead.CreatedAt.After(periodEnd) {
				continue
			}
			rollup.LeadsGenerated++
			if lead.Status == model.LeadStatusQualified || lead.Status == model.LeadStatusClosedWon {
				rollup.LeadsConverted++
			}
		}
		if rollup.LeadsGenerated > 0 {
			data.Campaigns = append(data.Campaigns, rollup)
		}
	}

	// Per-agent rollup. Idle agents (no calls, no conversions) are
	// dropped.
	for _, agent := range agents {
		rollup := AgentRollup{AgentID: agent.ID, Name: agent.GetFullName()}
		for _, c := range calls {
			if c.AgentID == agent.ID {
				rollup.Calls++
				rollup.TotalDuration += c.Duration
			}
		}
		for _, lead := range closedWon {
			if lead.AssignedAgentID != nil && *lead.AssignedAgentID == agent.ID {
				rollup.LeadsConverted++
			}
		}
		if rollup.Calls > 0 {
			rollup.AvgCallDuration = round1(float64(rollup.TotalDuration) / float64(rollup.Calls))
		}
		if rollup.Calls > 0 || rollup.LeadsConverted > 0 {
			data.Agents = append(data.Agents, rollup)
		}
	}

	// Day-by-day breakdown: plain group-by-day over date prefixes,
	// every calendar day of the period inclusive.
	for day := periodStart; !day.After(periodEnd); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		bucket := DailyBucket{Date: date}
		for _, c := range calls {
			if c.CreatedAt.Format(dateLayout) == date {
				bucket.Calls++
			}
		}
		for _, lead := range leadsCreated {
			if lead.CreatedAt.Format(dateLayout) == date {
				bucket.LeadsCreated++
			}
		}
		for _, lead := range qualified {
			if lead.UpdatedAt.Format(dateLayout) == date {
				bucket.LeadsConverted++
			}
		}
		for _, lead := range closedWon {
			if lead.UpdatedAt.Format(dateLayout) == date {
				bucket.LeadsConverted++
			}
		}
		data.Daily = append(data.Daily, bucket)
	}

	return data
}

// List returns the organization's reports, newest first.
func (s *Service) List(ctx context.Context, actor model.Actor) ([]model.Report, error) {
	var reports []model.Report
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", actor.OrganizationID).
		Order("created_at desc").
		Find(&reports).Error
	return reports, err
}

// Get fetches one report, scoped to the actor's organization.
func (s *Service) Get(ctx context.Context, actor model.Actor, reportID uint) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", reportID, actor.OrganizationID).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &report, nil
}

// Delete removes a report. Reports are immutable otherwise.
func (s *Service) Delete(ctx context.Context, actor model.Actor, reportID uint) error {
	if !actor.CanManage() {
		return fmt.Errorf("report deletion requires owner or manager role: %w", apperror.ErrUnauthorized)
	}
	report, err := s.Get(ctx, actor, reportID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(report).Error
}

// Decode unmarshals a persisted report payload back into its typed
// form.
func Decode(report *model.Report) (*Data, error) {
	var data Data
	if err := json.Unmarshal(report.Data, &data); err != nil {
		return nil, fmt.Errorf("could not decode report payload: %w", err)
	}
	return &data, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
