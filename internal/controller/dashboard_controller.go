package controller

import (
	"time"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// DashboardStats is the organization-wide overview panel.
type DashboardStats struct {
	TotalLeads      int64             `json:"total_leads"`
	UnassignedLeads int64             `json:"unassigned_leads"`
	ActiveCampaigns int64             `json:"active_campaigns"`
	CallsToday      int64             `json:"calls_today"`
	ConversionRate  float64           `json:"conversion_rate"`
	StatusCounts    map[string]int64  `json:"status_counts"`
	DailyStats      []DailyLeadStat   `json:"daily_stats"`
	TopAgents       []TopAgentSummary `json:"top_agents"`
}

type DailyLeadStat struct {
	Date     string `json:"date"`
	NewLeads int64  `json:"new_leads"`
	Calls    int64  `json:"calls"`
}

type TopAgentSummary struct {
	AgentID   uint   `json:"agent_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Assigned  int64  `json:"assigned"`
	Converted int64  `json:"converted"`
}

// GetDashboardStats aggregates the overview counters. The independent
// queries run concurrently; any failure fails the whole request.
func GetDashboardStats(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	db := database.GetDB()
	orgID := claims.OrganizationID

	var stats DashboardStats
	stats.StatusCounts = make(map[string]int64)

	g, ctx := errgroup.WithContext(c.Context())

	g.Go(func() error {
		return db.WithContext(ctx).Model(&model.Lead{}).
			Where("organization_id = ?", orgID).
			Count(&stats.TotalLeads).Error
	})

	g.Go(func() error {
		return db.WithContext(ctx).Model(&model.Lead{}).
			Where("organization_id = ? AND assigned_agent_id IS NULL", orgID).
			Count(&stats.UnassignedLeads).Error
	})

	g.Go(func() error {
		return db.WithContext(ctx).Model(&model.Campaign{}).
			Where("organization_id = ? AND status = ?", orgID, model.CampaignStatusActive).
			Count(&stats.ActiveCampaigns).Error
	})

	g.Go(func() error {
		today := time.Now().Format("2006-01-02")
		return db.WithContext(ctx).Model(&model.Call{}).
			Where("organization_id = ? AND DATE(created_at) = ?", orgID, today).
			Count(&stats.CallsToday).Error
	})

	g.Go(func() error {
		type statusCount struct {
			Status string
			Count  int64
		}
		var rows []statusCount
		err := db.WithContext(ctx).Model(&model.Lead{}).
			Select("status, COUNT(*) as count").
			Where("organization_id = ?", orgID).
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			stats.StatusCounts[r.Status] = r.Count
		}
		return nil
	})

	g.Go(func() error {
		var top []TopAgentSummary
		err := db.WithContext(ctx).Table("users").
			Select(`users.id as agent_id, users.first_name, users.last_name,
				COUNT(leads.id) as assigned,
				SUM(CASE WHEN leads.status IN (?, ?) THEN 1 ELSE 0 END) as converted`,
				model.LeadStatusConverted, model.LeadStatusClosedWon).
			Joins("LEFT JOIN leads ON leads.assigned_agent_id = users.id AND leads.deleted_at IS NULL").
			Where("users.organization_id = ? AND users.role = ?", orgID, model.RoleAgent).
			Group("users.id").
			Order("converted DESC").
			Limit(5).
			Scan(&top).Error
		if err != nil {
			return err
		}
		stats.TopAgents = top
		return nil
	})

	if err := g.Wait(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute dashboard stats",
		})
	}

	won := stats.StatusCounts[model.LeadStatusClosedWon] + stats.StatusCounts[model.LeadStatusConverted]
	if stats.TotalLeads > 0 {
		stats.ConversionRate = float64(won) / float64(stats.TotalLeads) * 100
	}

	// Last 7 days, oldest first. Sequential on purpose: 14 tiny
	// indexed counts are not worth the fan-out.
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		stat := DailyLeadStat{Date: date.Format("2006-01-02")}

		db.Model(&model.Lead{}).
			Where("organization_id = ? AND DATE(created_at) = ?", orgID, stat.Date).
			Count(&stat.NewLeads)
		db.Model(&model.Call{}).
			Where("organization_id = ? AND DATE(created_at) = ?", orgID, stat.Date).
			Count(&stat.Calls)

		stats.DailyStats = append(stats.DailyStats, stat)
	}

	return c.JSON(stats)
}
