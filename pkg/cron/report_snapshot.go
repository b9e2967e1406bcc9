// pkg/cron/report_snapshot.go

package cron

import (
	"context"
	"log"
	"sync"
	"time"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/email"
	"leadflow_backend/pkg/report"

	"github.com/robfig/cron/v3"
)

var (
	lastSnapshotRun time.Time
	snapshotMutex   sync.Mutex
)

// InitReportSnapshotCron schedules a trailing-7-day report snapshot per
// organization every Monday morning, mailed to the owner.
func InitReportSnapshotCron() {
	c := cron.New()

	_, err := c.AddFunc("0 8 * * 1", func() {
		snapshotMutex.Lock()
		defer snapshotMutex.Unlock()

		if time.Since(lastSnapshotRun) < 23*time.Hour {
			log.Printf("Weekly snapshots already generated today, skipping...")
			return
		}

		generateWeeklySnapshots()
		lastSnapshotRun = time.Now()
	})

	if err != nil {
		log.Printf("Could not initialize report snapshot cron: %v", err)
		return
	}

	c.Start()
	log.Printf("Report snapshot cron initialized successfully")
}

func generateWeeklySnapshots() {
	db := database.GetDB()
	reports := report.NewService(db)
	ctx := context.Background()

	now := time.Now()
	periodEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location()).AddDate(0, 0, -1)
	periodStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -7)

	var orgs []model.Organization
	if err := db.Find(&orgs).Error; err != nil {
		log.Printf("Could not fetch organizations for snapshots: %v", err)
		return
	}

	for _, org := range orgs {
		var owner model.User
		if err := db.Where("organization_id = ? AND role = ?", org.ID, model.RoleOwner).
			Order("created_at asc").First(&owner).Error; err != nil {
			log.Printf("Organization %d has no owner, skipping snapshot", org.ID)
			continue
		}

		rep, err := reports.Generate(ctx, owner.AsActor(), "weekly", periodStart, periodEnd)
		if err != nil {
			log.Printf("Could not generate weekly snapshot for organization %d: %v", org.ID, err)
			continue
		}

		if email.GlobalEmailService == nil {
			continue
		}

		data, err := report.Decode(rep)
		if err != nil {
			log.Printf("Could not decode snapshot for organization %d: %v", org.ID, err)
			continue
		}

		err = email.GlobalEmailService.SendWeeklyReport(owner.Email, email.WeeklyReportData{
			OrganizationName: org.Name,
			PeriodStart:      periodStart,
			PeriodEnd:        periodEnd,
			TotalLeads:       data.Summary.TotalLeads,
			ClosedWonLeads:   data.Summary.ClosedWonLeads,
			TotalCalls:       data.Summary.TotalCalls,
			ConversionRate:   data.Summary.ConversionRate,
			Revenue:          data.Summary.Revenue,
		})
		if err != nil {
			log.Printf("Could not send weekly report email to %s: %v", owner.Email, err)
		}
	}
}
