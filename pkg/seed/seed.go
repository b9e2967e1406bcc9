package seed

import (
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"leadflow_backend/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var leadSources = []string{"website", "referral", "cold_call", "linkedin", "trade_show"}

// SeedDemoData creates a demo organization with an owner, three agents,
// a client, a campaign and a spread of faker-generated leads and calls.
// Safe to call repeatedly; it bails when the demo org already exists.
func SeedDemoData(db *gorm.DB) {
	var existing model.Organization
	if err := db.Where("slug = ?", "acme-lead-agency").First(&existing).Error; err == nil {
		log.Println("Demo data already seeded, skipping")
		return
	}

	gofakeit.Seed(42)

	org := model.Organization{Name: "Acme Lead Agency"}
	if err := db.Create(&org).Error; err != nil {
		log.Printf("Could not seed organization: %v", err)
		return
	}

	password, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)

	owner := model.User{
		OrganizationID: org.ID,
		Email:          "owner@acme-leads.test",
		Password:       string(password),
		Role:           model.RoleOwner,
		FirstName:      "Olivia",
		LastName:       "Owner",
	}
	db.Create(&owner)

	agents := make([]model.User, 3)
	for i := range agents {
		agents[i] = model.User{
			OrganizationID: org.ID,
			Email:          gofakeit.Email(),
			Password:       string(password),
			Role:           model.RoleAgent,
			FirstName:      gofakeit.FirstName(),
			LastName:       gofakeit.LastName(),
			PhoneNumber:    gofakeit.Phone(),
		}
		db.Create(&agents[i])
	}

	client := model.Client{
		OrganizationID: org.ID,
		CompanyName:    gofakeit.Company(),
		ContactName:    gofakeit.Name(),
		Email:          gofakeit.Email(),
		Phone:          gofakeit.Phone(),
		CostPerLead:    200,
	}
	db.Create(&client)

	campaign := model.Campaign{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Name:           "Q3 Outbound Push",
		Status:         model.CampaignStatusActive,
		TargetLeads:    100,
		Budget:         20000,
	}
	db.Create(&campaign)

	for i := 0; i < 50; i++ {
		campaignID := campaign.ID
		clientID := client.ID
		tags, _ := json.Marshal([]string{gofakeit.BuzzWord()})

		lead := model.Lead{
			OrganizationID: org.ID,
			CampaignID:     &campaignID,
			ClientID:       &clientID,
			FirstName:      gofakeit.FirstName(),
			LastName:       gofakeit.LastName(),
			Phone:          gofakeit.Phone(),
			Email:          gofakeit.Email(),
			Company:        gofakeit.Company(),
			JobTitle:       gofakeit.JobTitle(),
			Source:         leadSources[rand.Intn(len(leadSources))],
			Status:         model.LeadStatuses[rand.Intn(len(model.LeadStatuses))],
			Priority:       rand.Intn(6),
			Score:          rand.Intn(101),
			Tags:           datatypes.JSON(tags),
		}
		// Leave roughly a third unassigned so distribution demos have
		// material to work with.
		if rand.Intn(3) > 0 {
			agentID := agents[rand.Intn(len(agents))].ID
			lead.AssignedAgentID = &agentID
		}
		db.Create(&lead)

		if lead.AssignedAgentID != nil && rand.Intn(2) == 0 {
			started := time.Now().AddDate(0, 0, -rand.Intn(14))
			call := model.Call{
				OrganizationID: org.ID,
				LeadID:         lead.ID,
				AgentID:        *lead.AssignedAgentID,
				Direction:      model.CallDirectionOutbound,
				Status:         model.CallStatusCompleted,
				Outcome:        model.CallOutcomeConnected,
				Duration:       30 + rand.Intn(600),
				CallSID:        gofakeit.UUID(),
				ToNumber:       lead.Phone,
				StartedAt:      &started,
			}
			db.Create(&call)
		}
	}

	log.Printf("Seeded demo organization %q with %d agents and 50 leads", org.Name, len(agents))
}
