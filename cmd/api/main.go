package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"leadflow_backend/internal/controller"
	"leadflow_backend/internal/middleware"
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/config"
	"leadflow_backend/pkg/cron"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/email"
	"leadflow_backend/pkg/seed"
	"leadflow_backend/pkg/telephony"
	"leadflow_backend/pkg/utils/jwt"
	"leadflow_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Telephony provider webhook (unauthenticated, matched by call SID)
	api.Post("/webhooks/telephony", controller.HandleTelephonyWebhook)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Post("/users/invite", middleware.RequireManager(), controller.InviteUser)

	// Lead routes
	leads := protected.Group("/leads")
	leads.Post("/", middleware.RequireManager(), controller.CreateLead)
	leads.Get("/", controller.GetLeads)
	leads.Get("/export", controller.ExportLeads)
	leads.Get("/:id", middleware.CheckLeadAccess(), controller.GetLead)
	leads.Put("/:id/status", middleware.CheckLeadAccess(), controller.UpdateLeadStatus)
	leads.Get("/:id/activities", middleware.CheckLeadAccess(), controller.GetLeadActivities)
	leads.Post("/:id/calls", middleware.CheckLeadAccess(), controller.PlaceCall)
	leads.Get("/:id/calls", middleware.CheckLeadAccess(), controller.GetLeadCalls)

	// Assignment routes (manager and owner only)
	assignments := protected.Group("/assignments", middleware.RequireManager())
	assignments.Post("/batch", controller.BatchAssignLeads)
	assignments.Post("/distribute", controller.AutoDistributeLeads)
	assignments.Put("/leads/:id", controller.ReassignLead)
	assignments.Put("/bulk", controller.BulkReassignLeads)

	// Import routes
	imports := protected.Group("/imports", middleware.RequireManager())
	imports.Post("/leads", controller.ImportLeads)
	imports.Post("/leads/validate", controller.ValidateLeadCSV)

	// Report routes
	reports := protected.Group("/reports", middleware.RequireRole(model.RoleOwner, model.RoleManager, model.RoleClient))
	reports.Post("/", controller.GenerateReport)
	reports.Get("/", controller.ListReports)
	reports.Get("/:id", controller.GetReport)
	reports.Get("/:id/export", controller.ExportReport)
	reports.Delete("/:id", middleware.RequireManager(), controller.DeleteReport)

	// Campaign routes
	campaigns := protected.Group("/campaigns")
	campaigns.Post("/", middleware.RequireManager(), controller.CreateCampaign)
	campaigns.Get("/", controller.GetCampaigns)
	campaigns.Put("/:id/status", middleware.RequireManager(), controller.UpdateCampaignStatus)

	// Client routes
	clients := protected.Group("/clients", middleware.RequireManager())
	clients.Post("/", controller.CreateClient)
	clients.Get("/", controller.GetClients)
	clients.Put("/:id", controller.UpdateClient)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.Get("/stats", controller.GetDashboardStats)
}

func main() {
	cfg := config.Load()

	jwt.Init(cfg.JWT.Secret)

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Printf("RESEND_API_KEY not set, email notifications disabled")
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.Organization{},
		&model.User{},
		&model.Client{},
		&model.Campaign{},
		&model.Lead{},
		&model.Call{},
		&model.Activity{},
		&model.Report{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	if cfg.Storage.Bucket != "" {
		if err := storage.InitStorage(cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			log.Printf("Export archival disabled: %v", err)
		}
	}

	if cfg.SeedDemo {
		seed.SeedDemoData(database.GetDB())
	}

	provider := telephony.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
	controller.InitControllers(provider, cfg.Twilio.CallerID)

	cron.InitReportSnapshotCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
