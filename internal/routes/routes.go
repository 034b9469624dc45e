package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/config"
	"github.com/example/pandol/internal/handlers"
	"github.com/example/pandol/internal/middleware"
	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/services"
)

// Services are the application services the HTTP layer calls into.
// MemberRepo backs the admin member endpoints and Reconciles, when set,
// feeds the health endpoint.
type Services struct {
	Auth       *services.AuthService
	Members    *services.MemberService
	Credits    *services.CreditService
	Sales      *services.SaleService
	Reports    *services.ReportService
	MemberRepo services.MemberRepository
	Reconciles handlers.ReconcileStatus
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth, !cfg.IsProduction())
	profileHandler := handlers.NewProfileHandler(svc.Members)
	adminHandler := handlers.NewAdminHandler(db, svc.MemberRepo)
	creditHandler := handlers.NewCreditHandler(svc.Credits)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	eventHandler := handlers.NewEventHandler(db)
	letterheadHandler := handlers.NewLetterheadHandler(svc.Reports)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	posHandler := handlers.NewPosHandler(svc.Sales)
	healthHandler := handlers.NewHealthHandler(db, svc.Reconciles)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Protected routes
	protected := api.Group("", middleware.Auth(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleCashier)

	members := protected.Group("/members")
	members.Get("/me", profileHandler.GetMemberData)
	members.Get("/me/profile", profileHandler.GetProfile)
	members.Put("/:id/profile", profileHandler.UpdateProfile)
	members.Put("/:id/profile-picture", profileHandler.UploadProfilePicture)
	members.Delete("/:id/profile-picture", profileHandler.DeleteProfilePicture)

	members.Get("/", adminOnly, adminHandler.ListMembers)
	members.Post("/", adminOnly, adminHandler.CreateMember)
	members.Get("/:id", adminOnly, adminHandler.GetMember)
	members.Put("/:id", adminOnly, adminHandler.UpdateMember)
	members.Get("/:id/credits", adminOnly, creditHandler.ListCredits)
	members.Post("/:id/credits", adminOnly, creditHandler.PostCredit)

	admin := protected.Group("/admin", adminOnly)
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Post("/reconcile", creditHandler.Reconcile)
	admin.Get("/letterhead", letterheadHandler.GetLetterhead)
	admin.Put("/letterhead", letterheadHandler.UpdateLetterhead)

	// Catalog routes
	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", adminOnly, catalogHandler.CreateCategory)
	categories.Put("/:id", adminOnly, catalogHandler.UpdateCategory)
	categories.Delete("/:id", adminOnly, catalogHandler.DeleteCategory)

	productHandler.RegisterProductRoutes(protected.Group("/products"), adminOnly)

	events := protected.Group("/events")
	events.Get("/", eventHandler.ListEvents)
	events.Post("/", adminOnly, eventHandler.CreateEvent)
	events.Put("/:id", adminOnly, eventHandler.UpdateEvent)
	events.Delete("/:id", adminOnly, eventHandler.DeleteEvent)

	reports := protected.Group("/reports", adminOnly)
	reports.Get("/", reportHandler.ListOptions)
	reports.Get("/:kind", reportHandler.Preview)
	reports.Get("/:kind/print", reportHandler.Print)
	reports.Get("/:kind/csv", reportHandler.CSV)

	pos := protected.Group("/pos", staff)
	pos.Post("/transactions", posHandler.Checkout)
	pos.Get("/transactions", posHandler.ListTransactions)
}
