package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/orgdeskhq/orgdesk/internal/config"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/orgdeskhq/orgdesk/internal/handler"
	"github.com/orgdeskhq/orgdesk/internal/middleware"
	"github.com/orgdeskhq/orgdesk/internal/repository"
	"github.com/orgdeskhq/orgdesk/internal/service"
	"github.com/orgdeskhq/orgdesk/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	mongoOrgRepo := repository.NewMongoOrganizationRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	orgRepo := repository.NewCachedOrganizationRepository(mongoOrgRepo, cacheRepo)
	officeRepo := repository.NewMongoOfficeRepository(deps.MongoDB)
	bankAccountRepo := repository.NewMongoBankAccountRepository(deps.MongoDB)
	refreshTokenRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)

	// Object storage is optional; document uploads fail cleanly without it
	var documentRepo domain.DocumentRepository
	if deps.Config.S3.Endpoint != "" {
		s3Repo, err := repository.NewS3DocumentRepository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: failed to initialize document storage: %v", err)
		} else {
			documentRepo = s3Repo
		}
	}

	// Services
	catalog := deps.Config.Features.Catalog
	entitlementService := service.NewEntitlementService(userRepo, orgRepo, catalog)
	authService := service.NewAuthService(userRepo, entitlementService)
	tokenService := service.NewTokenService(deps.Config.JWT, refreshTokenRepo, entitlementService)
	orgService := service.NewOrgService(orgRepo, userRepo, catalog)
	overviewService := service.NewOverviewService(orgRepo, officeRepo, bankAccountRepo)
	officeService := service.NewOfficeService(officeRepo)
	bankAccountService := service.NewBankAccountService(bankAccountRepo, documentRepo)

	// Expired sessions are normally reaped by Mongo's TTL monitor; the
	// hourly sweep covers deployments where it is disabled
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := tokenService.PurgeExpiredTokens(sweepCtx); err != nil {
				log.Printf("Warning: refresh token sweep failed: %v", err)
			}
			cancel()
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	orgHandler := handler.NewOrganizationHandler(orgService, overviewService, entitlementService.Catalog())
	officeHandler := handler.NewOfficeHandler(officeService)
	bankAccountHandler := handler.NewBankAccountHandler(bankAccountService)

	app := fiber.New(fiber.Config{
		AppName:      "OrgDesk API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "orgdesk-api",
		})
	})

	v1 := app.Group("/v1")
	v1.Use(middleware.Idempotency(deps.RedisClient, 24*time.Hour))

	requireAuth := middleware.RequireAuth(deps.Config.JWT.Secret, entitlementService)

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	// Authenticated self endpoint
	v1.Get("/me", requireAuth, authHandler.Me)

	// ===========================================
	// PLATFORM API - /v1/platform/* (requires 'super_admin' role)
	// ===========================================
	platform := v1.Group("/platform")
	platform.Use(requireAuth)
	platform.Use(middleware.RequireRoles(domain.RoleSuperAdmin))

	platform.Get("/features", orgHandler.Catalog)

	platformOrgs := platform.Group("/organizations")
	platformOrgs.Post("/", orgHandler.Create)
	platformOrgs.Get("/", orgHandler.List)
	platformOrgs.Get("/:id", orgHandler.Get)
	platformOrgs.Put("/:id", orgHandler.Update)
	platformOrgs.Put("/:id/features", orgHandler.SetFeatures)
	platformOrgs.Delete("/:id", orgHandler.Delete)
	platformOrgs.Get("/:id/overview", orgHandler.Overview)

	// ===========================================
	// ORG API - /v1/org/* (requires 'org_admin' role, scoped to own org)
	// ===========================================
	org := v1.Group("/org")
	org.Use(requireAuth)
	org.Use(middleware.RequireRoles(domain.RoleOrgAdmin))

	org.Get("/", orgHandler.MyOrganization)
	org.Get("/overview", orgHandler.MyOverview)

	offices := org.Group("/offices")
	offices.Use(middleware.RequireFeature(domain.FeatureOffices))
	offices.Post("/", officeHandler.Create)
	offices.Get("/", officeHandler.List)
	offices.Get("/:id", officeHandler.Get)
	offices.Put("/:id", officeHandler.Update)
	offices.Delete("/:id", officeHandler.Delete)

	bankAccounts := org.Group("/bank-accounts")
	bankAccounts.Use(middleware.RequireFeature(domain.FeatureBankAccounts))
	bankAccounts.Post("/", bankAccountHandler.Create)
	bankAccounts.Get("/", bankAccountHandler.List)
	bankAccounts.Get("/:id", bankAccountHandler.Get)
	bankAccounts.Put("/:id", bankAccountHandler.Update)
	bankAccounts.Delete("/:id", bankAccountHandler.Delete)
	bankAccounts.Post("/:id/document",
		middleware.RequireFeature(domain.FeatureDocuments),
		bankAccountHandler.UploadDocument,
	)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
