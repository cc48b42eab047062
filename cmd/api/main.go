package main

import (
	"log"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/auth"
	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/handler"
	"procurement/internal/middleware"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Procurement API
// @version         1.0
// @description     RFQ, quotation and approval-workflow backend.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up dependencies (Repository -> Engine/Service -> Handler)
	txm := repository.NewTransactionManager(db)
	accountRepo := repository.NewAccountRepository(db)
	rfqRepo := repository.NewRFQRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	decisionRepo := repository.NewFinalDecisionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokenService := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	identityResolver := auth.NewIdentityResolver(accountRepo)
	hasher := auth.NewBcryptHasher()

	engine := workflow.NewEngine(txm, rfqRepo, quotationRepo, supplierRepo, approvalRepo, decisionRepo, auditRepo)

	authService := service.NewAuthService(accountRepo, tokenService, hasher)
	accountService := service.NewAccountService(accountRepo, auditRepo, hasher)
	rfqService := service.NewRFQService(rfqRepo, decisionRepo, auditRepo, engine)
	quotationService := service.NewQuotationService(quotationRepo, rfqRepo, supplierRepo, auditRepo, engine)
	supplierService := service.NewSupplierService(supplierRepo, auditRepo, txm, engine)
	approvalService := service.NewApprovalService(approvalRepo, engine)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	rfqHandler := handler.NewRFQHandler(rfqService, quotationService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	authMW := middleware.RequireAuth(tokenService, identityResolver)
	authHandler.RegisterRoutes(router.Group(""), authMW)
	accountHandler.RegisterRoutes(router.Group(""), authMW)
	rfqHandler.RegisterRoutes(router.Group(""), authMW)
	quotationHandler.RegisterRoutes(router.Group(""), authMW)
	supplierHandler.RegisterRoutes(router.Group(""), authMW)
	approvalHandler.RegisterRoutes(router.Group(""), authMW)
	auditHandler.RegisterRoutes(router.Group(""), authMW)

	log.Printf("Server listening on :%s", cfg.HTTP.Port)
	if err := router.Run(":" + cfg.HTTP.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
