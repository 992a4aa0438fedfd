package main

import (
	"context"
	"net/http"
	"time"

	"github.com/autoservice-manager/workshop-api/config"
	"github.com/autoservice-manager/workshop-api/controllers"
	"github.com/autoservice-manager/workshop-api/middleware"
	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/services"
	"github.com/autoservice-manager/workshop-api/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogger(cfg)
	log.Info().Str("env", cfg.GoEnv).Msg("Starting AutoService workshop API...")

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	log.Info().Msg("Database migration completed successfully")

	if err := setupDocumentStore(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document store")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Info().Msgf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

// setupDocumentStore selects where invoice PDFs are written
func setupDocumentStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.DocumentStore {
	case "s3":
		store, err := services.NewS3DocumentStore(ctx, cfg)
		if err != nil {
			return err
		}
		services.SetDocumentStore(store)
		log.Info().Str("bucket", cfg.AWSS3Bucket).Msg("Invoice documents stored in S3")
	default:
		utils.DocumentsDir = cfg.DocumentsDir
		services.SetDocumentStore(services.NewLocalDocumentStore(cfg.DocumentsDir))
		log.Info().Str("dir", cfg.DocumentsDir).Msg("Invoice documents stored locally")
	}
	return nil
}

// setupRouter registers middleware and every API route
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		customers := v1.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.ListCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
			customers.GET("/:id/vehicles", controllers.ListCustomerVehicles)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", controllers.CreateVehicle)
			vehicles.GET("", controllers.ListVehicles)
			vehicles.GET("/:id", controllers.GetVehicle)
			vehicles.PUT("/:id", controllers.UpdateVehicle)
			vehicles.DELETE("/:id", controllers.DeleteVehicle)
		}

		parts := v1.Group("/parts")
		{
			parts.POST("", controllers.CreatePart)
			parts.GET("", controllers.ListParts)
			parts.GET("/:id", controllers.GetPart)
			parts.PUT("/:id", controllers.UpdatePart)
			parts.DELETE("/:id", controllers.DeletePart)
			parts.POST("/:id/stock", controllers.AdjustPartStock)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("", controllers.ListOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id", controllers.UpdateOrder)
			orders.PATCH("/:id", controllers.PatchOrder)
			orders.DELETE("/:id", controllers.DeleteOrder)

			orders.GET("/:id/parts", controllers.ListOrderParts)
			orders.POST("/:id/parts", controllers.AttachOrderPart)
			orders.DELETE("/:id/parts/:orderPartId", controllers.DetachOrderPart)

			orders.POST("/:id/invoice", controllers.FinalizeOrder)
			orders.GET("/:id/invoice", controllers.GetOrderInvoice)
			orders.POST("/:id/invoice/document", controllers.RegenerateInvoiceDocument)
		}

		v1.GET("/queue", controllers.GetQueue)
		v1.GET("/stations", controllers.ListStations)
		v1.GET("/documents/:filename", controllers.GetDocument)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "AutoService workshop API is running",
	})
}

// databaseStatus checks database connectivity and returns the tables in use
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Works on both postgres and sqlite
	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
		"driver":  db.Dialector.Name(),
	})
}
