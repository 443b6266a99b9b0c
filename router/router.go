package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"expensetracker/api"
	"expensetracker/config"
	"expensetracker/database"
	_ "expensetracker/docs"
	"expensetracker/middleware"
	"expensetracker/service"
	"expensetracker/store"
)

// SetupRouter wires every route of the service.
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(middleware.Metrics())

	expenseStore := store.NewGormStore(database.GetDB())
	receiptStorage := service.NewLocalReceiptStorage(&cfg.Storage)

	authHandler := api.NewAuthHandler(cfg)
	expenseHandler := api.NewExpenseHandler(expenseStore)
	exportHandler := api.NewExportHandler(expenseStore)
	uploadHandler := api.NewUploadHandler(receiptStorage, cfg.Storage.MaxUploadBytes())
	categoryHandler := api.NewCategoryHandler()

	// Locally stored receipt images.
	r.Static("/receipts", cfg.Storage.ReceiptDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			limited := auth.Group("")
			limited.Use(middleware.LoginRateLimit(10, time.Minute))
			{
				limited.POST("/signup", authHandler.Signup)
				limited.POST("/signin", authHandler.Signin)
				limited.POST("/password/request-reset", authHandler.RequestPasswordReset)
				limited.POST("/password/reset", authHandler.ResetPassword)
			}
		}

		apiGroup.GET("/categories", categoryHandler.List)

		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.Profile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			expenses := authorized.Group("/expenses")
			{
				expenses.GET("", expenseHandler.List)
				expenses.POST("", expenseHandler.Create)
				expenses.GET("/analytics", expenseHandler.Analytics)
				expenses.GET("/monthly-report", expenseHandler.MonthlyReport)
				expenses.GET("/recent", expenseHandler.Recent)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			authorized.POST("/upload-receipt", uploadHandler.UploadReceipt)

			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	return r
}

// CORSMiddleware handles cross-origin requests from the web client.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
