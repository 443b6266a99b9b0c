package main

import (
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/router"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal expense tracking API with signup/signin, expense management, analytics and receipt uploads
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "path to an external config file (optional)")
	flag.StringVar(&configFile, "c", "", "path to an external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showVersion, "v", false, "print version and exit (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("expensetracker v1.0.0")
		return
	}

	// .env is optional, real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Command-line port overrides the configured one.
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	logger.Init(cfg.Server.Mode)
	defer logger.Sync()

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg)

	logger.Info("server starting",
		zap.String("addr", cfg.Server.Port),
		zap.String("swagger", "http://localhost"+cfg.Server.Port+"/swagger/index.html"))

	if err := r.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
