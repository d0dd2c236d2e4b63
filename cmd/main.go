package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-labs/sentinel/internal/config"
	"github.com/sentinel-labs/sentinel/internal/database"
	"github.com/sentinel-labs/sentinel/internal/handlers"
	"github.com/sentinel-labs/sentinel/internal/routes"
	"github.com/sentinel-labs/sentinel/internal/scheduler"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/trigger"
	"github.com/sentinel-labs/sentinel/workflow"
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("Failed to load config from %s, using defaults: %v", *configFile, err)
		cfg = config.DefaultConfig()
	}

	// Initialize database
	if err := database.InitDatabase(cfg.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.SeedRules(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// Add middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Set up services with configuration
	setupServices(cfg)

	// Set up routes
	routes.SetupRoutes(r)

	// Start background loops
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	h := handlers.GetGlobalHandler()
	sched := scheduler.New(
		h.SweepService(),
		h.SyncService(),
		h.Clock(),
		time.Duration(cfg.Scheduler.SweepIntervalSeconds)*time.Second,
		time.Duration(cfg.Scheduler.SyncIntervalSeconds)*time.Second,
		time.Duration(cfg.Scheduler.TickIntervalSeconds)*time.Second,
	)
	sched.Start(ctx)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Live blotter: http://%s/api/v1/events/live", addr)
	log.Printf("Health check: http://%s/health", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	sched.Wait()
}

// setupServices configures all services with the application configuration
func setupServices(cfg *config.Config) {
	st := store.NewGormStore(database.GetDB())

	var api workflow.API
	client := workflow.NewClient(cfg.Workflow.APIURL, cfg.Workflow.UIURL, time.Duration(cfg.Workflow.TimeoutSeconds)*time.Second)
	if client.Enabled() {
		api = client
		trigger.SetWorkflowRunner(client)
	}

	// Store the configured handler globally so routes can access it
	handlers.SetGlobalHandler(handlers.NewSentinelHandler(st, cfg, api))
}
