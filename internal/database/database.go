package database

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/sentinel-labs/sentinel/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// InitDatabase initializes the database connection
func InitDatabase(dsn string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate the schema
	if err := DB.AutoMigrate(
		&models.AlertRule{},
		&models.AlertEvent{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database initialized successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SeedRules inserts the starter rule set when the rules table is empty.
func SeedRules(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.AlertRule{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []models.AlertRule{
		{
			Name:                   "High CPU Usage",
			TriggerScript:          "cpu_usage_trigger",
			Parameters:             mustJSON(map[string]interface{}{"server": "SRV-001", "threshold": 90}),
			Importance:             models.ImportanceHigh,
			Category:               "System",
			PeriodSeconds:          300,
			DisplayDurationMinutes: 1440,
			ActionConfig:           mustJSON(map[string]interface{}{"emails": []string{"admin@example.com"}}),
			Comment:                "Critical server monitoring",
			IsActive:               true,
		},
		{
			Name:                   "Memory Leak Warning",
			TriggerScript:          "memory_leak_trigger",
			Parameters:             mustJSON(map[string]interface{}{"service": "SRV-DB-02", "limit_mb": 512}),
			Importance:             models.ImportanceMedium,
			Category:               "System",
			PeriodSeconds:          600,
			DisplayDurationMinutes: 720,
			ActionConfig:           mustJSON(map[string]interface{}{"emails": []string{"devops@example.com"}}),
			Comment:                "Monitor for potential leaks",
			IsActive:               true,
		},
		{
			Name:                   "Low Disk Space",
			TriggerScript:          models.TriggerManual,
			Parameters:             mustJSON(map[string]interface{}{"metric": "disk", "threshold": 10, "ticker": "SRV-STORAGE"}),
			Importance:             models.ImportanceCritical,
			Category:               "System",
			PeriodSeconds:          3600,
			DisplayDurationMinutes: 1440,
			ActionConfig:           mustJSON(map[string]interface{}{"emails": []string{}}),
			Comment:                "Storage capacity warning",
			IsActive:               true,
		},
		{
			Name:                   "API Latency Spike",
			TriggerScript:          models.TriggerManual,
			Parameters:             mustJSON(map[string]interface{}{"metric": "latency", "threshold": 500, "ticker": "API-GATEWAY"}),
			Importance:             models.ImportanceLow,
			Category:               "System",
			PeriodSeconds:          60,
			DisplayDurationMinutes: 60,
			ActionConfig:           mustJSON(map[string]interface{}{"emails": []string{}}),
			Comment:                "Performance degradation check",
			IsActive:               false,
		},
	}
	if err := db.Create(&seeds).Error; err != nil {
		return fmt.Errorf("failed to seed rules: %w", err)
	}
	log.Printf("Seeded %d starter rules", len(seeds))
	return nil
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
