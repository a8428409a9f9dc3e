package database

import (
	"labstock/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Equipment{},
		&models.CheckoutRecord{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates indexes that GORM doesn't create automatically.
// The partial unique index backs the at-most-one-open-record rule: the
// database itself rejects a second open ledger row for the same SKU.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_records_one_open_per_sku
		   ON checkout_records (sku) WHERE return_date IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_checkout_records_open_lookup
		   ON checkout_records (sku, id DESC) WHERE return_date IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_equipment_overdue
		   ON equipment (due_date) WHERE status = 'Checked Out'`,
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			return log.Err("Failed to create index", err, "sql", indexSQL)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
