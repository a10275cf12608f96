// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	models := []interface{}{
		&snapshot.Record{},
	}

	for _, model := range models {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for snapshot lookups
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_snapshots_updated_at ON snapshots(updated_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_cart_keys ON snapshots(key) WHERE key LIKE 'cart:%'",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	m.log.WithField("count", len(indexes)).Info("Database indexes ensured")
	return nil
}

// PurgeExpiredSnapshots removes expired snapshot rows
func (m *Migration) PurgeExpiredSnapshots(ctx context.Context, store *snapshot.GormStore) error {
	removed, err := store.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired snapshots: %w", err)
	}

	if removed > 0 {
		m.log.WithField("removed", removed).Info("Purged expired snapshots")
	}
	return nil
}

// GetTableInfo logs row counts for the snapshot table
func (m *Migration) GetTableInfo() error {
	var count int64
	if err := m.db.Model(&snapshot.Record{}).Count(&count).Error; err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{
		"table":   snapshot.Record{}.TableName(),
		"records": count,
	}).Info("Database table info")
	return nil
}
