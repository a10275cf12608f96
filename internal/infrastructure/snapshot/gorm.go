package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is a snapshot row in the relational store
type Record struct {
	Key       string     `gorm:"primaryKey;size:191" json:"key"`
	Value     string     `gorm:"type:text;not null" json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (Record) TableName() string {
	return "snapshots"
}

// GormStore keeps snapshots in a SQL table through gorm
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewGormStore creates a gorm-backed store. The snapshots table must exist.
func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{
		db:  db,
		ttl: ttl,
	}
}

// Get retrieves a snapshot that has not expired
func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec Record
	err := g.db.WithContext(ctx).
		Where("key = ? AND (expires_at IS NULL OR expires_at > ?)", key, time.Now().UTC()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return []byte(rec.Value), nil
}

// Put upserts a snapshot
func (g *GormStore) Put(ctx context.Context, key string, value []byte) error {
	rec := Record{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	if g.ttl > 0 {
		expiresAt := rec.UpdatedAt.Add(g.ttl)
		rec.ExpiresAt = &expiresAt
	}

	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

// Delete removes a snapshot
func (g *GormStore) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes expired snapshots and returns how many were removed
func (g *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := g.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC()).
		Delete(&Record{})
	return result.RowsAffected, result.Error
}
