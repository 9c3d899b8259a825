package repository

import (
	"context"
	"fmt"

	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/notify"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultAuditLimit = 50

// Repository keeps the audit trail of user-facing notifications in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Repository{
		db: db,
	}, nil
}

// Migrate creates or updates the audit table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ds.AuditEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Record stores one notification. Replays of the same notification are ignored.
func (r *Repository) Record(ctx context.Context, n notify.Notification) error {
	entry := entryFrom(n)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "notification_id"}}, DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// AuditFilter narrows Recent. Zero values mean no filter.
type AuditFilter struct {
	Entity string
	Level  string
	Limit  int
}

// Recent returns the newest audit entries first.
func (r *Repository) Recent(ctx context.Context, f AuditFilter) ([]ds.AuditEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	q := r.db.WithContext(ctx).Model(&ds.AuditEntry{})
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}

	var entries []ds.AuditEntry
	if err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func entryFrom(n notify.Notification) ds.AuditEntry {
	return ds.AuditEntry{
		NotificationID: n.ID,
		Level:          string(n.Level),
		Entity:         n.Entity,
		Action:         n.Action,
		Message:        n.Message,
		CreatedAt:      n.At,
	}
}
