package repository

import (
	"context"

	"stockwise/internal/model"

	"gorm.io/gorm"
)

// AuditRepository stores the catalog audit trail. Entries are append-only;
// Record is expected to run on the transaction context of the write it describes.
type AuditRepository interface {
	Record(ctx context.Context, entry *model.AuditLog) error
	// List pages entries newest first, with the acting user's id and name
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	// the actor is referenced by id only
	return GetDB(ctx, r.db).Omit("User").Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	var (
		entries []model.AuditLog
		total   int64
	)

	db := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.AuditLog{}, 0, nil
	}

	err := db.
		Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name")
		}).
		// id breaks ties between entries written in the same transaction
		Order("created_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
