package repo

import (
	"CipherShare/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// FileRepository is row CRUD over file metadata. Lookups that match nothing
// return gorm.ErrRecordNotFound regardless of implementation.
type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	GetByHandle(ctx context.Context, handle string) (*model.File, error)
	UpdateAvailableTill(ctx context.Context, handle string, till time.Time) error
	ListExpired(ctx context.Context, now time.Time) ([]model.File, error)
	// DeleteExpired deletes the row only if it is still expired at delete
	// time. Returns false when the row is gone or was extended meanwhile.
	DeleteExpired(ctx context.Context, handle string, now time.Time) (bool, error)
}

// MysqlFileRepository implements FileRepository over gorm.
type MysqlFileRepository struct {
	db *gorm.DB
}

// NewMysqlFileRepository builds a repository bound to the given DB.
func NewMysqlFileRepository(db *gorm.DB) *MysqlFileRepository {
	return &MysqlFileRepository{db: db}
}

// Create inserts a file record.
func (r *MysqlFileRepository) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// GetByHandle finds a file record by handle.
func (r *MysqlFileRepository) GetByHandle(ctx context.Context, handle string) (*model.File, error) {
	var file model.File
	err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// UpdateAvailableTill moves the expiry of a record.
func (r *MysqlFileRepository) UpdateAvailableTill(ctx context.Context, handle string, till time.Time) error {
	return r.db.WithContext(ctx).Model(&model.File{}).
		Where("handle = ?", handle).
		UpdateColumn("available_till", till).Error
}

// ListExpired returns all records whose expiry is in the past.
func (r *MysqlFileRepository) ListExpired(ctx context.Context, now time.Time) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("available_till < ?", now).
		Find(&files).Error
	return files, err
}

// DeleteExpired deletes a record, re-checking expiry in the same statement so
// a concurrent retrieval that just extended the record wins.
func (r *MysqlFileRepository) DeleteExpired(ctx context.Context, handle string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("handle = ? AND available_till < ?", handle, now).
		Delete(&model.File{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
