package repo

import (
	"CipherShare/model"
	"context"

	"gorm.io/gorm"
)

// BucketRepository reads the provisioned storage-backend rows. The engine
// never writes them.
type BucketRepository interface {
	First(ctx context.Context) (*model.Bucket, error)
	GetByID(ctx context.Context, id uint64) (*model.Bucket, error)
}

// MysqlBucketRepository implements BucketRepository over gorm.
type MysqlBucketRepository struct {
	db *gorm.DB
}

// NewMysqlBucketRepository builds a repository bound to the given DB.
func NewMysqlBucketRepository(db *gorm.DB) *MysqlBucketRepository {
	return &MysqlBucketRepository{db: db}
}

// First returns the bucket new uploads target. Policy: lowest id.
func (r *MysqlBucketRepository) First(ctx context.Context) (*model.Bucket, error) {
	var bucket model.Bucket
	err := r.db.WithContext(ctx).Order("id asc").First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// GetByID returns the bucket that owns an existing record.
func (r *MysqlBucketRepository) GetByID(ctx context.Context, id uint64) (*model.Bucket, error) {
	var bucket model.Bucket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}
