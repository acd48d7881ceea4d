package service

import (
	"CipherShare/internal/repo"
	"CipherShare/internal/storage"
	"CipherShare/model"
	"errors"
	"fmt"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// BucketHandle is an opened storage backend: the row that describes it plus
// a live client bound to its endpoint and credentials.
type BucketHandle struct {
	ID    uint64
	Name  string
	Store storage.Store
}

// OpenFunc turns a bucket row into a live Store. Production wiring uses
// storage.OpenBucket; tests substitute an in-memory store.
type OpenFunc func(bucket *model.Bucket) (storage.Store, error)

// BucketRegistry resolves bucket rows into live handles. Resolution is
// re-evaluated per call; no handle survives across requests, so swapping the
// active bucket row needs no restart.
type BucketRegistry struct {
	Buckets repo.BucketRepository
	Open    OpenFunc
}

// NewBucketRegistry builds a registry over the given bucket rows, opening
// them with MinIO clients.
func NewBucketRegistry(buckets repo.BucketRepository) *BucketRegistry {
	return &BucketRegistry{
		Buckets: buckets,
		Open:    storage.OpenBucket,
	}
}

// ResolveActive returns the bucket new uploads target.
func (r *BucketRegistry) ResolveActive(ctx context.Context) (*BucketHandle, error) {
	bucket, err := r.Buckets.First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no bucket configured", ErrStorageUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return r.open(bucket)
}

// ResolveByID returns the bucket that owns an existing record. Retrieval and
// deletion go through here so the ingestion-time bucket choice stays durable
// even after the active bucket changes.
func (r *BucketRegistry) ResolveByID(ctx context.Context, id uint64) (*BucketHandle, error) {
	bucket, err := r.Buckets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bucket %d not configured", ErrStorageUnavailable, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return r.open(bucket)
}

func (r *BucketRegistry) open(bucket *model.Bucket) (*BucketHandle, error) {
	store, err := r.Open(bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &BucketHandle{
		ID:    bucket.ID,
		Name:  bucket.BucketName,
		Store: store,
	}, nil
}
