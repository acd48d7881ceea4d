package repo

import (
	"CipherShare/model"
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// MemoryFileRepository is an in-memory FileRepository used by tests and by
// single-process local runs without MySQL.
type MemoryFileRepository struct {
	mu     sync.RWMutex
	nextID uint64
	files  map[string]model.File
}

// NewMemoryFileRepository builds an empty in-memory repository.
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{files: make(map[string]model.File)}
}

// Create inserts a file record.
func (r *MemoryFileRepository) Create(ctx context.Context, file *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.Handle]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	file.ID = r.nextID
	if file.DateCreated.IsZero() {
		file.DateCreated = time.Now()
	}
	r.files[file.Handle] = *file
	return nil
}

// GetByHandle finds a file record by handle.
func (r *MemoryFileRepository) GetByHandle(ctx context.Context, handle string) (*model.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[handle]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := file
	return &copied, nil
}

// UpdateAvailableTill moves the expiry of a record.
func (r *MemoryFileRepository) UpdateAvailableTill(ctx context.Context, handle string, till time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.files[handle]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	file.AvailableTill = till
	r.files[handle] = file
	return nil
}

// ListExpired returns all records whose expiry is in the past.
func (r *MemoryFileRepository) ListExpired(ctx context.Context, now time.Time) ([]model.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.File
	for _, file := range r.files {
		if file.AvailableTill.Before(now) {
			out = append(out, file)
		}
	}
	return out, nil
}

// DeleteExpired deletes the row only if it is still expired.
func (r *MemoryFileRepository) DeleteExpired(ctx context.Context, handle string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.files[handle]
	if !ok || !file.AvailableTill.Before(now) {
		return false, nil
	}
	delete(r.files, handle)
	return true, nil
}

// MemoryBucketRepository is an in-memory BucketRepository.
type MemoryBucketRepository struct {
	mu      sync.RWMutex
	buckets []model.Bucket
}

// NewMemoryBucketRepository builds a repository holding the given rows.
func NewMemoryBucketRepository(buckets ...model.Bucket) *MemoryBucketRepository {
	return &MemoryBucketRepository{buckets: buckets}
}

// Add appends a bucket row, assigning the next id when unset.
func (r *MemoryBucketRepository) Add(bucket model.Bucket) model.Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bucket.ID == 0 {
		bucket.ID = uint64(len(r.buckets) + 1)
	}
	r.buckets = append(r.buckets, bucket)
	return bucket
}

// Remove drops a bucket row by id.
func (r *MemoryBucketRepository) Remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.buckets[:0]
	for _, bucket := range r.buckets {
		if bucket.ID != id {
			kept = append(kept, bucket)
		}
	}
	r.buckets = kept
}

// First returns the lowest-id bucket row.
func (r *MemoryBucketRepository) First(ctx context.Context) (*model.Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *model.Bucket
	for i := range r.buckets {
		if found == nil || r.buckets[i].ID < found.ID {
			found = &r.buckets[i]
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *found
	return &copied, nil
}

// GetByID returns a bucket row by id.
func (r *MemoryBucketRepository) GetByID(ctx context.Context, id uint64) (*model.Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.buckets {
		if r.buckets[i].ID == id {
			copied := r.buckets[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
