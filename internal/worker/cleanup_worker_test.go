package worker

import (
	"CipherShare/internal/repo"
	"CipherShare/internal/service"
	"CipherShare/internal/storage"
	"CipherShare/internal/task"
	"CipherShare/model"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestPickRetryDelay(t *testing.T) {
	delays := []time.Duration{time.Second, 10 * time.Second, time.Minute}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 10 * time.Second},
		{3, time.Minute},
		{4, time.Minute},
		{10, time.Minute},
		{0, time.Second},
	}
	for _, c := range cases {
		if got := pickRetryDelay(c.attempt, delays); got != c.want {
			t.Errorf("pickRetryDelay(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
	if got := pickRetryDelay(3, nil); got != 0 {
		t.Errorf("pickRetryDelay with no ladder = %v, want 0", got)
	}
}

func newTestRegistry(store storage.Store) *service.BucketRegistry {
	buckets := repo.NewMemoryBucketRepository(model.Bucket{ID: 1, BucketName: "bucket-a"})
	return &service.BucketRegistry{
		Buckets: buckets,
		Open: func(bucket *model.Bucket) (storage.Store, error) {
			return store, nil
		},
	}
}

func TestRemoveOrphan(t *testing.T) {
	store := storage.NewMemoryStore()
	payload := []byte("ciphertext")
	opts := storage.PutOptions{ContentType: "application/octet-stream"}
	if err := store.PutObject(context.Background(), "bucket-a", "obj-1", bytes.NewReader(payload), int64(len(payload)), opts); err != nil {
		t.Fatal(err)
	}

	registry := newTestRegistry(store)
	msg := task.CleanupMessage{BucketID: 1, Object: "obj-1"}
	if err := removeOrphan(context.Background(), registry, msg); err != nil {
		t.Fatal(err)
	}
	if store.Exists("bucket-a", "obj-1") {
		t.Fatal("orphan object still present")
	}
}

func TestRemoveOrphanAbsentObject(t *testing.T) {
	registry := newTestRegistry(storage.NewMemoryStore())
	msg := task.CleanupMessage{BucketID: 1, Object: "never-written"}
	if err := removeOrphan(context.Background(), registry, msg); err != nil {
		t.Fatalf("absent object should count as success, got %v", err)
	}
}

func TestRemoveOrphanUnknownBucket(t *testing.T) {
	registry := newTestRegistry(storage.NewMemoryStore())
	msg := task.CleanupMessage{BucketID: 42, Object: "obj-1"}
	if err := removeOrphan(context.Background(), registry, msg); !errors.Is(err, service.ErrStorageUnavailable) {
		t.Fatalf("expect ErrStorageUnavailable, got %v", err)
	}
}
