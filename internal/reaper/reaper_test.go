package reaper

import (
	"CipherShare/internal/repo"
	"CipherShare/internal/service"
	"CipherShare/internal/storage"
	"CipherShare/model"
	"context"
	"errors"
	"testing"
	"time"
)

type fixture struct {
	engine *service.Engine
	reaper *Reaper
	store  *storage.MemoryStore
	files  *repo.MemoryFileRepository
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	buckets := repo.NewMemoryBucketRepository()
	buckets.Add(model.Bucket{ID: 1, BucketName: "bucket-a"})
	registry := &service.BucketRegistry{
		Buckets: buckets,
		Open:    func(bucket *model.Bucket) (storage.Store, error) { return store, nil },
	}
	files := repo.NewMemoryFileRepository()

	f := &fixture{
		engine: service.NewEngine(files, registry, 0),
		reaper: New(files, registry, time.Hour),
		store:  store,
		files:  files,
		now:    time.Now(),
	}
	f.engine.Now = func() time.Time { return f.now }
	f.reaper.Now = f.engine.Now
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestReapExpiredRecord(t *testing.T) {
	f := newFixture(t)
	handle, err := f.engine.Ingest(context.Background(), []byte("short lived"), "a", "b", service.LifetimeShort)
	if err != nil {
		t.Fatal(err)
	}

	f.advance(25 * time.Hour)
	summary, err := f.reaper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if summary.Reaped != 1 {
		t.Fatalf("expect 1 reaped, got %+v", summary)
	}
	if f.store.Exists("bucket-a", handle) {
		t.Fatal("object survived reaping")
	}
	if _, err := f.files.GetByHandle(context.Background(), handle); err == nil {
		t.Fatal("row survived reaping")
	}
}

func TestReapLeavesUnexpiredRecord(t *testing.T) {
	f := newFixture(t)
	handle, err := f.engine.Ingest(context.Background(), []byte("long lived"), "a", "b", service.LifetimeLong)
	if err != nil {
		t.Fatal(err)
	}

	f.advance(25 * time.Hour)
	summary, err := f.reaper.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Scanned != 0 {
		t.Fatalf("unexpired record scanned: %+v", summary)
	}
	if !f.store.Exists("bucket-a", handle) {
		t.Fatal("unexpired object deleted")
	}
}

func TestEndToEndExpiry(t *testing.T) {
	f := newFixture(t)
	payload := []byte("ten bytes!")
	handle, err := f.engine.Ingest(context.Background(), payload, "e2e.txt", "text/plain", service.LifetimeShort)
	if err != nil {
		t.Fatal(err)
	}

	plain, _, err := f.engine.FetchContent(context.Background(), handle)
	if err != nil {
		t.Fatalf("immediate fetch failed: %v", err)
	}
	if string(plain) != string(payload) {
		t.Fatalf("content mismatch: %q", plain)
	}

	// The fetch extended expiry to now+24h, so move past that.
	f.advance(25 * time.Hour)
	if _, err := f.reaper.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.engine.FetchContent(context.Background(), handle); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expect ErrNotFound after reaping, got %v", err)
	}
}

type failingRemoveStore struct {
	storage.Store
}

func (s *failingRemoveStore) RemoveObject(ctx context.Context, bucket, object string) error {
	return errors.New("backend unreachable")
}

func TestObjectDeleteFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	handle, err := f.engine.Ingest(context.Background(), []byte("x"), "a", "b", service.LifetimeShort)
	if err != nil {
		t.Fatal(err)
	}

	f.reaper.Registry = &service.BucketRegistry{
		Buckets: f.reaper.Registry.Buckets,
		Open: func(bucket *model.Bucket) (storage.Store, error) {
			return &failingRemoveStore{Store: f.store}, nil
		},
	}

	f.advance(25 * time.Hour)
	summary, err := f.reaper.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 || summary.Reaped != 0 {
		t.Fatalf("expect the record to fail, got %+v", summary)
	}
	if _, err := f.files.GetByHandle(context.Background(), handle); err != nil {
		t.Fatal("row deleted while its object still occupies storage")
	}
}

func TestObjectAlreadyAbsentStillDeletesRow(t *testing.T) {
	f := newFixture(t)
	handle, err := f.engine.Ingest(context.Background(), []byte("x"), "a", "b", service.LifetimeShort)
	if err != nil {
		t.Fatal(err)
	}
	// Orphaned row: the object vanished out of band.
	if err := f.store.RemoveObject(context.Background(), "bucket-a", handle); err != nil {
		t.Fatal(err)
	}

	f.advance(25 * time.Hour)
	summary, err := f.reaper.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Reaped != 1 {
		t.Fatalf("orphaned row not reaped: %+v", summary)
	}
}

// staleListRepo returns a scan list captured earlier, simulating a retrieval
// that extends a record after the reaper's scan.
type staleListRepo struct {
	repo.FileRepository
	stale []model.File
}

func (r *staleListRepo) ListExpired(ctx context.Context, now time.Time) ([]model.File, error) {
	return r.stale, nil
}

func TestConcurrentExtensionWinsOverReaper(t *testing.T) {
	f := newFixture(t)
	handle, err := f.engine.Ingest(context.Background(), []byte("keep me"), "a", "b", service.LifetimeShort)
	if err != nil {
		t.Fatal(err)
	}

	f.advance(25 * time.Hour)
	stale, err := f.files.ListExpired(context.Background(), f.now)
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 1 {
		t.Fatalf("expect 1 expired record, got %d", len(stale))
	}

	// A retrieval lands between the scan and the delete.
	if _, err := f.engine.FetchInfo(context.Background(), handle); err != nil {
		t.Fatal(err)
	}

	f.reaper.Files = &staleListRepo{FileRepository: f.files, stale: stale}
	summary, err := f.reaper.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Reaped != 0 {
		t.Fatalf("extended record was not skipped: %+v", summary)
	}
	if !f.store.Exists("bucket-a", handle) {
		t.Fatal("extended record's object deleted")
	}
	if _, err := f.files.GetByHandle(context.Background(), handle); err != nil {
		t.Fatal("extended record's row deleted")
	}
}

func TestReaperRespectsContextCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		f.reaper.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reaper did not stop on cancellation")
	}
}
