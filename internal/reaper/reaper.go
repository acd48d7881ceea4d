package reaper

import (
	"CipherShare/internal/repo"
	"CipherShare/internal/service"
	"CipherShare/internal/storage"
	"CipherShare/utils"
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const lockKey = "reaper:tick"

// Summary aggregates one tick's per-record outcomes.
type Summary struct {
	Scanned int
	Reaped  int
	Skipped int
	Failed  int
}

// Reaper is the single background loop enforcing the expiry contract. It is
// the only component that deletes file rows: the object goes first, the row
// only after the object delete succeeded or the object was already gone.
type Reaper struct {
	Files    repo.FileRepository
	Registry *service.BucketRegistry
	Interval time.Duration
	Now      func() time.Time
	// Limiter throttles backend deletes inside a tick; nil means unthrottled.
	Limiter *rate.Limiter
}

// New builds a reaper over the given repositories.
func New(files repo.FileRepository, registry *service.BucketRegistry, interval time.Duration) *Reaper {
	return &Reaper{
		Files:    files,
		Registry: registry,
		Interval: interval,
		Now:      time.Now,
	}
}

// Run ticks until ctx is cancelled. Shutdown is cooperative: cancellation is
// observed between ticks, never mid-deletion of a record.
func (r *Reaper) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	// First pass at startup so a long-lived process does not sit on a backlog
	// of expired records for a full interval.
	r.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("reaper stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reaper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	// With Redis configured only one process reaps at a time. A busy lock
	// means another replica owns this tick.
	if repo.Redis != nil {
		lock := repo.NewRedisLock(repo.Redis, lockKey, r.Interval)
		if err := lock.Lock(ctx); err != nil {
			if !errors.Is(err, repo.ErrLockBusy) {
				log.Printf("reaper lock: %v", err)
			}
			return
		}
		defer lock.Unlock(ctx)
	}

	summary, err := r.RunOnce(ctx)
	if err != nil {
		log.Printf("reaper tick failed: %v", err)
		return
	}
	if summary.Scanned > 0 {
		log.Printf("reaper tick: scanned=%d reaped=%d skipped=%d failed=%d",
			summary.Scanned, summary.Reaped, summary.Skipped, summary.Failed)
	}
}

// RunOnce reaps every record expired at the time of the call. Per-record
// failures are collected, never aborting the batch.
func (r *Reaper) RunOnce(ctx context.Context) (Summary, error) {
	var summary Summary

	expired, err := r.Files.ListExpired(ctx, r.Now())
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(expired)

	for i := range expired {
		file := &expired[i]
		switch r.reapOne(ctx, file.Handle, file.BucketID) {
		case reapDeleted:
			summary.Reaped++
		case reapSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary, nil
}

type reapResult int

const (
	reapDeleted reapResult = iota
	reapSkipped
	reapFailed
)

// reapOne deletes one record's object and, only if the object is gone, its
// row. The row delete re-checks expiry so a retrieval that extended the
// record in the meantime wins.
func (r *Reaper) reapOne(ctx context.Context, handle string, bucketID uint64) reapResult {
	// Re-check against a live row before touching the object: the scan list
	// may predate a retrieval that extended this record.
	current, err := r.Files.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reapSkipped
		}
		log.Printf("reap %s: reload failed: %v", handle, err)
		return reapFailed
	}
	if !current.AvailableTill.Before(r.Now()) {
		return reapSkipped
	}

	bucket, err := r.Registry.ResolveByID(ctx, bucketID)
	if err != nil {
		log.Printf("reap %s: resolve bucket %d: %v", handle, bucketID, err)
		return reapFailed
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return reapFailed
		}
	}

	if err := bucket.Store.RemoveObject(ctx, bucket.Name, handle); err != nil && !storage.IsNotExist(err) {
		// Row stays; the next tick retries. Losing the row while its
		// ciphertext still occupies storage is the one thing this loop must
		// never do.
		log.Printf("reap %s: object delete failed, keeping row: %v", handle, err)
		return reapFailed
	}

	deleted, err := r.Files.DeleteExpired(ctx, handle, r.Now())
	if err != nil {
		log.Printf("reap %s: row delete failed: %v", handle, err)
		return reapFailed
	}
	if !deleted {
		// Extended by a concurrent retrieval after the scan, or already gone.
		return reapSkipped
	}
	_ = utils.InvalidateFileCache(ctx, handle)
	return reapDeleted
}
