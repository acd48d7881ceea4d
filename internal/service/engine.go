package service

import (
	"CipherShare/internal/crypt"
	"CipherShare/internal/repo"
	"CipherShare/internal/storage"
	"CipherShare/model"
	"CipherShare/utils"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// extendWindow is the access-driven extension horizon: any read of a record
// expiring sooner than this pushes the expiry out to now+extendWindow.
const extendWindow = 24 * time.Hour

const fileCacheTTL = 5 * time.Minute

// OrphanFunc is notified when a best-effort object cleanup failed and the
// ciphertext is left behind without a metadata row.
type OrphanFunc func(ctx context.Context, bucketID uint64, object string)

// Engine is the encrypted ephemeral object lifecycle engine: ingestion,
// retrieval and the record primitives the reaper builds on.
type Engine struct {
	Files    repo.FileRepository
	Registry *BucketRegistry
	MaxSize  int64
	Now      func() time.Time
	// Orphan is optional; when nil, failed cleanups are only logged.
	Orphan OrphanFunc
}

// Default is the engine instance wired in main.
var Default *Engine

// NewEngine builds an engine over the given repositories.
func NewEngine(files repo.FileRepository, registry *BucketRegistry, maxSize int64) *Engine {
	return &Engine{
		Files:    files,
		Registry: registry,
		MaxSize:  maxSize,
		Now:      time.Now,
	}
}

// FileInfo is the metadata returned to the boundary layer for content
// negotiation.
type FileInfo struct {
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type"`
	AvailableTill time.Time `json:"available_till"`
}

func infoOf(file *model.File) *FileInfo {
	return &FileInfo{
		FileName:      file.FileName,
		FileType:      file.FileType,
		AvailableTill: file.AvailableTill,
	}
}

// Ingest encrypts a fully buffered payload, writes the ciphertext to the
// active bucket and commits the metadata row. The returned handle is the only
// caller-visible identifier. On a failed metadata commit the just-written
// object is deleted again so no orphan survives.
func (e *Engine) Ingest(ctx context.Context, payload []byte, fileName, fileType, lifetime string) (string, error) {
	duration, err := ParseLifetime(lifetime)
	if err != nil {
		return "", err
	}
	if e.MaxSize > 0 && int64(len(payload)) > e.MaxSize {
		return "", fmt.Errorf("%w: %d bytes over %d cap", ErrPayloadTooLarge, len(payload), e.MaxSize)
	}

	bucket, err := e.Registry.ResolveActive(ctx)
	if err != nil {
		return "", err
	}

	encrypted, err := crypt.Encrypt(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}

	handle := utils.NewHandle()
	if err := bucket.Store.PutObject(
		ctx,
		bucket.Name,
		handle,
		bytes.NewReader(encrypted.Result),
		int64(len(encrypted.Result)),
		storage.PutOptions{ContentType: "application/octet-stream"},
	); err != nil {
		return "", fmt.Errorf("%w: object write failed: %v", ErrStorageUnavailable, err)
	}

	now := e.Now()
	file := &model.File{
		Handle:        handle,
		FileName:      fileName,
		FileType:      fileType,
		Key:           encrypted.Key,
		Nonce:         encrypted.Nonce,
		AvailableTill: now.Add(duration),
		DateCreated:   now,
		BucketID:      bucket.ID,
	}
	if err := e.Files.Create(ctx, file); err != nil {
		e.rollbackObject(ctx, bucket, handle)
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}

	_ = utils.SetFileToCache(ctx, file, fileCacheTTL)
	return handle, nil
}

// rollbackObject deletes an object whose metadata commit failed. The caller
// reports the ingestion failure either way; a failed cleanup is handed to the
// orphan queue.
func (e *Engine) rollbackObject(ctx context.Context, bucket *BucketHandle, handle string) {
	if err := bucket.Store.RemoveObject(ctx, bucket.Name, handle); err != nil {
		log.Printf("ingest rollback: orphaned object %s in bucket %d: %v", handle, bucket.ID, err)
		if e.Orphan != nil {
			e.Orphan(ctx, bucket.ID, handle)
		}
	}
}

// FetchInfo resolves a handle to its metadata without touching the object.
// Reads near expiry extend the record first.
func (e *Engine) FetchInfo(ctx context.Context, rawHandle string) (*FileInfo, error) {
	handle, ok := utils.ParseHandle(rawHandle)
	if !ok {
		return nil, fmt.Errorf("%w: bad handle", ErrNotFound)
	}

	if cached, ok := utils.GetFileFromCache(ctx, handle); ok {
		if !e.nearExpiry(cached.AvailableTill) {
			return infoOf(cached), nil
		}
	}

	file, err := e.loadFile(ctx, handle)
	if err != nil {
		return nil, err
	}
	e.maybeExtend(ctx, file)
	_ = utils.SetFileToCache(ctx, file, fileCacheTTL)
	return infoOf(file), nil
}

// FetchContent resolves a handle, fetches the ciphertext from the bucket the
// record lives in and decrypts it. The cache is never used here: key material
// only ever exists in the row.
func (e *Engine) FetchContent(ctx context.Context, rawHandle string) ([]byte, *FileInfo, error) {
	handle, ok := utils.ParseHandle(rawHandle)
	if !ok {
		return nil, nil, fmt.Errorf("%w: bad handle", ErrNotFound)
	}

	file, err := e.loadFile(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	e.maybeExtend(ctx, file)

	bucket, err := e.Registry.ResolveByID(ctx, file.BucketID)
	if err != nil {
		return nil, nil, err
	}

	object, _, err := bucket.Store.GetObject(ctx, bucket.Name, handle)
	if err != nil {
		if storage.IsNotExist(err) {
			log.Printf("fetch %s: row exists but object missing in bucket %d", handle, bucket.ID)
			return nil, nil, fmt.Errorf("%w: object missing", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%w: object read failed: %v", ErrStorageUnavailable, err)
	}
	ciphertext, err := io.ReadAll(object)
	_ = object.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: object read failed: %v", ErrStorageUnavailable, err)
	}

	plaintext, err := crypt.Decrypt(file.Key, file.Nonce, ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return plaintext, infoOf(file), nil
}

func (e *Engine) loadFile(ctx context.Context, handle string) (*model.File, error) {
	file, err := e.Files.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return file, nil
}

func (e *Engine) nearExpiry(till time.Time) bool {
	return till.Before(e.Now().Add(extendWindow))
}

// maybeExtend pushes the expiry to now+24h when the record would otherwise
// expire sooner. Best effort: a failed write never fails the read.
func (e *Engine) maybeExtend(ctx context.Context, file *model.File) {
	if !e.nearExpiry(file.AvailableTill) {
		return
	}
	newTill := e.Now().Add(extendWindow)
	if err := e.Files.UpdateAvailableTill(ctx, file.Handle, newTill); err != nil {
		log.Printf("extend %s failed: %v", file.Handle, err)
		return
	}
	file.AvailableTill = newTill
	_ = utils.InvalidateFileCache(ctx, file.Handle)
}
