package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local runs. Objects
// are keyed by bucket name plus object name.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func memKey(bucket, object string) string {
	return bucket + "/" + object
}

// PutObject stores an object in memory.
func (s *MemoryStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[memKey(bucket, object)] = data
	return nil
}

// GetObject fetches an object from memory.
func (s *MemoryStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[memKey(bucket, object)]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotExist
	}
	info := ObjectInfo{
		ObjectName: object,
		Size:       int64(len(data)),
	}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

// RemoveObject deletes an object from memory. Removing an absent object is
// not an error, matching the MinIO behavior.
func (s *MemoryStore) RemoveObject(ctx context.Context, bucket, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, memKey(bucket, object))
	return nil
}

// Exists reports whether an object is present. Test helper.
func (s *MemoryStore) Exists(bucket, object string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[memKey(bucket, object)]
	return ok
}

// Len reports the number of stored objects. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
