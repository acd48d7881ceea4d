package utils

import (
	"CipherShare/internal/repo"
	"CipherShare/model"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const fileCachePrefix = "file"

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

// SetFileToCache caches a file record by handle. Best effort; no-op without
// Redis.
func SetFileToCache(ctx context.Context, file *model.File, ttl time.Duration) error {
	if repo.Redis == nil || file == nil {
		return nil
	}
	data, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return repo.Redis.Set(ctx, BuildCacheKey(fileCachePrefix, file.Handle), string(data), ttl).Err()
}

// GetFileFromCache reads a cached file record by handle.
func GetFileFromCache(ctx context.Context, handle string) (*model.File, bool) {
	if repo.Redis == nil {
		return nil, false
	}
	val, err := repo.Redis.Get(ctx, BuildCacheKey(fileCachePrefix, handle)).Result()
	if err != nil {
		return nil, false
	}
	var file model.File
	if err := json.Unmarshal([]byte(val), &file); err != nil {
		return nil, false
	}
	return &file, true
}

// InvalidateFileCache drops the cached record for a handle.
func InvalidateFileCache(ctx context.Context, handle string) error {
	if repo.Redis == nil {
		return nil
	}
	return repo.Redis.Del(ctx, BuildCacheKey(fileCachePrefix, handle)).Err()
}
