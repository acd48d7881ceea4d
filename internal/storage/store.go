package storage

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// Store abstracts the object-storage operations the engine uses. Nothing
// else of the backend API is visible above this line.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string) error
}

// ErrObjectNotExist is returned when a requested object is absent.
var ErrObjectNotExist = errors.New("object does not exist")

// IsNotExist reports whether err means the object is absent rather than the
// backend being unreachable.
func IsNotExist(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrObjectNotExist) {
		return true
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
