package task

import (
	"CipherShare/internal/mq"
	"context"
	"encoding/json"
	"log"
)

// CleanupMessage names one orphaned ciphertext object: a metadata commit
// failed after the object write, and the inline rollback could not remove it.
type CleanupMessage struct {
	BucketID uint64 `json:"bucket_id"`
	Object   string `json:"object"`
	Attempt  int    `json:"attempt"`
}

// PublishCleanup hands an orphaned object to the cleanup worker. Best effort:
// an unreachable broker only logs, because the caller is already on an error
// path and the upload failure is what gets reported.
func PublishCleanup(ctx context.Context, bucketID uint64, object string) {
	msg := CleanupMessage{
		BucketID: bucketID,
		Object:   object,
		Attempt:  0,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("cleanup publish: marshal: %v", err)
		return
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		log.Printf("cleanup publish: orphan %s in bucket %d not queued: %v", object, bucketID, err)
		return
	}
	if err := publisher.PublishCleanup(ctx, body); err != nil {
		log.Printf("cleanup publish: orphan %s in bucket %d not queued: %v", object, bucketID, err)
	}
}
