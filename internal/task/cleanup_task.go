package task

import (
	"ImageHub/internal/mq"
	"ImageHub/internal/storage"
	"context"
	"encoding/json"
)

// CleanupMessage asks the worker to retry removing one orphaned blob.
type CleanupMessage struct {
	Bucket  string `json:"bucket"`
	Object  string `json:"object"`
	Attempt int    `json:"attempt"`
}

// EnqueueBlobCleanup schedules a removal retry for a blob whose best-effort
// delete failed. Metadata removal never waits on this.
func EnqueueBlobCleanup(ctx context.Context, loc storage.Location) error {
	msg := CleanupMessage{
		Bucket:  loc.Bucket,
		Object:  loc.Object,
		Attempt: 0,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		return err
	}
	return publisher.PublishCleanup(ctx, body)
}
