package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound reports a missing object.
var ErrNotFound = errors.New("object not found")

// ErrWriteFailure reports that a paired blob write could not complete.
var ErrWriteFailure = errors.New("blob write failed")

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// Store abstracts object storage operations.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string) error
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error)
}

// Default is the main object store instance.
var Default Store

// Blobs is the paired-location blob store used by the image service.
var Blobs *BlobStore
