package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"time"
)

// Location names one materialization of a blob.
type Location struct {
	Bucket string `json:"bucket"`
	Object string `json:"object"`
}

// BlobStore keeps one logical blob materialized at two locations: an
// owner-scoped private object and a flat public-serving object. The pair is
// written and removed in lockstep; callers never build object names
// themselves.
type BlobStore struct {
	store         Store
	privateBucket string
	publicBucket  string
}

// NewBlobStore builds a BlobStore over an object store.
func NewBlobStore(store Store, privateBucket, publicBucket string) *BlobStore {
	return &BlobStore{
		store:         store,
		privateBucket: privateBucket,
		publicBucket:  publicBucket,
	}
}

// PrivateLocation returns the private location for a file id.
func (b *BlobStore) PrivateLocation(owner, fileID, extension string) Location {
	return Location{
		Bucket: b.privateBucket,
		Object: fmt.Sprintf("users/%s/%s.%s", owner, fileID, extension),
	}
}

// PublicLocation returns the public-serving location for a file id.
func (b *BlobStore) PublicLocation(fileID, extension string) Location {
	return Location{
		Bucket: b.publicBucket,
		Object: fileID + "." + extension,
	}
}

// PublicLocationForObject rebuilds the public location from a stored object
// name, for serving by filename.
func (b *BlobStore) PublicLocationForObject(object string) Location {
	return Location{Bucket: b.publicBucket, Object: object}
}

// PrivateLocationForObject rebuilds the private location from a stored
// object name.
func (b *BlobStore) PrivateLocationForObject(object string) Location {
	return Location{Bucket: b.privateBucket, Object: object}
}

// Put writes the blob to both locations. On a partial failure the write that
// did succeed is rolled back so that one location is never populated without
// the other.
func (b *BlobStore) Put(ctx context.Context, owner, fileID, extension string, data []byte) (Location, Location, error) {
	private := b.PrivateLocation(owner, fileID, extension)
	public := b.PublicLocation(fileID, extension)
	opts := PutOptions{ContentType: mime.TypeByExtension("." + extension)}

	if err := b.store.PutObject(ctx, private.Bucket, private.Object, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return Location{}, Location{}, fmt.Errorf("%w: private %s: %v", ErrWriteFailure, private.Object, err)
	}
	if err := b.store.PutObject(ctx, public.Bucket, public.Object, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		if rbErr := b.store.RemoveObject(ctx, private.Bucket, private.Object); rbErr != nil {
			log.Printf("rollback private object %s failed: %v", private.Object, rbErr)
		}
		return Location{}, Location{}, fmt.Errorf("%w: public %s: %v", ErrWriteFailure, public.Object, err)
	}
	return private, public, nil
}

// Read returns the blob bytes at a location.
func (b *BlobStore) Read(ctx context.Context, loc Location) ([]byte, error) {
	reader, _, err := b.store.GetObject(ctx, loc.Bucket, loc.Object)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, mapMinioError(err)
	}
	return data, nil
}

// Remove deletes the object at a location. An already-absent object is
// treated as removed; other storage errors are returned for the caller to
// log or retry, never to abort a wider delete flow.
func (b *BlobStore) Remove(ctx context.Context, loc Location) error {
	return b.store.RemoveObject(ctx, loc.Bucket, loc.Object)
}

// PresignedURL returns a temporary download URL for a location.
func (b *BlobStore) PresignedURL(ctx context.Context, loc Location, expiry time.Duration) (string, error) {
	return b.store.PresignedGetObject(ctx, loc.Bucket, loc.Object, expiry)
}
