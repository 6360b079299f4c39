package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"
)

// stubStore is an in-memory Store for blob pairing tests.
type stubStore struct {
	objects  map[string][]byte
	failPuts map[string]bool
}

func newStubStore() *stubStore {
	return &stubStore{
		objects:  make(map[string][]byte),
		failPuts: make(map[string]bool),
	}
}

func stubKey(bucket, object string) string {
	return bucket + "/" + object
}

func (s *stubStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	key := stubKey(bucket, object)
	if s.failPuts[key] {
		return fmt.Errorf("injected put failure for %s", key)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *stubStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	data, ok := s.objects[stubKey(bucket, object)]
	if !ok {
		return nil, ObjectInfo{}, ErrNotFound
	}
	info := ObjectInfo{ObjectName: object, Size: int64(len(data))}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (s *stubStore) RemoveObject(ctx context.Context, bucket, object string) error {
	delete(s.objects, stubKey(bucket, object))
	return nil
}

func (s *stubStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "http://stub/" + stubKey(bucket, object), nil
}

// TestPutWritesBothLocations tests the paired write.
func TestPutWritesBothLocations(t *testing.T) {
	stub := newStubStore()
	blobs := NewBlobStore(stub, "priv", "pub")
	data := []byte("image bytes")

	private, public, err := blobs.Put(context.Background(), "alice", "abc123", "png", data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if private.Bucket != "priv" || private.Object != "users/alice/abc123.png" {
		t.Fatalf("unexpected private location %+v", private)
	}
	if public.Bucket != "pub" || public.Object != "abc123.png" {
		t.Fatalf("unexpected public location %+v", public)
	}
	for _, loc := range []Location{private, public} {
		got, err := blobs.Read(context.Background(), loc)
		if err != nil {
			t.Fatalf("Read(%+v) failed: %v", loc, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("Read(%+v) = %q, want %q", loc, got, data)
		}
	}
}

// TestPutRollsBackOnPublicFailure tests that a failed public write removes
// the private one.
func TestPutRollsBackOnPublicFailure(t *testing.T) {
	stub := newStubStore()
	stub.failPuts[stubKey("pub", "abc123.png")] = true
	blobs := NewBlobStore(stub, "priv", "pub")

	_, _, err := blobs.Put(context.Background(), "alice", "abc123", "png", []byte("image bytes"))
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
	if _, ok := stub.objects[stubKey("priv", "users/alice/abc123.png")]; ok {
		t.Fatal("private object should have been rolled back")
	}
	if len(stub.objects) != 0 {
		t.Fatalf("no objects should remain, got %d", len(stub.objects))
	}
}

// TestPutFailsOnPrivateWrite tests that a failed private write leaves
// nothing behind.
func TestPutFailsOnPrivateWrite(t *testing.T) {
	stub := newStubStore()
	stub.failPuts[stubKey("priv", "users/alice/abc123.png")] = true
	blobs := NewBlobStore(stub, "priv", "pub")

	_, _, err := blobs.Put(context.Background(), "alice", "abc123", "png", []byte("image bytes"))
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
	if len(stub.objects) != 0 {
		t.Fatalf("no objects should exist, got %d", len(stub.objects))
	}
}

// TestRemoveAbsentObject tests that removing a missing object is a no-op.
func TestRemoveAbsentObject(t *testing.T) {
	blobs := NewBlobStore(newStubStore(), "priv", "pub")
	loc := blobs.PublicLocation("missing", "png")
	if err := blobs.Remove(context.Background(), loc); err != nil {
		t.Fatalf("Remove of absent object should succeed, got %v", err)
	}
}

// TestReadNotFound tests the missing-object error.
func TestReadNotFound(t *testing.T) {
	blobs := NewBlobStore(newStubStore(), "priv", "pub")
	_, err := blobs.Read(context.Background(), blobs.PublicLocation("missing", "png"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
