package service

import (
	"ImageHub/internal/repo"
	"ImageHub/internal/storage"
	"ImageHub/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

func createTestUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{UserName: name, Password: "123456", IsActive: true}
	if err := CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

// TestCreateImageRoundTrip tests create, list and public read together.
func TestCreateImageRoundTrip(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "round_trip")
	data := []byte("round trip image bytes")

	img, err := CreateImage(context.Background(), user.ID, user.UserName, "cat.png", data, 24)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if len(img.FileID) != 16 {
		t.Fatalf("file id length = %d, want 16", len(img.FileID))
	}
	if len(img.DeleteKey) != 12 {
		t.Fatalf("delete key length = %d, want 12", len(img.DeleteKey))
	}
	if img.Size != int64(len(data)) || img.Extension != "png" {
		t.Fatalf("unexpected record %+v", img)
	}
	if img.ExpiresAt == nil {
		t.Fatal("ttl 24 should set an expiry")
	}

	live, err := ListLiveImages(user.ID, time.Now())
	if err != nil {
		t.Fatalf("ListLiveImages failed: %v", err)
	}
	if len(live) != 1 || live[0].FileID != img.FileID {
		t.Fatalf("gallery = %+v, want the created image", live)
	}

	for _, loc := range []storage.Location{
		storage.Blobs.PrivateLocationForObject(img.PrivateObject),
		storage.Blobs.PublicLocationForObject(img.PublicObject),
	} {
		got, err := storage.Blobs.Read(context.Background(), loc)
		if err != nil {
			t.Fatalf("Read(%s/%s) failed: %v", loc.Bucket, loc.Object, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("Read(%s/%s) returned wrong bytes", loc.Bucket, loc.Object)
		}
	}
}

// TestCreateImageInvalidInput tests the input validation cases.
func TestCreateImageInvalidInput(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "invalid_input")

	cases := []struct {
		name     string
		fileName string
		data     []byte
		ttl      int
	}{
		{"empty content", "a.png", nil, 1},
		{"no extension", "noext", []byte("x"), 1},
		{"negative ttl", "a.png", []byte("x"), -1},
	}
	for _, tc := range cases {
		_, err := CreateImage(context.Background(), user.ID, user.UserName, tc.fileName, tc.data, tc.ttl)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

// TestPermanentImageNeverExpires tests that ttl 0 is exempt from reclamation.
func TestPermanentImageNeverExpires(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "permanent")

	img, err := CreateImage(context.Background(), user.ID, user.UserName, "keep.jpg", []byte("forever"), 0)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if img.ExpiresAt != nil {
		t.Fatalf("ttl 0 should leave expiry unset, got %v", img.ExpiresAt)
	}

	farFuture := time.Now().Add(10 * 365 * 24 * time.Hour)
	expired, err := findExpiredImages(farFuture)
	if err != nil {
		t.Fatalf("findExpiredImages failed: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("permanent image showed up as expired: %+v", expired)
	}

	live, err := ListLiveImages(user.ID, farFuture)
	if err != nil {
		t.Fatalf("ListLiveImages failed: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("permanent image missing from gallery, got %d entries", len(live))
	}
}

// TestExpiredHiddenBeforeSweep tests that listings filter by the caller's
// clock even when the sweeper has not run yet.
func TestExpiredHiddenBeforeSweep(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "pre_sweep")

	img, err := CreateImage(context.Background(), user.ID, user.UserName, "short.png", []byte("short lived"), 1)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}

	afterExpiry := time.Now().Add(61 * time.Minute)
	live, err := ListLiveImages(user.ID, afterExpiry)
	if err != nil {
		t.Fatalf("ListLiveImages failed: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("expired image still listed: %+v", live)
	}

	// The record itself is untouched until the sweep.
	if _, err := getImageByFileID(img.FileID); err != nil {
		t.Fatalf("record should survive until reclaimed, got %v", err)
	}
}

// TestDeleteImage tests owner delete and its idempotence.
func TestDeleteImage(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "deleter")

	img, err := CreateImage(context.Background(), user.ID, user.UserName, "gone.png", []byte("to delete"), 0)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if err := DeleteImage(user.ID, img.FileID); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	if err := DeleteImage(user.ID, img.FileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}

	for _, loc := range []storage.Location{
		storage.Blobs.PrivateLocationForObject(img.PrivateObject),
		storage.Blobs.PublicLocationForObject(img.PublicObject),
	} {
		if _, err := storage.Blobs.Read(context.Background(), loc); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("blob %s/%s should be gone, got %v", loc.Bucket, loc.Object, err)
		}
	}
}

// TestDeleteImageForbidden tests that only the owner may delete.
func TestDeleteImageForbidden(t *testing.T) {
	cleanTables(t)
	owner := createTestUser(t, "owner")
	other := createTestUser(t, "other")

	img, err := CreateImage(context.Background(), owner.ID, owner.UserName, "mine.png", []byte("private"), 0)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if err := DeleteImage(other.ID, img.FileID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := getImageByFileID(img.FileID); err != nil {
		t.Fatalf("image should survive a forbidden delete, got %v", err)
	}
}

// TestRecordViewConcurrent tests that concurrent views all count.
func TestRecordViewConcurrent(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "viewer")

	img, err := CreateImage(context.Background(), user.ID, user.UserName, "hot.png", []byte("popular"), 0)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}

	const viewers = 20
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- RecordView(img.FileID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordView failed: %v", err)
		}
	}

	got, err := getImageByFileID(img.FileID)
	if err != nil {
		t.Fatalf("getImageByFileID failed: %v", err)
	}
	if got.Views != viewers {
		t.Fatalf("views = %d, want %d", got.Views, viewers)
	}
}

// TestRecordViewMissing tests that a view on a gone image is not an error.
func TestRecordViewMissing(t *testing.T) {
	cleanTables(t)
	if err := RecordView("ffffffffffffffff"); err != nil {
		t.Fatalf("RecordView on missing id should succeed, got %v", err)
	}
}

// TestReclaimExpired tests the sweep over a mixed batch.
func TestReclaimExpired(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "reclaimer")
	ctx := context.Background()

	expiring, err := CreateImage(ctx, user.ID, user.UserName, "old.png", []byte("stale"), 1)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	keeper, err := CreateImage(ctx, user.ID, user.UserName, "new.png", []byte("fresh"), 168)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	permanent, err := CreateImage(ctx, user.ID, user.UserName, "forever.png", []byte("eternal"), 0)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}

	reclaimed, err := ReclaimExpired(time.Now().Add(61 * time.Minute))
	if err != nil {
		t.Fatalf("ReclaimExpired failed: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}

	if _, err := getImageByFileID(expiring.FileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should be gone, got %v", err)
	}
	for _, fileID := range []string{keeper.FileID, permanent.FileID} {
		if _, err := getImageByFileID(fileID); err != nil {
			t.Fatalf("record %s should survive the sweep, got %v", fileID, err)
		}
	}
	for _, loc := range []storage.Location{
		storage.Blobs.PrivateLocationForObject(expiring.PrivateObject),
		storage.Blobs.PublicLocationForObject(expiring.PublicObject),
	} {
		if _, err := storage.Blobs.Read(ctx, loc); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("reclaimed blob %s/%s should be gone, got %v", loc.Bucket, loc.Object, err)
		}
	}
}

// TestDeleteReclaimRace tests that a concurrent owner delete and sweep remove
// the image exactly once between them.
func TestDeleteReclaimRace(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "racer")
	ctx := context.Background()

	img, err := CreateImage(ctx, user.ID, user.UserName, "contested.png", []byte("race me"), 1)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	past := time.Now().Add(-time.Minute)
	if err := repo.Db.Model(&model.Image{}).Where("file_id = ?", img.FileID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("force expiry failed: %v", err)
	}

	var wg sync.WaitGroup
	var deleteErr error
	var reclaimed int
	var reclaimErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = DeleteImage(user.ID, img.FileID)
	}()
	go func() {
		defer wg.Done()
		reclaimed, reclaimErr = ReclaimExpired(time.Now())
	}()
	wg.Wait()

	if reclaimErr != nil {
		t.Fatalf("ReclaimExpired failed: %v", reclaimErr)
	}
	if deleteErr != nil && !errors.Is(deleteErr, ErrNotFound) {
		t.Fatalf("DeleteImage failed: %v", deleteErr)
	}
	removals := reclaimed
	if deleteErr == nil {
		removals++
	}
	if removals != 1 {
		t.Fatalf("image removed %d times, want exactly 1", removals)
	}
	if _, err := getImageByFileID(img.FileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record should be gone after the race, got %v", err)
	}
}

// failingStore fails every write, for rollback tests.
type failingStore struct {
	removed []string
}

func (s *failingStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	if bucket == "pub-fail" {
		return fmt.Errorf("injected put failure for %s/%s", bucket, object)
	}
	return nil
}

func (s *failingStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, storage.ErrNotFound
}

func (s *failingStore) RemoveObject(ctx context.Context, bucket, object string) error {
	s.removed = append(s.removed, bucket+"/"+object)
	return nil
}

func (s *failingStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "", storage.ErrNotFound
}

// TestCreateImageWriteFailure tests that a failed blob write leaves no
// metadata and rolls the first location back.
func TestCreateImageWriteFailure(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "write_fail")

	stub := &failingStore{}
	oldBlobs := storage.Blobs
	storage.Blobs = storage.NewBlobStore(stub, "priv-ok", "pub-fail")
	defer func() { storage.Blobs = oldBlobs }()

	_, err := CreateImage(context.Background(), user.ID, user.UserName, "broken.png", []byte("doomed"), 1)
	if !errors.Is(err, storage.ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
	if len(stub.removed) != 1 {
		t.Fatalf("private write should have been rolled back once, got %v", stub.removed)
	}

	var count int64
	if err := repo.Db.Model(&model.Image{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no metadata should exist after a write failure, got %d rows", count)
	}
}

// TestGalleryLifecycle walks one user through upload, viewing, stats and
// reclamation.
func TestGalleryLifecycle(t *testing.T) {
	cleanTables(t)
	alice := createTestUser(t, "alice")
	ctx := context.Background()
	data := make([]byte, 2048)

	img, err := CreateImage(ctx, alice.ID, alice.UserName, "photo.jpg", data, 1)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if img.Size != 2048 || img.Views != 0 {
		t.Fatalf("fresh upload state wrong: size=%d views=%d", img.Size, img.Views)
	}
	if img.ExpiresAt == nil {
		t.Fatal("ttl 1 should set an expiry")
	}
	remaining := time.Until(*img.ExpiresAt)
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Fatalf("expiry should be about an hour out, got %v", remaining)
	}

	for i := 0; i < 3; i++ {
		if err := RecordView(img.FileID); err != nil {
			t.Fatalf("RecordView failed: %v", err)
		}
	}
	got, err := getImageByFileID(img.FileID)
	if err != nil {
		t.Fatalf("getImageByFileID failed: %v", err)
	}
	if got.Views != 3 {
		t.Fatalf("views = %d, want 3", got.Views)
	}

	stats, err := GalleryStats(alice.ID, time.Now())
	if err != nil {
		t.Fatalf("GalleryStats failed: %v", err)
	}
	if stats.TotalImages != 1 || stats.TotalBytes != 2048 || stats.LiveImages != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	reclaimed, err := ReclaimExpired(time.Now().Add(61 * time.Minute))
	if err != nil {
		t.Fatalf("ReclaimExpired failed: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}
	live, err := ListLiveImages(alice.ID, time.Now())
	if err != nil {
		t.Fatalf("ListLiveImages failed: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("gallery should be empty after reclamation, got %+v", live)
	}
}
