package storage

import (
	"ImageHub/config"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO client.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// PutObject uploads an object to MinIO.
func (s *MinioStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// GetObject fetches an object and its size from MinIO.
func (s *MinioStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	info := ObjectInfo{
		ObjectName: object,
		Size:       stat.Size,
	}
	return obj, info, nil
}

// RemoveObject deletes an object from MinIO. Removing an absent object is
// not an error.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
	if err != nil && errors.Is(mapMinioError(err), ErrNotFound) {
		return nil
	}
	return err
}

// PresignedGetObject returns a presigned URL for downloading an object.
func (s *MinioStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, bucket, object, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func mapMinioError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return ErrNotFound
	}
	return err
}

// InitMinio initializes the MinIO client, the buckets and the blob store.
func InitMinio() {
	client := newMinioClient()
	ensureBucket(client, config.AppConfig.BucketName)
	ensureBucket(client, config.AppConfig.PublicBucketName)
	Default = NewMinioStore(client)
	Blobs = NewBlobStore(Default, config.AppConfig.BucketName, config.AppConfig.PublicBucketName)
}

// InitMinioTest points the blob store at the test buckets.
func InitMinioTest() {
	client := newMinioClient()
	ensureBucket(client, config.AppConfig.BucketNameTest)
	ensureBucket(client, config.AppConfig.PublicBucketNameTest)
	Default = NewMinioStore(client)
	Blobs = NewBlobStore(Default, config.AppConfig.BucketNameTest, config.AppConfig.PublicBucketNameTest)
}

func newMinioClient() *minio.Client {
	client, err := minio.New(fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: false,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	return client
}

func ensureBucket(client *minio.Client, bucket string) {
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
}
