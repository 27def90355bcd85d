package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/medisched/medisched/pkg/logging"
)

// S3API is the subset of the S3 client used by UploadStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// UploadStore keeps profile pictures and document uploads in S3. With no
// bucket configured all operations are no-ops returning empty keys.
type UploadStore struct {
	bucket string
	client S3API
	logger *logging.Logger
}

// NewUploadStore creates the store.
func NewUploadStore(client S3API, bucket string, logger *logging.Logger) *UploadStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &UploadStore{bucket: bucket, client: client, logger: logger}
}

// Enabled reports whether uploads are configured.
func (s *UploadStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

// Put stores one upload under a dated key and returns the object key.
// kind names the upload category ("profile-pictures", "documents"); owner is
// the owning account id.
func (s *UploadStore) Put(ctx context.Context, kind, owner, filename, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("storage: uploads not configured")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("storage: read upload: %w", err)
	}

	ext := strings.ToLower(path.Ext(filename))
	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%d/%02d/%s-%s%s",
		kind, now.Year(), now.Month(), owner, uuid.NewString()[:8], ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}

	s.logger.Info("upload stored", "key", key, "bytes", len(data))
	return key, nil
}

// Get fetches an object's contents by key.
func (s *UploadStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("storage: uploads not configured")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read object %s: %w", key, err)
	}
	return data, nil
}
