package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/pkg/logging"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, assert.AnError
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func TestUploadRoundTrip(t *testing.T) {
	fake := &fakeS3{}
	store := NewUploadStore(fake, "uploads", logging.New("error"))

	key, err := store.Put(context.Background(), "profile-pictures", "DOC-1A2B3C4D",
		"avatar.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Contains(t, key, "profile-pictures/")
	assert.Contains(t, key, "DOC-1A2B3C4D")
	assert.True(t, strings.HasSuffix(key, ".png"))

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUploadDisabledWithoutBucket(t *testing.T) {
	store := NewUploadStore(nil, "", logging.New("error"))
	assert.False(t, store.Enabled())

	_, err := store.Put(context.Background(), "documents", "42", "x.pdf", "application/pdf", strings.NewReader("x"))
	assert.Error(t, err)
}
