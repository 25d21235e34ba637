package docstore

import (
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeS3Uploader points an s3Uploader at an in-process gofakes3 server
// instead of real AWS, so Upload is exercised against actual S3 wire
// semantics (bucket existence, path-style addressing) rather than a stub.
func newFakeS3Uploader(t *testing.T, bucket string) (*s3Uploader, func()) {
	t.Helper()

	backend := s3mem.New()
	require.NoError(t, backend.CreateBucket(bucket))

	faker := gofakes3.New(backend)
	ts := httptest.NewServer(faker.Server())

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("KEY", "SECRET", ""),
		BaseEndpoint: aws.String(ts.URL),
		UsePathStyle: true,
	})

	return &s3Uploader{client: client}, ts.Close
}

func TestS3Uploader_Upload_StoresObject(t *testing.T) {
	uploader, closeServer := newFakeS3Uploader(t, "webdex-snapshots")
	defer closeServer()

	err := uploader.Upload(t.Context(), "webdex-snapshots", "snapshot.txt", []byte("page data"))
	require.NoError(t, err)
}

func TestS3Uploader_Upload_MissingBucketIsError(t *testing.T) {
	uploader, closeServer := newFakeS3Uploader(t, "webdex-snapshots")
	defer closeServer()

	err := uploader.Upload(t.Context(), "does-not-exist", "snapshot.txt", []byte("page data"))
	assert.Error(t, err)
}
