package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorageUpload(t *testing.T) {
	client := &fakeS3{}
	store, err := NewS3Storage(client, "crm-docs", "ap-south-1", "")
	require.NoError(t, err)

	var reported int64
	raw, err := store.Upload(context.Background(), "detailed_enquiries/enq-1/gre_result_1_gre.pdf", "application/pdf", []byte("%PDF"), func(sent, _ int64) {
		reported = sent
	})
	require.NoError(t, err)
	require.Equal(t, "https://crm-docs.s3.ap-south-1.amazonaws.com/detailed_enquiries/enq-1/gre_result_1_gre.pdf", raw)
	require.Equal(t, "crm-docs", aws.ToString(client.input.Bucket))
	require.Equal(t, "application/pdf", aws.ToString(client.input.ContentType))
	require.Equal(t, int64(4), aws.ToInt64(client.input.ContentLength))
	require.Equal(t, "%PDF", string(client.body))
	require.Equal(t, int64(4), reported)
}

func TestS3StoragePublicBaseURL(t *testing.T) {
	store, err := NewS3Storage(&fakeS3{}, "crm-docs", "ap-south-1", "https://cdn.example.com/")
	require.NoError(t, err)

	raw, err := store.Upload(context.Background(), "c/e/a b.pdf", "application/pdf", []byte("x"), nil)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/c/e/a%20b.pdf", raw)
}

func TestS3StorageUploadError(t *testing.T) {
	store, err := NewS3Storage(&fakeS3{err: errors.New("denied")}, "crm-docs", "ap-south-1", "")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "c/e/a.pdf", "application/pdf", []byte("x"), nil)
	require.ErrorContains(t, err, "denied")
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(&fakeS3{}, "", "ap-south-1", "")
	require.Error(t, err)
	_, err = NewS3Storage(nil, "b", "ap-south-1", "")
	require.Error(t, err)
}
