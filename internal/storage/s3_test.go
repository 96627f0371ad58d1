package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Provider_Put(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	p := &S3Provider{client: fake, bucket: "records"}

	err := p.Put(context.Background(), "2026-08-26/x.json", "application/json", []byte(`{"a":1}`))
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	require.Equal(t, "records", *fake.input.Bucket)
	require.Equal(t, "2026-08-26/x.json", *fake.input.Key)
	require.Equal(t, "application/json", *fake.input.ContentType)

	body, err := io.ReadAll(fake.input.Body)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(body))
}

func TestS3Provider_PutError(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{err: errors.New("access denied")}
	p := &S3Provider{client: fake, bucket: "records"}

	err := p.Put(context.Background(), "k.json", "application/json", []byte("{}"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "k.json")
}
