package audiostore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
)

type fakeS3 struct {
	*s3.S3
	put    *s3.PutObjectInput
	body   []byte
	putErr error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.put = input
	f.body, _ = io.ReadAll(input.Body)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func newFakeS3(t *testing.T) *fakeS3 {
	t.Helper()
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String("us-east-1"),
		Credentials:      credentials.NewStaticCredentials("AKID", "SECRET", ""),
		Endpoint:         aws.String("https://storage.example.com"),
		S3ForcePathStyle: aws.Bool(true),
	})
	require.NoError(t, err)
	return &fakeS3{S3: s3.New(sess)}
}

func TestS3Store_Put(t *testing.T) {
	client := newFakeS3(t)
	store := NewS3StoreWithClient(client, "narration", 30*time.Minute)

	link, err := store.Put(context.Background(), "audio/user-1/abc.mp3", []byte("ID3data"), domain.AudioFormatMP3)
	require.NoError(t, err)

	require.NotNil(t, client.put)
	assert.Equal(t, "narration", aws.StringValue(client.put.Bucket))
	assert.Equal(t, "audio/user-1/abc.mp3", aws.StringValue(client.put.Key))
	assert.Equal(t, "audio/mpeg", aws.StringValue(client.put.ContentType))
	assert.Equal(t, int64(7), aws.Int64Value(client.put.ContentLength))
	assert.Equal(t, []byte("ID3data"), client.body)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "storage.example.com", parsed.Host)
	assert.Equal(t, "/narration/audio/user-1/abc.mp3", parsed.Path)
	assert.Equal(t, "1800", parsed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
}

func TestS3Store_PutFailure(t *testing.T) {
	client := newFakeS3(t)
	client.putErr = errors.New("access denied")
	store := NewS3StoreWithClient(client, "narration", 0)

	_, err := store.Put(context.Background(), "k.wav", []byte("RIFF"), domain.AudioFormatWAV)
	var upstream *domain.ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "s3", upstream.Service)
	assert.Equal(t, "audio/wav", aws.StringValue(client.put.ContentType))
}

func TestNewS3Store(t *testing.T) {
	_, err := NewS3Store(Config{})
	assert.Error(t, err)

	store, err := NewS3Store(Config{Bucket: "b", Region: "eu-west-1", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, defaultPresignTTL, store.presignTTL)
}
