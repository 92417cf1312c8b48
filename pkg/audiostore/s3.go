// Package audiostore re-hosts generated narration on S3 (or an S3-compatible
// store) and hands out presigned download URLs.
package audiostore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/CinePrep/cineprep/internal/domain"
)

const defaultPresignTTL = time.Hour

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	GetObjectRequest(input *s3.GetObjectInput) (*request.Request, *s3.GetObjectOutput)
}

type Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

type S3Store struct {
	client     S3API
	bucket     string
	presignTTL time.Duration
}

// NewS3Store builds a session from cfg. An empty AccessKey falls back to the
// default AWS credential chain.
func NewS3Store(cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("audio bucket is required")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3StoreWithClient(s3.New(sess), cfg.Bucket, cfg.PresignTTL), nil
}

func NewS3StoreWithClient(client S3API, bucket string, presignTTL time.Duration) *S3Store {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &S3Store{client: client, bucket: bucket, presignTTL: presignTTL}
}

var _ domain.AudioStore = (*S3Store)(nil)

func contentType(format domain.AudioFormat) string {
	if format == domain.AudioFormatMP3 {
		return "audio/mpeg"
	}
	return "audio/wav"
}

// Put uploads data under key and returns a presigned GET URL.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, format domain.AudioFormat) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType(format)),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", &domain.ErrUpstream{Service: "s3", Err: err}
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign audio url: %w", err)
	}
	return url, nil
}
