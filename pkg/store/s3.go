package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"

	"github.com/vango-dev/graft/internal/errors"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BreakerSettings controls the circuit breaker around S3 calls.
type BreakerSettings struct {
	// Failures is the number of consecutive failures that opens the
	// breaker.
	Failures uint32

	// Cooldown is how long the breaker stays open before letting a trial
	// request through.
	Cooldown time.Duration
}

// DefaultBreakerSettings opens after 5 consecutive failures for 30s.
var DefaultBreakerSettings = BreakerSettings{Failures: 5, Cooldown: 30 * time.Second}

// S3Store keeps pages in an S3 bucket.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "us-east-1"})
//	st := store.NewS3Store(client, "my-bucket", "pages/", DefaultBreakerSettings,
//		store.WithPrecompress(true))
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	breaker *gobreaker.CircuitBreaker
	options
}

// NewS3Store creates a store writing to bucket under prefix.
func NewS3Store(client S3API, bucket, prefix string, bs BreakerSettings, opts ...Option) *S3Store {
	s := &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		options: newOptions("s3", opts),
	}
	if bs.Failures == 0 {
		bs.Failures = DefaultBreakerSettings.Failures
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "s3:" + bucket,
		MaxRequests: 1,
		Timeout:     bs.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= bs.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isNoSuchKey(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

// BreakerState returns the breaker state ("closed", "half-open", "open").
func (s *S3Store) BreakerState() string { return s.breaker.State().String() }

// Put uploads page and, with precompression, its brotli variant.
func (s *S3Store) Put(ctx context.Context, p string, page []byte) (err error) {
	defer func() { s.metrics.ObserveStore("s3", "put", err) }()

	key, err := Key(p)
	if err != nil {
		return err
	}
	if err := s.put(ctx, key, page, ""); err != nil {
		return err
	}
	if s.precompress {
		br, err := compress(page)
		if err != nil {
			return errors.New("E081").WithDetail("compress " + key).Wrap(err)
		}
		if err := s.put(ctx, key+".br", br, EncodingBrotli); err != nil {
			return err
		}
	}
	s.logger.Debug("page stored", "bucket", s.bucket, "key", s.prefix+key, "bytes", len(page))
	return nil
}

func (s *S3Store) put(ctx context.Context, key string, body []byte, encoding string) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/html; charset=utf-8"),
	}
	if encoding != "" {
		in.ContentEncoding = aws.String(encoding)
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, in)
	})
	if err != nil {
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	return nil
}

// Open downloads the stored object for p.
func (s *S3Store) Open(ctx context.Context, p string, encoding string) (rc io.ReadCloser, err error) {
	defer func() { s.metrics.ObserveStore("s3", "open", err) }()

	key, err := Key(p)
	if err != nil {
		return nil, err
	}
	if key, err = variant(key, encoding); err != nil {
		return nil, err
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.prefix + key),
		})
	})
	if isNoSuchKey(err) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errors.New("E081").WithDetail("open " + key).Wrap(err)
	}
	return out.(*s3.GetObjectOutput).Body, nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return stderrors.As(err, &nsk)
}
