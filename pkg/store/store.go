package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/telemetry"
)

// Content encodings understood by Open.
const (
	EncodingIdentity = ""
	EncodingBrotli   = "br"
)

// ErrNotFound matches, through errors.Is, every error reporting a missing
// page.
var ErrNotFound = errors.New("E080")

// Store persists hydrated pages.
type Store interface {
	// Put stores page under the key for p.
	Put(ctx context.Context, p string, page []byte) error

	// Open returns the stored page for p in the given encoding. A missing
	// page or encoding variant fails with E080.
	Open(ctx context.Context, p string, encoding string) (io.ReadCloser, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	precompress bool
	logger      *slog.Logger
	metrics     *telemetry.Metrics
}

// WithPrecompress enables brotli variants.
func WithPrecompress(enabled bool) Option {
	return func(o *options) {
		o.precompress = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records store operations into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(backend string, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "store", "backend", backend)
	}
	return o
}

// Key maps a URL path to a storage key. Paths that escape the root are
// rejected.
func Key(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", invalidPath(p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", invalidPath(p)
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" {
		return "index.html", nil
	}
	if path.Ext(clean) == "" {
		return clean + "/index.html", nil
	}
	return clean, nil
}

func invalidPath(p string) error {
	return errors.Newf(errors.CategoryStorage, "invalid page path %q", p)
}

// variant returns the key of an encoding variant.
func variant(key, encoding string) (string, error) {
	switch encoding {
	case EncodingIdentity:
		return key, nil
	case EncodingBrotli:
		return key + ".br", nil
	default:
		return "", errors.Newf(errors.CategoryStorage, "unsupported encoding %q", encoding)
	}
}

func notFound(key string) error {
	return errors.New("E080").WithDetail(key)
}

func compress(page []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(page); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NopStore stores nothing.
type NopStore struct{}

func (NopStore) Put(context.Context, string, []byte) error { return nil }

func (NopStore) Open(_ context.Context, p string, _ string) (io.ReadCloser, error) {
	return nil, notFound(p)
}
