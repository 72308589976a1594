package store

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/vango-dev/graft/internal/errors"
)

// DiskStore keeps pages under a directory.
type DiskStore struct {
	dir string
	options
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string, opts ...Option) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New("E081").WithDetail("create " + dir).Wrap(err)
	}
	return &DiskStore{dir: dir, options: newOptions("disk", opts)}, nil
}

// Dir returns the root directory.
func (s *DiskStore) Dir() string { return s.dir }

// Put writes page and, with precompression, its brotli variant. Files are
// replaced atomically.
func (s *DiskStore) Put(ctx context.Context, p string, page []byte) (err error) {
	defer func() { s.metrics.ObserveStore("disk", "put", err) }()

	key, err := Key(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(key, page); err != nil {
		return err
	}
	if s.precompress {
		br, err := compress(page)
		if err != nil {
			return errors.New("E081").WithDetail("compress " + key).Wrap(err)
		}
		if err := s.write(key+".br", br); err != nil {
			return err
		}
	}
	s.logger.Debug("page stored", "key", key, "bytes", len(page))
	return nil
}

func (s *DiskStore) write(key string, data []byte) error {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".graft-*")
	if err != nil {
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.New("E081").WithDetail("put " + key).Wrap(err)
	}
	return nil
}

// Open opens the stored file for p.
func (s *DiskStore) Open(ctx context.Context, p string, encoding string) (rc io.ReadCloser, err error) {
	defer func() { s.metrics.ObserveStore("disk", "open", err) }()

	key, err := Key(p)
	if err != nil {
		return nil, err
	}
	if key, err = variant(key, encoding); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errors.New("E081").WithDetail("open " + key).Wrap(err)
	}
	return f, nil
}
