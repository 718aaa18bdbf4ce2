// Package documents implements whole-file reads and writes for the
// document commands. Paths are used exactly as given by the caller.
package documents

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Service reads and writes document bytes
type Service struct {
	atomic bool
	logger *zap.Logger
}

// NewService creates a document service. When atomic is true, writes go to a
// temporary sibling file that is renamed over the destination once complete.
func NewService(atomic bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{atomic: atomic, logger: logger}
}

// Open opens path for reading and returns it with its size. The path must
// be a regular file.
func (s *Service) Open(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("Failed to read file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("Failed to read file: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("Failed to read file: %s is not a regular file", path)
	}
	return f, info.Size(), nil
}

// ReadFileBytes returns the entire contents of path.
func (s *Service) ReadFileBytes(path string) (ByteArray, error) {
	f, size, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	buf.Grow(int(size))
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("Failed to read file: %w", err)
	}
	s.logger.Debug("file read", zap.String("path", path), zap.Int("bytes", buf.Len()))
	return ByteArray(buf.Bytes()), nil
}

// WriteFileBytes writes data to path, creating or replacing it.
func (s *Service) WriteFileBytes(path string, data []byte) error {
	_, err := s.write(path, bytes.NewReader(data))
	return err
}

// WriteFileBytesRaw resolves the request payload and writes it to the
// request path. Legacy payloads are decoded fully before the destination is
// touched, so a decode failure leaves the filesystem unchanged.
func (s *Service) WriteFileBytesRaw(req WriteRequest) error {
	if req.Path == "" {
		return ErrMissingPath
	}
	var payload Payload = RawBytes{}
	if req.Payload != nil {
		payload = req.Payload
	}
	r, err := payload.open()
	if err != nil {
		return err
	}
	_, err = s.write(req.Path, r)
	return err
}

func (s *Service) write(path string, r io.Reader) (int64, error) {
	start := time.Now()
	var (
		n   int64
		err error
	)
	if s.atomic {
		n, err = writeAtomic(path, r)
	} else {
		n, err = writeTruncate(path, r)
	}
	if err != nil {
		s.logger.Warn("file write failed", zap.String("path", path), zap.Error(err))
		return n, fmt.Errorf("Failed to write file: %w", err)
	}
	s.logger.Debug("file written",
		zap.String("path", path),
		zap.Int64("bytes", n),
		zap.Bool("atomic", s.atomic),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

// writeTruncate writes in place. A failure part-way leaves a truncated file.
func writeTruncate(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// writeAtomic writes to a temp file in the destination directory and
// renames it into place. Existing permission bits are kept and symlinks are
// written through to their target.
func writeAtomic(path string, r io.Reader) (int64, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return 0, fmt.Errorf("%s is not a regular file", path)
		}
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	fail := func(err error) (int64, error) {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	return n, nil
}
