package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage persists documents on disk under a base directory and hands
// out signed download URLs.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
	signer        *SignedURLSigner
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string, signer *SignedURLSigner) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if signer == nil {
		return nil, fmt.Errorf("local storage requires a url signer")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		signer:        signer,
	}, nil
}

// Upload writes data under key and returns a signed URL for it. The file is
// written to a temporary name first so readers never see partial content.
func (s *LocalStorage) Upload(ctx context.Context, key, contentType string, data []byte, progress ProgressFunc) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: newProgressReader(data, progress)}); err != nil {
		tmp.Close() //nolint:errcheck
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("commit %s: %w", key, err)
	}
	return s.URL(key)
}

// URL returns the signed download URL for key. The URL does not expire, so it
// is safe to persist as the document reference.
func (s *LocalStorage) URL(key string) (string, error) {
	token, err := s.signer.Generate(key)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s?token=%s", s.publicBaseURL, escapeKey(key), url.QueryEscape(token)), nil
}

// OpenSigned validates token against key and opens the stored file.
func (s *LocalStorage) OpenSigned(key, token string) (*os.File, error) {
	signedKey, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	if signedKey != key {
		return nil, fmt.Errorf("token does not match %s", key)
	}
	return s.Open(key)
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	for _, segment := range strings.Split(filepath.ToSlash(trimmed), "/") {
		if segment == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	clean := path.Clean("/" + trimmed)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
