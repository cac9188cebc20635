package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// hashBlockSize is the read block size used when digesting files.
const hashBlockSize = 4096

// ContentStore persists uploaded bytes under collision-resistant names inside
// a single directory and addresses them by sha256 digest. Deduplication is
// decided by the caller against the document repository: Put always writes,
// and the caller removes the fresh file when the digest is already known.
type ContentStore struct {
	dir string
}

// NewContentStore returns a store rooted at dir, creating it if needed.
func NewContentStore(dir string) (*ContentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir store dir: %w", err)
	}
	return &ContentStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *ContentStore) Dir() string { return s.dir }

// Put writes content under a generated name keeping the original extension and
// returns the stored path with the content digest. The caller-supplied name is
// never reused on disk.
func (s *ContentStore) Put(content []byte, originalName string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String()
	name = strings.ReplaceAll(name, "-", "") + ext
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	digest, err := HashFile(path)
	if err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	return path, digest, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *ContentStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

// HashFile computes the sha256 digest of the file at path, reading it in
// fixed-size blocks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
