package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// LocalStore keeps record content on the local filesystem. Meant for dev and
// tests; production deployments use MinIO.
type LocalStore struct {
	baseDir string
}

func NewLocal(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Save writes the content under <base>/<ownerID>/<uuid>_<name>.
func (s *LocalStore) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	name := sanitizeFileName(fileName)
	if name == "" {
		return "", 0, fmt.Errorf("invalid file name: %q", fileName)
	}

	dir := filepath.Join(s.baseDir, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	key := filepath.Join(ownerID, uuid.New().String()+"_"+name)
	f, err := os.OpenFile(filepath.Join(s.baseDir, key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		return "", 0, err
	}
	return key, size, nil
}

func (s *LocalStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *LocalStore) ReadText(ctx context.Context, key string) (string, error) {
	data, err := s.ReadBytes(ctx, key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not valid UTF-8 text", key)
	}
	return string(data), nil
}

// resolve rejects keys that escape the base directory.
func (s *LocalStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid content key: %q", key)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// sanitizeFileName strips directories and dangerous characters from an
// uploaded name.
func sanitizeFileName(fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "." || name == ".." {
		return ""
	}
	return strings.TrimSpace(name)
}
