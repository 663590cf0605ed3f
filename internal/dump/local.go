package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalDir writes dumps into a directory on disk, one file per message.
type LocalDir struct {
	dir string
}

// NewLocalDir creates the directory if needed.
func NewLocalDir(dir string) (*LocalDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewLocalDir: create %s: %w", dir, err)
	}
	return &LocalDir{dir: dir}, nil
}

// Put writes the raw message. Re-dumping the same key overwrites with
// identical bytes, so repeated runs converge on the same directory state.
func (l *LocalDir) Put(_ context.Context, key string, raw []byte) error {
	path := filepath.Join(l.dir, key)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("Put: write %s: %w", path, err)
	}
	return nil
}
