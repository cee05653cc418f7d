// internal/settings/backup.go
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

var (
	// encoder and decoder for zstd are reusable and thread-safe
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Backup is a zstd-compressed flat-file copy of one settings value.
type Backup struct {
	path string
}

func NewBackup(path string) *Backup {
	if path == "" {
		return nil
	}
	return &Backup{path: path}
}

// Write replaces the backup atomically.
func (b *Backup) Write(data []byte) error {
	if b == nil {
		return nil
	}
	compressed := zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("settings: backup dir: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("settings: write backup: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("settings: replace backup: %w", err)
	}
	return nil
}

// Read returns the decompressed backup. A missing file wraps os.ErrNotExist.
func (b *Backup) Read() ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("settings: no backup configured: %w", os.ErrNotExist)
	}
	compressed, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("settings: read backup: %w", err)
	}
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("settings: decompress backup: %w", err)
	}
	return data, nil
}
