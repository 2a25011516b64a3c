// internal/clients/image_store.go
package clients

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// ImageStore serves bin snapshots from a directory laid out as
// <root>/<binID>/<filename>.
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

// Image reads one snapshot and returns its bytes and pixel dimensions.
func (s *ImageStore) Image(ctx context.Context, binID, filename string) ([]byte, int, int, error) {
	if strings.Contains(binID, "..") || strings.Contains(filename, "..") ||
		strings.ContainsRune(filename, os.PathSeparator) {
		return nil, 0, 0, fmt.Errorf("invalid image path %q/%q", binID, filename)
	}

	path := filepath.Join(s.root, binID, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read image %s: %w", path, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image %s: %w", path, err)
	}
	return data, cfg.Width, cfg.Height, nil
}
