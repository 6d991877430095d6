package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyaoi/pdfview/internal/viewer"
)

// ReadFile reads the PDF at path fully into memory.
func ReadFile(path string) (*viewer.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return &viewer.File{
		Name:    filepath.Base(abs),
		Path:    abs,
		Data:    data,
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
	}, nil
}

func sameFile(a, b *viewer.File) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Path == b.Path && a.Size == b.Size && a.ModTime.Equal(b.ModTime)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
