package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoFile is returned by Download and Print when nothing is loaded.
var ErrNoFile = errors.New("no file to act on")

const maxDownloadSuffix = 999

// Download writes data into dir under name. An existing file is never
// replaced; "report (1).pdf", "report (2).pdf" and so on are tried instead.
// It returns the path written.
func Download(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "document.pdf"
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; i <= maxDownloadSuffix; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", base, dir)
}

// Print writes data to a temporary file and runs command with the file path
// appended. The temporary file is removed once the command exits or the
// timeout elapses.
func Print(ctx context.Context, command []string, timeout time.Duration, name string, data []byte) error {
	if len(data) == 0 {
		return ErrNoFile
	}
	if len(command) == 0 {
		return errors.New("no print command configured")
	}
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".pdf"
	}
	tmp, err := os.CreateTemp("", "pdfview-print-*"+ext)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	args := append(append([]string{}, command[1:]...), tmpName)
	cmd := exec.CommandContext(ctx, command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w (%s)", command[0], err, msg)
		}
		return fmt.Errorf("%s: %w", command[0], err)
	}
	return nil
}
