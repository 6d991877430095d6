package viewer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadUsesOriginalName(t *testing.T) {
	dir := t.TempDir()
	path, err := Download(dir, "/somewhere/report.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestDownloadNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	first, err := Download(dir, "report.pdf", []byte("one"))
	require.NoError(t, err)
	second, err := Download(dir, "report.pdf", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report (1).pdf"), first)
	assert.Equal(t, filepath.Join(dir, "report (2).pdf"), second)
	kept, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(kept))
}

func TestDownloadWithoutDataFails(t *testing.T) {
	_, err := Download(t.TempDir(), "report.pdf", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestPrintPassesTempFileAndRemovesIt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	record := filepath.Join(t.TempDir(), "printed")
	script := `cp "$1" "` + record + `" && echo "$1" > "` + record + `.path"`

	err := Print(context.Background(), []string{"sh", "-c", script, "lp"}, 5*time.Second, "report.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)

	printed, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(printed))

	tmpPath, err := os.ReadFile(record + ".path")
	require.NoError(t, err)
	_, statErr := os.Stat(strings.TrimSpace(string(tmpPath)))
	assert.True(t, os.IsNotExist(statErr), "temporary print file should be removed")
}

func TestPrintRemovesTempFileOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	record := filepath.Join(t.TempDir(), "path")
	script := `echo "$1" > "` + record + `"; echo "printer on fire" >&2; exit 3`

	err := Print(context.Background(), []string{"sh", "-c", script, "lp"}, 5*time.Second, "report.pdf", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "printer on fire")

	tmpPath, readErr := os.ReadFile(record)
	require.NoError(t, readErr)
	_, statErr := os.Stat(strings.TrimSpace(string(tmpPath)))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrintTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	start := time.Now()
	err := Print(context.Background(), []string{"sh", "-c", "exec sleep 5", "lp"}, 100*time.Millisecond, "report.pdf", []byte("x"))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestPrintWithoutDataFails(t *testing.T) {
	err := Print(context.Background(), []string{"lp"}, time.Second, "report.pdf", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}
