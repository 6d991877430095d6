package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kyaoi/pdfview/internal/document/pdftest"
	"github.com/kyaoi/pdfview/internal/tuitest"
)

func TestPDFViewOpenNavigateToggleClose(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	work := t.TempDir()
	fixture := filepath.Join(work, "report.pdf")
	if err := os.WriteFile(fixture, pdftest.Build("first page text", "second page text"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	prefsPath := filepath.Join(work, "prefs.toml")
	logPath := filepath.Join(work, "pdfview.log")

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{
			binary, "-no-alt-screen",
			"-config", filepath.Join(work, "missing.toml"),
			"-prefs", prefsPath,
			"-log", logPath,
			fixture,
		},
		Dir:    work,
		Env:    []string{"HOME=" + work},
		Width:  120,
		Height: 40,
		Steps: []tuitest.Step{
			{WaitFor: "report.pdf", Delay: 200 * time.Millisecond, Input: tuitest.KeyEnter},
			{WaitFor: "page 1 / 2", Input: []byte("n")},
			{WaitFor: "page 2 / 2", Input: []byte("m")},
			{WaitFor: "Mode: continuous", Input: tuitest.KeyEsc},
			{Delay: 300 * time.Millisecond, Input: []byte("q")},
		},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if _, ok := rec.LastFrameContaining("page 2 / 2"); !ok {
		t.Fatalf("no frame showed the second page\n%s", rec.Plain())
	}

	prefs, err := os.ReadFile(prefsPath)
	if err != nil {
		t.Fatalf("read prefs: %v", err)
	}
	if !strings.Contains(string(prefs), `pdfViewMode = "continuous"`) {
		t.Fatalf("display mode not persisted:\n%s", prefs)
	}

	logged, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logged), "[jobs]") {
		t.Fatalf("log has no job entries:\n%s", logged)
	}
}

func TestPDFViewRejectsNonPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	t.Parallel()

	binary := buildBinary(t, moduleDir(t))
	notes := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("plain"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := exec.Command(binary, "-config", notes+".missing", notes).CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure, got output:\n%s", out)
	}
	if !strings.Contains(string(out), "not a PDF") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "pdfview-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
