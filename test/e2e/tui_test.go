package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

// buildPressroom builds the pressroom binary for testing.
func buildPressroom(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "pressroom")

	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/pressroom")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

func TestE2E_BrowseAndSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary in a pty")
	}
	binPath := buildPressroom(t)
	srv := newFixtureAPI(t)

	stateDir := t.TempDir()
	cmd := exec.Command(binPath)
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+t.TempDir(),
		"XDG_STATE_HOME="+stateDir,
		"PRESSROOM_BASE_URL="+srv.URL,
	)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start pty: %v", err)
	}
	defer func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
	}()

	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: 120, Rows: 40}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	var outputBuf bytes.Buffer
	console, err := expect.NewConsole(
		expect.WithStdin(ptmx),
		expect.WithStdout(&outputBuf),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	// 1. Home view: latest feed and category sections
	if _, err := console.ExpectString("Fixture Post One"); err != nil {
		logs, _ := filepath.Glob(filepath.Join(stateDir, "pressroom", "logs", "*.log"))
		for _, path := range logs {
			if data, rerr := os.ReadFile(path); rerr == nil {
				t.Logf("%s:\n%s", filepath.Base(path), data)
			}
		}
		t.Fatalf("home view not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}
	if _, err := console.ExpectString("Tech"); err != nil {
		t.Fatalf("category section not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 2. Search
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send("/"); err != nil {
		t.Fatalf("failed to send slash: %v", err)
	}
	if _, err := console.ExpectString("Search posts"); err != nil {
		t.Fatalf("search prompt not found: %v\nScreen:\n%s", err, outputBuf.String())
	}
	if _, err := console.Send("garden"); err != nil {
		t.Fatalf("failed to send query: %v", err)
	}
	if _, err := console.ExpectString("Garden Notes"); err != nil {
		t.Fatalf("search hit not found: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 3. Close search and quit
	if _, err := console.Send("\x1b"); err != nil {
		t.Fatalf("failed to send esc: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send("q"); err != nil {
		t.Fatalf("failed to send q: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("process did not exit after 'q'")
	}

	// The session leaves an event log behind.
	if _, err := os.Stat(filepath.Join(stateDir, "pressroom", "events.jsonl")); err != nil {
		t.Errorf("expected event log: %v", err)
	}
}
