package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool, tick func()) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		if tick != nil {
			tick()
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// ---------------------------------------------------------------------------
// TestValidateWatchDirs - Directory constraints
// ---------------------------------------------------------------------------

func TestValidateWatchDirs(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	file := filepath.Join(in, "page.html")
	writeFile(t, file, "<p>x</p>")

	tests := []struct {
		name    string
		input   string
		output  string
		wantErr error
	}{
		{"valid", in, filepath.Join(t.TempDir(), "site"), nil},
		{"missing input", filepath.Join(in, "missing"), t.TempDir(), os.ErrNotExist},
		{"file input", file, t.TempDir(), ErrUsage},
		{"no output", in, "", ErrUsage},
		{"output equals input", in, in, ErrUsage},
		{"output inside input", in, filepath.Join(in, "public"), ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateWatchDirs(tt.input, tt.output)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateWatchDirs() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateWatchDirs() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWatchDirs_SiblingPrefix(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	in := filepath.Join(parent, "docs")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	// "docs-out" shares a prefix with "docs" but is not inside it.
	if err := validateWatchDirs(in, filepath.Join(parent, "docs-out")); err != nil {
		t.Errorf("validateWatchDirs() unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRunWatch - Initial pass and re-enhancement
// ---------------------------------------------------------------------------

func TestRunWatch(t *testing.T) {
	clearManguideEnv(t)

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")
	src := filepath.Join(in, "sdpctl_login.html")
	dst := filepath.Join(out, "sdpctl_login.html")
	writeFile(t, src, samplePage)

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{Now: time.Now, Stdout: stdout, Stderr: stderr, Logger: zap.NewNop()}
	flags := &watchFlags{output: out, basePath: "/docs/", debounce: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, []string{in}, flags, env) }()

	eventually(t, "watcher start", func() bool {
		return strings.Contains(stdout.String(), "Watching "+in)
	}, nil)
	if got := readFile(t, dst); !strings.Contains(got, wantTrail) {
		t.Errorf("initial output missing trail:\n%s", got)
	}

	updated := strings.Replace(samplePage, "# sign in first", "# sign in again", 1)
	eventually(t, "re-enhanced page", func() bool {
		got, err := os.ReadFile(dst)
		return err == nil && strings.Contains(string(got), `<span class="code-comment"># sign in again</span>`)
	}, func() { writeFile(t, src, updated) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch() did not return after cancel")
	}

	if got := readFile(t, src); got != updated {
		t.Error("watch modified the input page")
	}
	if s := stderr.String(); strings.Contains(s, "FAILED") {
		t.Errorf("unexpected failures: %s", s)
	}
}
