package launchagent

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer collects tail output across goroutines.
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

// appendString appends to path, creating it if needed. Errors are
// ignored; the assertions on observed output catch real failures.
func appendString(path, s string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(s)
}

// startTail runs a tail in the background and blocks until its watcher
// is armed, so content written after startTail returns is observed.
func startTail(t *testing.T, path string) (*syncBuffer, context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	buf := &syncBuffer{}
	done := make(chan error, 1)
	armed := make(chan struct{})
	go func() {
		done <- tailFile(ctx, path, buf, func() { close(armed) })
	}()

	select {
	case <-armed:
	case err := <-done:
		t.Fatalf("tail exited before arming: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("tail did not arm")
	}
	return buf, cancel, done
}

func stopTail(t *testing.T, cancel context.CancelFunc, done chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tail did not stop after cancellation")
	}
}

func TestTailFileStreamsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	buf, cancel, done := startTail(t, path)

	appendString(path, "hello from the service\n")
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "hello from the service\n")
	}, 5*time.Second, 50*time.Millisecond)

	stopTail(t, cancel, done)

	// The stream starts at the end of the file: pre-existing content
	// is never replayed.
	require.NotContains(t, buf.String(), "old line")
}

func TestTailFileWaitsForCreation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	buf, cancel, done := startTail(t, path)

	// The file is created only after the watcher is armed, so its
	// first content must come through.
	require.NoError(t, os.WriteFile(path, []byte("born\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "born")
	}, 5*time.Second, 50*time.Millisecond)

	stopTail(t, cancel, done)
}

func TestTailFileTruncation(t *testing.T) {
	if os.Getenv("CI") == "" {
		t.Skip("Skipping integration test outside of CI")
	}

	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	buf, cancel, done := startTail(t, path)

	require.NoError(t, os.Truncate(path, 0))
	require.Eventually(t, func() bool {
		appendString(path, "second\n")
		return strings.Contains(buf.String(), "second\n")
	}, 5*time.Second, 50*time.Millisecond)

	stopTail(t, cancel, done)
}

func TestTailFileRecreation(t *testing.T) {
	if os.Getenv("CI") == "" {
		t.Skip("Skipping integration test outside of CI")
	}

	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	buf, cancel, done := startTail(t, path)

	// Log rotation: the file vanishes and a fresh one appears.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte("reborn\n"), 0o644))
	require.Eventually(t, func() bool {
		appendString(path, ".")
		return strings.Contains(buf.String(), "reborn")
	}, 5*time.Second, 50*time.Millisecond)

	stopTail(t, cancel, done)
}

func TestTailFileCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))

	_, cancel, done := startTail(t, path)
	stopTail(t, cancel, done)
}

func TestTailFileMissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "service.log")

	err := TailFile(context.Background(), path, io.Discard)
	require.Error(t, err)
}
