package launchagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// tailStopGrace is the grace period granted to tail goroutines on stop
const tailStopGrace = 100 * time.Millisecond

// TailFile streams content appended to the file at path into w until
// ctx is canceled. The stream starts at the file's current end, so only
// content written after the call is delivered. A file that does not
// exist yet is waited for; removal pauses the stream until the file
// reappears, and truncation restarts it from the new beginning.
// Cancellation is the normal way to end a tail and returns nil.
func TailFile(ctx context.Context, path string, w io.Writer) error {
	return tailFile(ctx, path, w, func() {})
}

// tailFile implements TailFile. armed is called once the watcher is in
// place and the starting position is established; content arriving
// after that point is observed.
func tailFile(ctx context.Context, path string, w io.Writer, armed func()) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	// A file absent at entry carries only content written after the
	// call, so the first open must not skip to the end.
	_, statErr := os.Stat(path)
	seekEnd := statErr == nil

	// The parent directory is watched rather than the file itself so
	// creation and recreation are observed.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	// Bridge outer cancellation into the stopper lifecycle
	sctx.Go(func(sctx *stopper.Context) error {
		select {
		case <-ctx.Done():
			sctx.Stop(tailStopGrace)
		case <-sctx.Stopping():
		}
		return nil
	})

	t := &tailState{path: path, w: w}
	defer t.close()

	if err := t.open(seekEnd); err != nil {
		return stopAndWait(sctx, err)
	}
	if err := t.drain(); err != nil {
		return stopAndWait(sctx, err)
	}

	armed()

	for !sctx.IsStopping() {
		select {
		case <-sctx.Stopping():

		case event, ok := <-watcher.Events:
			if !ok {
				return stopAndWait(sctx, nil)
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if err := t.handle(event); err != nil {
				return stopAndWait(sctx, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return stopAndWait(sctx, nil)
			}
			if err != nil {
				return stopAndWait(sctx, err)
			}
		}
	}

	return stopAndWait(sctx, nil)
}

// stopAndWait stops the stopper context, reaps its goroutines, and
// folds cancellation into a clean exit.
func stopAndWait(sctx *stopper.Context, err error) error {
	sctx.Stop(tailStopGrace)
	waitErr := sctx.Wait()
	if err != nil {
		return err
	}
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	return nil
}

// tailState tracks the open file and consumed offset of one tail.
type tailState struct {
	path   string
	w      io.Writer
	f      *os.File
	offset int64
}

// open opens the file if it exists. With seekEnd the stream starts at
// the current end so earlier content is skipped; otherwise it starts at
// the beginning. A missing file is not an error, it is waited for.
func (t *tailState) open(seekEnd bool) error {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	t.f = f
	t.offset = 0
	if seekEnd {
		off, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		t.offset = off
	}
	return nil
}

// drain copies everything between the consumed offset and the current
// end of file to the writer. A file shorter than the consumed offset
// was truncated; the stream restarts from its new beginning.
func (t *tailState) drain() error {
	if t.f == nil {
		return nil
	}

	info, err := t.f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < t.offset {
		if _, err := t.f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		t.offset = 0
	}

	n, err := io.Copy(t.w, t.f)
	t.offset += n
	return err
}

// handle reacts to one filesystem event for the tailed path.
func (t *tailState) handle(event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Create):
		t.close()
		if err := t.open(false); err != nil {
			return err
		}
		return t.drain()

	case event.Has(fsnotify.Write):
		if t.f == nil {
			if err := t.open(false); err != nil {
				return err
			}
		}
		return t.drain()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t.close()
	}
	return nil
}

// close releases the open file, if any.
func (t *tailState) close() {
	if t.f != nil {
		_ = t.f.Close()
		t.f = nil
	}
}
