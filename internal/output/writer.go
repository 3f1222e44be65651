// Package output writes split images and metadata text files to disk.
package output

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/vearutop/uhdrsplit"
)

const (
	lockFilePrefix = "uhdrsplit-"
	lockRetryDelay = 50 * time.Millisecond
)

// Options controls file naming and placement.
type Options struct {
	// Dir receives all outputs; empty means the directory of each input.
	Dir             string
	ImagePattern    string
	MetadataPattern string
	Overwrite       bool
}

// Writer stores the parts of split files.
type Writer struct {
	opts Options
}

// New creates a Writer.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Write stores every image and metadata record of res, named after inputPath.
// The target directory is locked for the duration of the call so concurrent
// runs do not interleave their outputs.
func (w *Writer) Write(ctx context.Context, inputPath string, res *uhdrsplit.SplitResult) ([]uhdrsplit.Event, error) {
	dir := w.opts.Dir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}

	lockPath, err := LockPath(dir)
	if err != nil {
		return nil, err
	}
	lock := flock.New(lockPath)
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock output directory %q: %w", dir, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	var events []uhdrsplit.Event

	for i, img := range res.Images {
		path := filepath.Join(dir, FileName(w.opts.ImagePattern, stem, i+1))
		if err := w.writeFile(path, img); err != nil {
			return events, err
		}
		events = append(events, uhdrsplit.Event{Kind: uhdrsplit.EventFileWritten, Index: i + 1, Length: len(img), Path: path})
	}

	for i, meta := range res.Metadata {
		var buf bytes.Buffer
		if _, err := meta.WriteTo(&buf); err != nil {
			return events, err
		}
		path := filepath.Join(dir, FileName(w.opts.MetadataPattern, stem, i+1))
		if err := w.writeFile(path, buf.Bytes()); err != nil {
			return events, err
		}
		events = append(events, uhdrsplit.Event{Kind: uhdrsplit.EventFileWritten, Index: i + 1, Length: buf.Len(), Path: path})
	}

	return events, nil
}

// LockPath returns the lock file guarding dir. It lives in the system temp
// directory, keyed by the absolute path of dir.
func LockPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %q: %w", dir, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), lockFilePrefix+hex.EncodeToString(sum[:8])+".lock"), nil
}

// FileName renders pattern for the given input stem and 1-based index.
// Patterns without {index} get an "_<index>" suffix for every index after the first.
func FileName(pattern, stem string, index int) string {
	name := strings.ReplaceAll(pattern, "{stem}", stem)
	if strings.Contains(name, "{index}") {
		return strings.ReplaceAll(name, "{index}", strconv.Itoa(index))
	}
	if index > 1 {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(index) + ext
	}
	return name
}

// writeFile replaces path atomically with data.
func (w *Writer) writeFile(path string, data []byte) error {
	if !w.opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("write %s: %w", path, fs.ErrExist)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
