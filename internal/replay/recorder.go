// Package replay records raw execution streams to disk and feeds them
// back through the processing pipeline.
package replay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Recorder tees raw stream bytes to a file while the caller reads them.
// The recording is byte faithful, so a replayed file exercises the same
// framing and fragmentation handling as the live stream did.
type Recorder struct {
	file *os.File
}

// NewRecorder creates the recording file, making parent directories as
// needed. An existing file at path is truncated.
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("recording path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create recording dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return &Recorder{file: file}, nil
}

// Wrap returns a reader that copies everything read from source into the
// recording file. Closing the returned reader closes source but not the
// recording; call Close for that.
func (r *Recorder) Wrap(source io.ReadCloser) io.ReadCloser {
	return &teeCloser{Reader: io.TeeReader(source, r.file), source: source}
}

// Close flushes and closes the recording file.
func (r *Recorder) Close() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close recording: %w", err)
	}
	return nil
}

type teeCloser struct {
	io.Reader
	source io.ReadCloser
}

func (t *teeCloser) Close() error {
	return t.source.Close()
}
