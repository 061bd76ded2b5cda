package record

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

type traceFile struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func (t *traceFile) close() error {
	_ = t.w.Flush()
	err := t.enc.Close()
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// TraceWriter writes step records as zstd compressed JSONL, one file per experiment
type TraceWriter struct {
	dir string

	mu    sync.Mutex
	files map[string]*traceFile
}

var _ Sink = &TraceWriter{}

func NewTraceWriter(dir string) *TraceWriter {
	return &TraceWriter{
		dir:   dir,
		files: make(map[string]*traceFile),
	}
}

// PathFor returns the file the steps of the experiment are written to
func (w *TraceWriter) PathFor(experiment string) string {
	return filepath.Join(w.dir, experiment+".jsonl.zst")
}

func (w *TraceWriter) WriteEpisode(_ context.Context, _ EpisodeRecord, steps []StepRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range steps {
		tf, err := w.fileLocked(s.Experiment)
		if err != nil {
			return err
		}
		b, err := json.Marshal(s)
		if err != nil {
			return err
		}
		if _, err := tf.w.Write(b); err != nil {
			return err
		}
		if err := tf.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	for _, tf := range w.files {
		if err := tf.w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *TraceWriter) fileLocked(experiment string) (*traceFile, error) {
	if tf, ok := w.files[experiment]; ok {
		return tf, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(w.PathFor(experiment), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	tf := &traceFile{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	w.files[experiment] = tf
	return tf, nil
}

func (w *TraceWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var first error
	for name, tf := range w.files {
		if err := tf.close(); err != nil && first == nil {
			first = fmt.Errorf("closing trace of %s: %w", name, err)
		}
		delete(w.files, name)
	}
	return first
}

// ReadTraceFile decodes every step record of a file written by TraceWriter
func ReadTraceFile(path string) ([]StepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	out := make([]StepRecord, 0)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var s StepRecord
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
