// Package journal keeps a compressed, append-only JSONL copy of committed
// ledger events, one zstd file per hour.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"chronoforge/internal/engine"
)

const filePrefix = "events"

// Record is one journal line.
type Record struct {
	ID      string           `json:"id"`
	Seq     int64            `json:"seq"`
	Kind    engine.EventKind `json:"kind"`
	TokenID *int64           `json:"token_id,omitempty"`
	At      time.Time        `json:"at"`
	Data    json.RawMessage  `json:"data"`
}

// NewRecord stamps ev with a fresh record id.
func NewRecord(ev engine.Event) (Record, error) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s data: %w", ev.Kind, err)
	}
	return Record{
		ID:      uuid.NewString(),
		Seq:     ev.Seq,
		Kind:    ev.Kind,
		TokenID: ev.TokenID,
		At:      ev.At.UTC(),
		Data:    data,
	}, nil
}

// Writer appends records to <dir>/events-YYYY-MM-DD-HH.jsonl.zst, rotating on the
// event's hour. It implements engine.EventSink.
type Writer struct {
	baseDir string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

func (w *Writer) Publish(_ context.Context, ev engine.Event) error {
	rec, err := NewRecord(ev)
	if err != nil {
		return err
	}
	return w.Write(rec)
}

func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := rec.At.UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	// End the frame so the record is decodable on disk while the writer stays open.
	if err := w.enc.Close(); err != nil {
		return err
	}
	w.enc.Reset(w.f)
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

// closeLocked ends the current zstd frame. Reopening the same hour appends a new frame.
func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", filePrefix, hour))
}

// ListFiles returns the journal files in dir, oldest first.
func ListFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix+"-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadFile decodes every record in one journal file.
func ReadFile(path string) ([]Record, error) {
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

	var out []Record
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		out = append(out, rec)
	}
	// A torn final frame from a crash keeps the records before it.
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%s: scan: %w", filepath.Base(path), err)
	}
	return out, nil
}

// ReadDir decodes all journal files in dir in order.
func ReadDir(dir string) ([]Record, error) {
	paths, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, p := range paths {
		recs, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
