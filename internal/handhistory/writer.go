package handhistory

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/siliconcasino/internal/game"
)

const (
	defaultFlushInterval = 5 * time.Second
	defaultBuffer        = 256
)

// ErrWriterClosed is returned when flushing a closed writer.
var ErrWriterClosed = errors.New("handhistory: writer closed")

// WriterConfig controls a Writer.
type WriterConfig struct {
	Path             string
	FlushInterval    time.Duration
	Buffer           int
	IncludeHoleCards bool
	Clock            quartz.Clock
}

// Writer appends records to a JSON-lines file from a background goroutine.
// Write never blocks the caller; records that do not fit in the queue are
// dropped and counted. Buffered output is flushed on a timer, on Flush and
// on Close.
type Writer struct {
	cfg    WriterConfig
	logger *log.Logger

	file *os.File
	out  *bufio.Writer
	enc  *json.Encoder

	records  chan Record
	flushReq chan chan error
	stop     chan struct{}
	wg       sync.WaitGroup
	ticker   *quartz.Ticker

	closeOnce sync.Once
	closeErr  error
	written   atomic.Uint64
	dropped   atomic.Uint64
}

// NewWriter opens cfg.Path for appending, creating parent directories, and
// starts the writer goroutine.
func NewWriter(cfg WriterConfig, logger *log.Logger) (*Writer, error) {
	if cfg.Path == "" {
		return nil, errors.New("handhistory: path is required")
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("handhistory: create directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("handhistory: open %s: %w", cfg.Path, err)
	}

	out := bufio.NewWriter(f)
	w := &Writer{
		cfg:      cfg,
		logger:   logger.WithPrefix("handhistory"),
		file:     f,
		out:      out,
		enc:      json.NewEncoder(out),
		records:  make(chan Record, cfg.Buffer),
		flushReq: make(chan chan error),
		stop:     make(chan struct{}),
		ticker:   cfg.Clock.NewTicker(cfg.FlushInterval, "handhistory", "flush"),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Write queues a record. It reports false if the record was dropped.
func (w *Writer) Write(rec Record) bool {
	if !w.cfg.IncludeHoleCards {
		rec = rec.WithoutHoleCards()
	}
	select {
	case <-w.stop:
		w.dropped.Add(1)
		return false
	default:
	}
	select {
	case w.records <- rec:
		return true
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("History queue full, dropping hand", "hand", rec.HandID, "dropped", n)
		return false
	}
}

// Observe records a completed hand. Its signature matches the session
// hand-completion callback.
func (w *Writer) Observe(tableID string, h *game.Hand) {
	w.Write(FromHand(tableID, h))
}

// Flush writes everything queued so far to the file.
func (w *Writer) Flush() error {
	reply := make(chan error, 1)
	select {
	case w.flushReq <- reply:
		return <-reply
	case <-w.stop:
		return ErrWriterClosed
	}
}

// Close drains the queue, flushes and closes the file.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
		w.wg.Wait()
		w.ticker.Stop()
		w.closeErr = errors.Join(w.out.Flush(), w.file.Close())
		w.logger.Debug("History writer closed", "written", w.written.Load(), "dropped", w.dropped.Load())
	})
	return w.closeErr
}

// Written returns the number of records encoded.
func (w *Writer) Written() uint64 { return w.written.Load() }

// Dropped returns the number of records discarded.
func (w *Writer) Dropped() uint64 { return w.dropped.Load() }

func (w *Writer) run() {
	defer w.wg.Done()
	for {
		select {
		case rec := <-w.records:
			w.encode(rec)
		case <-w.ticker.C:
			w.flush()
		case reply := <-w.flushReq:
			w.drain()
			reply <- w.flush()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case rec := <-w.records:
			w.encode(rec)
		default:
			return
		}
	}
}

func (w *Writer) encode(rec Record) {
	if err := w.enc.Encode(rec); err != nil {
		w.logger.Error("Failed to write hand", "hand", rec.HandID, "err", err)
		return
	}
	w.written.Add(1)
}

func (w *Writer) flush() error {
	if err := w.out.Flush(); err != nil {
		w.logger.Error("History flush failed", "err", err)
		return err
	}
	return nil
}
