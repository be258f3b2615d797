package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tldw/internal/logging"
)

// DefaultSettleDelay is how long a file must stay quiet before it is handled.
const DefaultSettleDelay = 500 * time.Millisecond

// Handler processes one settled caption file.
type Handler func(ctx context.Context, path string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher monitors a directory for caption files.
type Watcher struct {
	inputDir  string
	handler   Handler
	logger    *slog.Logger
	settle    time.Duration
	fs        *fsnotify.Watcher
	semaphore chan struct{}
	ready     chan string
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher on inputDir. maxConcurrent <= 0 means 2.
func New(inputDir string, handler Handler, maxConcurrent int, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher handler is required")
	}
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create input directory: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(inputDir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	w := &Watcher{
		inputDir:  inputDir,
		handler:   handler,
		settle:    DefaultSettleDelay,
		fs:        fs,
		semaphore: make(chan struct{}, maxConcurrent),
		ready:     make(chan string, 64),
		done:      make(chan struct{}),
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "watcher")
	return w, nil
}

// Scan queues every caption file already present in the input directory.
func (w *Watcher) Scan() (int, error) {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return 0, fmt.Errorf("scan input directory: %w", err)
	}
	queued := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsCaptionFile(entry.Name()) {
			continue
		}
		w.schedule(filepath.Join(w.inputDir, entry.Name()))
		queued++
	}
	return queued, nil
}

// Run processes events until ctx is done, then waits for in-flight work.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for caption files",
		logging.String("input_dir", w.inputDir),
		logging.Int("max_concurrent", cap(w.semaphore)),
	)
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.logger.Info("watcher stopping; waiting for active conversions")
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !IsCaptionFile(event.Name) {
				w.logger.Debug("ignoring non-caption file", logging.String("path", event.Name))
				continue
			}
			w.schedule(event.Name)

		case path := <-w.ready:
			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()
				if err := w.handler(ctx, path); err != nil {
					logging.WarnWithContext(w.logger, "caption conversion failed", "watch_convert_failed",
						logging.String("path", path),
						logging.Error(err),
						logging.String(logging.FieldImpact, "no transcript written for this file"),
					)
				}
			}()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", logging.Error(err))
		}
	}
}

// Close releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.stopTimers()
	return w.fs.Close()
}

// schedule (re)arms the settle timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// IsCaptionFile reports whether name has a caption extension the pipeline reads.
func IsCaptionFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".vtt")
}
