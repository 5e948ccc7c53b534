// Package watch re-checks a document against a template every time it
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mcncl/llsdtool/internal/analyzer"
	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/mcncl/llsdtool/internal/parser"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is re-checked.
const DefaultDebounce = 200 * time.Millisecond

// Result is the outcome of checking the document once.
type Result struct {
	Path string
	// Merged is the conformed document, nil unless the check succeeded.
	Merged llsd.Value
	// Mismatches lists every place the document disagrees with the template.
	Mismatches []analyzer.Mismatch
	// Err is set when the document could not be read or parsed.
	Err error
}

// OK reports whether the document was read and conforms.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Mismatches) == 0
}

// Stats counts watcher activity.
type Stats struct {
	Events  int
	Checks  int
	Failed  int
	Errors  int
	LastRun time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithDebounce sets the quiet period before a re-check.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFormat fixes the document format instead of guessing it.
func WithFormat(format parser.Format) Option {
	return func(w *Watcher) { w.format = format }
}

// WithHandler registers a function called with every Result.
func WithHandler(fn func(Result)) Option {
	return func(w *Watcher) { w.handler = fn }
}

// Watcher watches a single document.
type Watcher struct {
	mu       sync.Mutex
	path     string
	template llsd.Value
	format   parser.Format
	debounce time.Duration
	logger   *zap.Logger
	handler  func(Result)

	// time of the last unprocessed event, zero when nothing is pending
	pending time.Time
	stats   Stats
}

// New creates a Watcher for the document at path.
func New(path string, template llsd.Value, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		template: template,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Check reads, parses and conforms the document once, logs the outcome and
// passes it to the handler.
func (w *Watcher) Check() Result {
	res := Result{Path: w.path}

	doc, err := parser.ParseFile(w.path, w.format)
	if err != nil {
		res.Err = err
	} else if merged, ok := llsd.Conform(doc, w.template); ok {
		res.Merged = merged
	} else {
		res.Mismatches = analyzer.Explain(doc, w.template)
	}

	w.mu.Lock()
	w.stats.Checks++
	w.stats.LastRun = time.Now()
	if !res.OK() {
		w.stats.Failed++
	}
	w.mu.Unlock()

	switch {
	case res.Err != nil:
		w.logger.Warn("Document unreadable", zap.String("path", w.path), zap.Error(res.Err))
	case len(res.Mismatches) > 0:
		for _, m := range res.Mismatches {
			w.logger.Warn("Document does not conform",
				zap.String("path", w.path),
				zap.String("at", llsd.DisplayPath(m.Path)),
				zap.Stringer("want", m.Want),
				zap.Stringer("got", m.Got))
		}
	default:
		w.logger.Info("Document conforms", zap.String("path", w.path), zap.Int("size", llsd.Size(res.Merged)))
	}

	if w.handler != nil {
		w.handler(res)
	}
	return res
}

// Run checks the document once, then again after every change, until ctx is
// cancelled. The containing directory is watched so editors that replace the
// file on save are followed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("Watching document", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	w.Check()

	tick := w.debounce / 2
	if tick <= 0 || tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher stopped", zap.String("path", w.path))
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-ticker.C:
			if w.settled(now) {
				w.checkIfPresent()
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	w.logger.Debug("File event", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.stats.Events++
	w.pending = time.Now()
	w.mu.Unlock()
}

// settled reports whether a pending change has been quiet for the debounce
// period, clearing it if so.
func (w *Watcher) settled(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		return false
	}
	w.pending = time.Time{}
	return true
}

func (w *Watcher) checkIfPresent() {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		w.logger.Debug("Document removed, waiting for it to return", zap.String("path", w.path))
		return
	}
	w.Check()
}
