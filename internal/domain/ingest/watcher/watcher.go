// Package watcher observes a directory and triggers ingestion for newly
// arrived statement files. A file is handed off exactly once, and only
// after its contents have stabilized: partially-written files are common
// when documents are dropped over a network share or scanner.
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
)

// IngestFunc is invoked once per stabilized qualifying file.
type IngestFunc func(ctx context.Context, path string)

// Options configures a watch.
type Options struct {
	// Extensions is the allow-list of file extensions (with leading dot,
	// case-insensitive). Empty means DefaultExtensions.
	Extensions []string

	// PollInterval is the quiet period a file must survive without writes
	// before it is considered stable. Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// DefaultExtensions covers the statement formats the extractor understands.
var DefaultExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".csv", ".xlsx"}

// DefaultPollInterval is the default quiet period.
const DefaultPollInterval = 500 * time.Millisecond

// ErrAlreadyStopped indicates Stop was called on a handle more than once.
var ErrAlreadyStopped = errors.New("watcher already stopped")

// Handle is a running watch. The caller owns it: keeping a single handle is
// what prevents duplicate watch loops, rather than any hidden package
// state. Stop the handle to end the watch.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	watching bool
}

// Start begins observing dir. Only files that arrive after the watch begins
// are considered; pre-existing files are never picked up. Dotfiles and
// files outside the extension allow-list are ignored. Errors on one file
// are logged and do not stop the watch.
func Start(dir string, opts Options, ingest IngestFunc, logger *slog.Logger) (*Handle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		cancel:   cancel,
		done:     make(chan struct{}),
		watching: true,
	}

	go h.loop(ctx, fsw, allowed, interval, ingest, logger)

	logger.Info("watching directory",
		slog.String("dir", dir),
		slog.Duration("pollInterval", interval),
	)
	return h, nil
}

// IsWatching reports whether the watch loop is still running.
func (h *Handle) IsWatching() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.watching
}

// Stop ends the watch and waits for the loop to exit. In-flight ingestions
// run to completion; there is no cancellation of a started pipeline.
func (h *Handle) Stop() error {
	h.mu.Lock()
	if !h.watching {
		h.mu.Unlock()
		return ErrAlreadyStopped
	}
	h.watching = false
	h.mu.Unlock()

	h.cancel()
	<-h.done
	return nil
}

// loop consumes filesystem events until the context ends. Each qualifying
// new file gets one stabilization goroutine; the seen set guarantees a file
// is ingested at most once even when the OS coalesces or repeats events.
func (h *Handle) loop(ctx context.Context, fsw *fsnotify.Watcher, allowed map[string]bool, interval time.Duration, ingest IngestFunc, logger *slog.Logger) {
	defer close(h.done)
	defer fsw.Close()

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !qualifies(event.Name, allowed) {
				continue
			}

			mu.Lock()
			if seen[event.Name] {
				mu.Unlock()
				continue
			}
			seen[event.Name] = true
			mu.Unlock()

			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				if err := waitForStable(ctx, path, interval); err != nil {
					logger.Warn("file never stabilized, skipping",
						slog.String("file", filepath.Base(path)),
						slog.Any("error", err),
					)
					return
				}
				// Stop cancels ctx before waiting on the group; a started
				// pipeline must still run to completion, so detach it from
				// the watch lifetime.
				ingest(context.WithoutCancel(ctx), path)
			}(event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// qualifies filters out dotfiles and disallowed extensions.
func qualifies(path string, allowed map[string]bool) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return allowed[strings.ToLower(filepath.Ext(base))]
}

// waitForStable polls the file's size and mtime until they survive one full
// interval unchanged. The file may disappear mid-wait (moved away before
// stabilizing); that is reported as an error.
func waitForStable(ctx context.Context, path string, interval time.Duration) error {
	var lastSize int64 = -1
	var lastMod time.Time

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat: %w", err)
			}
			if info.Size() == lastSize && info.ModTime().Equal(lastMod) {
				return nil
			}
			lastSize = info.Size()
			lastMod = info.ModTime()
		}
	}
}
