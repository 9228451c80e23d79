// Package watch reports changes to scene files.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDelay is how long changes are coalesced before they are reported.
const DefaultDelay = 100 * time.Millisecond

// Watcher streams batches of changed files.
type Watcher struct {
	files map[string]bool
	delay time.Duration
	log   zerolog.Logger
}

// New watches files. Their parent directories are watched so editors that
// replace files on save are still seen.
func New(files []string, delay time.Duration, log zerolog.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	w := &Watcher{files: make(map[string]bool, len(files)), delay: delay, log: log}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Run sends the sorted list of changed files after each burst of writes.
// The channel is closed once ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) (<-chan []string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch: %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	out := make(chan []string, 1)
	go func() {
		defer close(out)
		defer func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "watch: close: %v\n", err)
			}
		}()

		batch := newBatcher(w.delay)
		defer batch.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn().Err(err).Msg("watch error")
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Clean(evt.Name)
				if !w.files[name] {
					continue
				}
				w.log.Debug().Str("file", name).Str("op", evt.Op.String()).Msg("scene changed")
				batch.add(name, func(files []string) {
					select {
					case out <- files:
					case <-ctx.Done():
					}
				})
			}
		}
	}()
	return out, nil
}

// batcher coalesces rapid notifications into one callback per burst.
type batcher struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool
	delay   time.Duration
}

func newBatcher(delay time.Duration) *batcher {
	return &batcher{delay: delay, pending: make(map[string]bool)}
}

func (b *batcher) add(name string, send func([]string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[name] = true
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, func() { b.flush(send) })
	}
}

func (b *batcher) flush(send func([]string)) {
	b.mu.Lock()
	files := make([]string, 0, len(b.pending))
	for name := range b.pending {
		files = append(files, name)
	}
	b.pending = make(map[string]bool)
	b.timer = nil
	b.mu.Unlock()

	if len(files) == 0 {
		return
	}
	slices.Sort(files)
	send(files)
}

func (b *batcher) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
