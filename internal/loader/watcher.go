package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher observes a data directory and fires a callback after changes
// settle. Events are debounced because editors and file copies emit
// bursts of writes for a single logical change.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for dir. The callback runs on the
// watcher's goroutine; it should hand off long work.
func NewWatcher(dir string, onChange func(), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	w.log.Info().Str("dir", w.dir).Msg("watching data directory")
	return nil
}

// Stop stops the watcher and waits for its goroutines to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	w.wg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending
			w.pending = false
			w.mu.Unlock()

			if fire && w.onChange != nil {
				w.log.Info().Msg("data directory changed, triggering reload")
				w.onChange()
			}
		}
	}
}
