// Package watch reloads a config file whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/san-kum/monodsim/internal/config"
)

const DefaultDelay = 100 * time.Millisecond

// ReloadFunc receives the freshly loaded config, or the load error.
type ReloadFunc func(cfg *config.Config, err error)

type Watcher struct {
	path     string
	delay    time.Duration
	onReload ReloadFunc
	log      zerolog.Logger

	mu       sync.Mutex
	debounce *time.Timer
	// serializes reloads so a slow run never overlaps the next one
	runMu sync.Mutex
}

func New(path string, onReload ReloadFunc, log zerolog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		delay:    DefaultDelay,
		onReload: onReload,
		log:      log,
	}
}

func (w *Watcher) SetDelay(d time.Duration) { w.delay = d }

// Run watches the directory holding the config file, so editors that
// replace the file on save are still seen. It blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	w.log.Info().Str("path", target).Msg("watching config")

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Msg("config changed")
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	cfg, err := config.Load(w.path)
	if err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("reload failed")
	} else {
		w.log.Info().Str("path", w.path).Msg("config reloaded")
	}
	w.onReload(cfg, err)
}
