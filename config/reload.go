package config

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Holder holds a Config with atomic hot-reload from its backing file,
// grounded on ManuGH-xg2g/internal/config.ConfigHolder's watch-debounce-
// reload-notify shape, adapted to this module's own Config and to
// log/slog instead of zerolog.
type Holder struct {
	mu      sync.RWMutex
	current *Config
	path    string
	logger  *slog.Logger

	listenersMu sync.Mutex
	listeners   []chan<- *Config

	watcher *fsnotify.Watcher
}

// NewHolder builds a Holder seeded with initial, reloading from path.
func NewHolder(initial *Config, path string, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{current: initial, path: path, logger: logger}
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-reads and validates the backing file, atomically swapping the
// held Config only if the new one validates; an invalid reload leaves the
// previous Config in place rather than tearing down a running pipeline.
func (h *Holder) Reload() error {
	next, err := Load(h.path)
	if err != nil {
		h.logger.Error("config: reload failed", "path", h.path, "error", err)
		return err
	}
	h.mu.Lock()
	h.current = next
	h.mu.Unlock()
	h.notify(next)
	h.logger.Info("config: reloaded", "path", h.path)
	return nil
}

// RegisterListener registers ch to receive the new Config after every
// successful Reload. Delivery is non-blocking: a full channel is skipped
// rather than stalling the reload.
func (h *Holder) RegisterListener(ch chan<- *Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg *Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn("config: reload listener channel full, skipping")
		}
	}
}

// Watch starts an fsnotify watch on the backing file, debouncing rapid
// writes (editors often emit several events per save) before calling
// Reload. It returns once the watcher is established; the watch loop runs
// until ctx is cancelled.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(h.path); err != nil {
		_ = watcher.Close()
		return err
	}
	h.watcher = watcher
	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	const debounce = 300 * time.Millisecond
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		_ = h.watcher.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := h.Reload(); err != nil {
					h.logger.Error("config: auto-reload failed", "error", err)
				}
			})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error("config: watcher error", "error", err)
		}
	}
}
