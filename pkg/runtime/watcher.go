package runtime

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/burrowhq/burrow/pkg/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 250 * time.Millisecond

// ConfigWatcher watches a tenant config directory and re-applies a tenant's
// configuration when its file changes. Edits hot-swap bindings, providers
// and subscriptions without a restart.
type ConfigWatcher struct {
	dir     string
	store   ConfigStore
	manager *ConfigManager

	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	stopCh  chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewConfigWatcher creates a watcher over the config directory
func NewConfigWatcher(dir string, store ConfigStore, manager *ConfigManager) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &ConfigWatcher{
		dir:     dir,
		store:   store,
		manager: manager,
		watcher: fsw,
		logger:  log.WithComponent("config-watcher"),
		stopCh:  make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching for config changes
func (w *ConfigWatcher) Start() {
	go w.run()
}

// Stop stops the watcher
func (w *ConfigWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *ConfigWatcher) run() {
	w.logger.Info().Str("dir", w.dir).Msg("Config watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".yaml") {
				continue
			}
			w.schedule(strings.TrimSuffix(name, ".yaml"))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watch error")

		case <-w.stopCh:
			w.logger.Info().Msg("Config watcher stopped")
			return
		}
	}
}

// schedule debounces rapid successive writes to the same tenant file
func (w *ConfigWatcher) schedule(tenantID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[tenantID]; ok {
		timer.Stop()
	}
	w.pending[tenantID] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.pending, tenantID)
		w.mu.Unlock()

		w.apply(tenantID)
	})
}

func (w *ConfigWatcher) apply(tenantID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.manager.ApplyFromStore(ctx, w.store, tenantID); err != nil {
		w.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("Failed to re-apply tenant config")
		return
	}
	w.logger.Info().Str("tenant_id", tenantID).Msg("Tenant config re-applied")
}
