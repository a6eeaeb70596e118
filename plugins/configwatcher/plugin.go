// Package configwatcher watches the eventd config file and posts a
// config-changed event into the run loop whenever it is written.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Target is the event target used for config-changed events.
const Target = "config"

// Change is the payload of a config-changed event.
type Change struct {
	Path string
	At   time.Time
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch. Empty disables the watcher.
	Path string

	// DebounceDelay is the delay to wait after a file change before posting.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Plugin implements config watching functionality.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	poster   ports.EventPoster
	logger   ports.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg ports.PluginConfig) error {
	p.mu.Lock()
	p.poster = cfg.Poster
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files on save, so the directory is watched instead of the file.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and drops any pending notification.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debouncePost(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debouncePost(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.post()
	})
}

func (p *Plugin) post() {
	e := domain.NewEvent(domain.TypeConfigChanged, Change{Path: p.path, At: time.Now().UTC()})
	e.Target = Target

	if err := p.poster.Post(e); err != nil {
		if errors.Is(err, domain.ErrQueueClosed) {
			p.logger.Debug("config change dropped: run loop stopped")
			return
		}
		p.logger.Error("failed to post config change", ports.Err(err))
		return
	}
	p.logger.Info("config change detected", ports.String("path", p.path))
}
