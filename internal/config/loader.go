// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads the configuration at path, applies environment overrides and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// decodeFile decodes path over cfg, choosing the format by extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Marshal encodes cfg in the format named by ext (".yaml", ".yml" or
// ".toml").
func Marshal(cfg *Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Save writes cfg to path in the format matching its extension.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// Loader reloads the configuration when its file changes.
type Loader struct {
	path string
	log  *zap.Logger

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)

	watcher *fsnotify.Watcher
}

// NewLoader creates a loader for path. log may be nil.
func NewLoader(path string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{path: path, log: log}
}

// Load reads the configuration and remembers it.
func (l *Loader) Load() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Config returns the last successfully loaded configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnChange registers a callback run after every successful reload.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch reloads the configuration whenever the file is written, until ctx
// is done. Invalid edits are logged and the previous configuration stays in
// effect.
func (l *Loader) Watch(ctx context.Context) error {
	if l.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	l.watcher = watcher

	go l.watchLoop(ctx)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context) {
	defer l.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.log.Warn("config watch error", zap.Error(err))
		}
	}
}

func (l *Loader) reload() {
	cfg, err := Load(l.path)
	if err != nil {
		l.log.Warn("config reload rejected", zap.String("path", l.path), zap.Error(err))
		return
	}

	l.mu.Lock()
	l.config = cfg
	callbacks := slices.Clone(l.onChange)
	l.mu.Unlock()

	l.log.Info("config reloaded", zap.String("path", l.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
}
