package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all user-configurable settings loaded from config.toml
// (or config.yaml)
type Config struct {
	Home  string      `toml:"home" yaml:"home"` // Browsing floor; empty = $DIRINDEX_HOME or the user home
	Index IndexConfig `toml:"index" yaml:"index"`
	Watch WatchConfig `toml:"watch" yaml:"watch"`
	Store StoreConfig `toml:"store" yaml:"store"`
	Log   LogConfig   `toml:"log" yaml:"log"`
}

// IndexConfig holds indexing settings
type IndexConfig struct {
	MaxFileSize int64    `toml:"max_file_size" yaml:"max_file_size"` // Bytes; larger files are indexed by name only
	MaxDepth    int      `toml:"max_depth" yaml:"max_depth"`         // 0 = unlimited
	Exclude     []string `toml:"exclude" yaml:"exclude"`             // Glob patterns
	Persist     bool     `toml:"persist" yaml:"persist"`             // Save finished indexes to the store
}

// WatchConfig holds directory watching settings
type WatchConfig struct {
	Enabled    bool `toml:"enabled" yaml:"enabled"`
	DebounceMs int  `toml:"debounce_ms" yaml:"debounce_ms"`
}

// StoreConfig holds database settings
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level      string   `toml:"level" yaml:"level"`                               // "debug" | "info" | "warn" | "error"
	Categories []string `toml:"categories,omitempty" yaml:"categories,omitempty"` // Debug categories to enable, "all" for every one
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MaxFileSize: 10 * 1024 * 1024,
			Exclude:     []string{".git", "node_modules", "*.lock"},
			Persist:     true,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 200,
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir(), "dirindex.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dirindex")
}

// ConfigPath returns the default config file path: ~/.config/dirindex/config.toml
func ConfigPath() string {
	return filepath.Join(dataDir(), "config.toml")
}

// Load reads the configuration at path. A missing file yields the defaults.
// The format follows the extension: .yaml/.yml is YAML, anything else TOML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		debug.Log(debug.APP, "Config: %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Home = expandHome(cfg.Home)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	debug.Log(debug.APP, "Config: loaded from %s", path)
	return cfg, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ResolveHome returns the browsing floor: the configured home, then
// $DIRINDEX_HOME, then the user's home directory, then "/".
func (c *Config) ResolveHome() string {
	if c.Home != "" {
		return filepath.Clean(c.Home)
	}
	if env := os.Getenv("DIRINDEX_HOME"); env != "" {
		return filepath.Clean(expandHome(env))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Clean(home)
	}
	return string(filepath.Separator)
}

// DebugCategories converts Log.Categories for debug.SetCategories. It
// returns nil when none are configured.
func (c *Config) DebugCategories() map[debug.Category]bool {
	if len(c.Log.Categories) == 0 {
		return nil
	}
	cats := make(map[debug.Category]bool)
	for _, name := range c.Log.Categories {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "ALL" {
			for _, cat := range debug.AllCategories() {
				cats[cat] = true
			}
			continue
		}
		if name != "" {
			cats[debug.Category(name)] = true
		}
	}
	return cats
}

// Manager guards a loaded configuration for concurrent readers and
// remembers where it came from.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
}

// NewManager loads path into a new Manager.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{config: cfg, path: path}, nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// Path returns the file the configuration was loaded from.
func (m *Manager) Path() string {
	return m.path
}

// Save writes the current configuration back to its file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return write(m.path, m.config)
}

// Update applies fn to the configuration and writes the result. The
// in-memory configuration is left unchanged if the write fails.
func (m *Manager) Update(fn func(*Config) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := *m.config
	next.Index.Exclude = append([]string(nil), m.config.Index.Exclude...)
	next.Log.Categories = append([]string(nil), m.config.Log.Categories...)
	if err := fn(&next); err != nil {
		return err
	}
	if err := write(m.path, &next); err != nil {
		return err
	}
	m.config = &next
	return nil
}

func write(path string, cfg *Config) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GenerateConfig backs up an existing config at path and writes fresh
// defaults. Returns the backup path if a backup was created.
func GenerateConfig(path string) (backupPath string, err error) {
	if path == "" {
		path = ConfigPath()
	}

	if data, err := os.ReadFile(path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		ext := filepath.Ext(path)
		backupPath = strings.TrimSuffix(path, ext) + ".backup." + timestamp + ext
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := write(path, DefaultConfig()); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}
