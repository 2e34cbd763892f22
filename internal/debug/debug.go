// Package debug provides a centralized, categorized logging system on top of
// zerolog. Categories map to the "component" field of each event.
package debug

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP    Category = "APP"    // Session lifecycle and wiring
	NAV    Category = "NAV"    // Navigation transitions and handler rebinding
	FS     Category = "FS"     // Directory enumeration
	INDEX  Category = "INDEX"  // Indexing jobs
	SEARCH Category = "SEARCH" // Query parsing and index lookups
	STORE  Category = "STORE"  // Database operations
	WATCH  Category = "WATCH"  // Directory change notifications
	UI     Category = "UI"     // Presentation events

	// Verbose
	FS_WALK Category = "FS_WALK" // Per-entry recursive walk output
)

var (
	enabledCategories = map[Category]bool{
		APP:    true,
		NAV:    true,
		FS:     true,
		INDEX:  true,
		SEARCH: true,
		STORE:  true,
		WATCH:  true,
		UI:     true,

		FS_WALK: false,
	}
	categoryMu sync.RWMutex

	loggerMu sync.RWMutex
	logger   = newLogger(os.Stderr, zerolog.InfoLevel)
)

func init() {
	// DIRINDEX_DEBUG=NAV,FS or DIRINDEX_DEBUG=all or DIRINDEX_DEBUG=none
	if env := os.Getenv("DIRINDEX_DEBUG"); env != "" {
		applyEnv(env)
	}
}

func applyEnv(env string) {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	env = strings.ToUpper(strings.TrimSpace(env))
	switch env {
	case "ALL":
		for cat := range enabledCategories {
			enabledCategories[cat] = true
		}
	case "NONE":
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
	default:
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
		for _, cat := range strings.Split(env, ",") {
			cat = strings.TrimSpace(cat)
			if cat != "" {
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if f, ok := out.(*os.File); ok {
		out = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Init replaces the global logger. level is one of trace, debug, info, warn,
// error; unknown values fall back to info. A nil out writes to stderr.
func Init(level string, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	loggerMu.Lock()
	logger = newLogger(out, lvl)
	loggerMu.Unlock()
}

// For returns a logger tagged with the category as its component.
func For(cat Category) zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger.With().Str("component", string(cat)).Logger()
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	if !IsEnabled(cat) {
		return
	}
	l := For(cat)
	l.Debug().Msgf(format, args...)
}

// Info logs regardless of the category switch.
func Info(cat Category, format string, args ...interface{}) {
	l := For(cat)
	l.Info().Msgf(format, args...)
}

// Warn logs regardless of the category switch.
func Warn(cat Category, format string, args ...interface{}) {
	l := For(cat)
	l.Warn().Msgf(format, args...)
}

// Error logs err with a message regardless of the category switch.
func Error(cat Category, err error, format string, args ...interface{}) {
	l := For(cat)
	l.Error().Err(err).Msgf(format, args...)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}

// SetCategories sets the enabled state for multiple categories
func SetCategories(cats map[Category]bool) {
	categoryMu.Lock()
	for cat, enabled := range cats {
		enabledCategories[cat] = enabled
	}
	categoryMu.Unlock()
}

// ListEnabled returns the currently enabled categories in name order.
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled
}

// AllCategories returns every known category in name order.
func AllCategories() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	all := make([]Category, 0, len(enabledCategories))
	for cat := range enabledCategories {
		all = append(all, cat)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}
