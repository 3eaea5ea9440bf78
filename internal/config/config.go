// Package config provides ugdb's layered configuration: built-in defaults,
// an optional JSON config file, and UGDB_* environment overrides, merged in
// that order. Values are addressed by dotted paths like "logging.level".
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Config provides unified access to the merged configuration tree.
// All accessors are safe for concurrent use.
type Config struct {
	mu     sync.RWMutex
	values map[string]any
}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	return &Config{values: map[string]any{
		"gdb": map[string]any{
			"path": "gdb",
			"args": []any{},
		},
		"layout": "(1s-1c)|(1e-1t)",
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
		"script": map[string]any{
			"path": "",
		},
	}}
}

// DefaultPath returns the user config file path, typically
// ~/.config/ugdb/config.json.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ugdb", "config.json")
}

// LoadFile merges a JSON config file over the current values.
// A missing file is not an error; a malformed one is.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.mu.Lock()
	mergeMaps(c.values, loaded)
	c.mu.Unlock()
	return nil
}

// envMapping maps environment variables to config paths.
var envMapping = map[string]string{
	"UGDB_GDB":       "gdb.path",
	"UGDB_LAYOUT":    "layout",
	"UGDB_LOG_LEVEL": "logging.level",
	"UGDB_LOG_FILE":  "logging.file",
	"UGDB_SCRIPT":    "script.path",
}

// LoadEnv merges environment overrides over the current values.
func (c *Config) LoadEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for env, path := range envMapping {
		if value, ok := os.LookupEnv(env); ok {
			c.setPath(path, value)
		}
	}
}

// Set stores a value at a dotted path, creating intermediate sections.
func (c *Config) Set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPath(path, value)
}

// GetString returns the string at path, or fallback when the value is absent
// or not a string.
func (c *Config) GetString(path, fallback string) string {
	v, ok := c.lookup(path)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// GetInt returns the integer at path, or fallback. JSON numbers and numeric
// strings both count.
func (c *Config) GetInt(path string, fallback int) int {
	v, ok := c.lookup(path)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetBool returns the boolean at path, or fallback.
func (c *Config) GetBool(path string, fallback bool) bool {
	v, ok := c.lookup(path)
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetStringList returns the string list at path, or nil. Non-string items
// are skipped.
func (c *Config) GetStringList(path string) []string {
	v, ok := c.lookup(path)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}

func (c *Config) lookup(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	current := any(c.values)
	for _, part := range strings.Split(path, ".") {
		section, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = section[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath must be called with mu held.
func (c *Config) setPath(path string, value any) {
	parts := strings.Split(path, ".")
	section := c.values
	for _, part := range parts[:len(parts)-1] {
		child, ok := section[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			section[part] = child
		}
		section = child
	}
	section[parts[len(parts)-1]] = value
}

// mergeMaps deep-merges src over dst; non-map values replace wholesale.
func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if srcMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[key] = value
	}
}
