package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gdb", cfg.GDB().Path)
	assert.Empty(t, cfg.GDB().Args)
	assert.Equal(t, "(1s-1c)|(1e-1t)", cfg.Layout())
	assert.Equal(t, "info", cfg.Logging().Level)
	assert.Equal(t, "", cfg.Logging().File)
	assert.Equal(t, "", cfg.ScriptPath())
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"gdb": {"path": "/opt/gdb/bin/gdb", "args": ["-q"]},
		"logging": {"level": "debug"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "/opt/gdb/bin/gdb", cfg.GDB().Path)
	assert.Equal(t, []string{"-q"}, cfg.GDB().Args)
	assert.Equal(t, "debug", cfg.Logging().Level)
	// Untouched siblings survive the merge.
	assert.Equal(t, "", cfg.Logging().File)
	assert.Equal(t, "(1s-1c)|(1e-1t)", cfg.Layout())
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.json")))
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	assert.Error(t, Default().LoadFile(path))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("UGDB_GDB", "/usr/bin/gdb-multiarch")
	t.Setenv("UGDB_LOG_LEVEL", "debug")
	t.Setenv("UGDB_LAYOUT", "s|c")

	cfg := Default()
	cfg.LoadEnv()

	assert.Equal(t, "/usr/bin/gdb-multiarch", cfg.GDB().Path)
	assert.Equal(t, "debug", cfg.Logging().Level)
	assert.Equal(t, "s|c", cfg.Layout())
}

func TestSetAndGetters(t *testing.T) {
	cfg := Default()
	cfg.Set("script.path", "/home/me/init.lua")
	cfg.Set("custom.depth", 3)
	cfg.Set("custom.verbose", true)

	assert.Equal(t, "/home/me/init.lua", cfg.ScriptPath())
	assert.Equal(t, 3, cfg.GetInt("custom.depth", 0))
	assert.True(t, cfg.GetBool("custom.verbose", false))

	// Fallbacks for absent and mistyped values.
	assert.Equal(t, 7, cfg.GetInt("custom.missing", 7))
	assert.Equal(t, "x", cfg.GetString("custom.depth", "x"))
}

func TestNumericStringsCoerce(t *testing.T) {
	cfg := Default()
	cfg.Set("a.b", "42")
	cfg.Set("a.c", "true")
	assert.Equal(t, 42, cfg.GetInt("a.b", 0))
	assert.True(t, cfg.GetBool("a.c", false))
}
