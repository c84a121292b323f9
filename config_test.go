package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseConfig(t *testing.T) {
	home := t.TempDir()
	rc := `
# comment
data_dir = ~/qdata
savedirectory = ~/exports
store = SQLite
redis_addr = localhost:6379
metrics_addr = :9090
history = 12
connect_modifier = CTRL
confirmations = false
not a setting
history = -4
`
	config := defaultConfig(home)
	require.NoError(t, parseConfig(strings.NewReader(rc), config, home))
	config.finish(home)

	assert.Equal(t, filepath.Join(home, "qdata"), config.DataDir)
	assert.Equal(t, filepath.Join(home, "exports"), config.SaveDirectory)
	assert.Equal(t, "sqlite", config.Store)
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, ":9090", config.MetricsAddr)
	assert.Equal(t, 12, config.History)
	assert.Equal(t, "ctrl", config.ConnectModifier)
	assert.False(t, config.Confirmations)
	assert.Equal(t, filepath.Join(home, "qdata", "qnks.log"), config.LogFile)
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	home := t.TempDir()
	config, err := loadConfigFrom(filepath.Join(home, ".qnksrc"), home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".qnks"), config.DataDir)
	assert.Equal(t, "file", config.Store)
	assert.Equal(t, defaultHistoryDepth, config.History)
	assert.True(t, config.Confirmations)
}

func TestConfigPathFromEnv(t *testing.T) {
	t.Setenv("QNKS_CONFIG", "/tmp/custom-rc")
	assert.Equal(t, "/tmp/custom-rc", configPath("/home/x"))
}

func TestIsConnectModifier(t *testing.T) {
	tests := []struct {
		modifier  string
		alt, ctrl bool
		want      bool
	}{
		{"any", true, false, true},
		{"any", false, true, true},
		{"any", false, false, false},
		{"alt", false, true, false},
		{"alt", true, false, true},
		{"ctrl", true, false, false},
		{"ctrl", false, true, true},
	}
	for _, tt := range tests {
		c := &Config{ConnectModifier: tt.modifier}
		assert.Equal(t, tt.want, c.IsConnectModifier(tt.alt, tt.ctrl), "%s alt=%v ctrl=%v", tt.modifier, tt.alt, tt.ctrl)
	}
}

func TestGetSavePath(t *testing.T) {
	c := &Config{}
	assert.Equal(t, "a.csv", c.GetSavePath("a.csv"))

	dir := filepath.Join(t.TempDir(), "nested")
	c.SaveDirectory = dir
	assert.Equal(t, filepath.Join(dir, "a.csv"), c.GetSavePath("a.csv"))
	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestConfigWatcherReloads(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, ".qnksrc")
	require.NoError(t, os.WriteFile(path, []byte("confirmations = true\n"), 0o644))

	w, err := newConfigWatcher(path, home, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("confirmations = false\nconnect_modifier = alt\n"), 0o644))

	got := make(chan any, 1)
	go func() { got <- w.Next()() }()

	select {
	case msg := <-got:
		changed, ok := msg.(configChangedMsg)
		require.True(t, ok, "got %T", msg)
		assert.False(t, changed.config.Confirmations)
		assert.Equal(t, "alt", changed.config.ConnectModifier)

		live := &Config{Confirmations: true, ConnectModifier: "any"}
		live.applyReload(changed.config)
		assert.False(t, live.Confirmations)
		assert.Equal(t, "alt", live.ConnectModifier)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestConfigWatcherStop(t *testing.T) {
	home := t.TempDir()
	w, err := newConfigWatcher(filepath.Join(home, ".qnksrc"), home, zap.NewNop())
	require.NoError(t, err)
	w.Stop()
	w.Stop()
	assert.Nil(t, w.Next()())
}
