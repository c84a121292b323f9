package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Config struct {
	Path            string
	DataDir         string
	SaveDirectory   string
	Store           string
	SQLitePath      string
	RedisAddr       string
	LogFile         string
	MetricsAddr     string
	History         int
	ConnectModifier string
	Confirmations   bool
}

func defaultConfig(homeDir string) *Config {
	dataDir := ""
	if homeDir != "" {
		dataDir = filepath.Join(homeDir, ".qnks")
	}
	return &Config{
		DataDir:         dataDir,
		Store:           "file",
		History:         defaultHistoryDepth,
		ConnectModifier: "any",
		Confirmations:   true,
	}
}

// configPath is $QNKS_CONFIG, or ~/.qnksrc.
func configPath(homeDir string) string {
	if p := os.Getenv("QNKS_CONFIG"); p != "" {
		return p
	}
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, ".qnksrc")
}

// loadConfig reads the rc file. A missing or unreadable file leaves the
// defaults in place.
func loadConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	path := configPath(homeDir)
	config, err := loadConfigFrom(path, homeDir)
	if err != nil {
		config = defaultConfig(homeDir)
		config.Path = path
	}
	return config
}

func loadConfigFrom(path, homeDir string) (*Config, error) {
	config := defaultConfig(homeDir)
	config.Path = path
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				config.finish(homeDir)
				return config, nil
			}
			return nil, err
		}
		defer file.Close()
		if err := parseConfig(file, config, homeDir); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	config.finish(homeDir)
	return config, nil
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func parseConfig(r io.Reader, config *Config, homeDir string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "data_dir", "datadir":
			config.DataDir = expandPath(value, homeDir)
		case "savedirectory", "save_directory", "savedir", "save_dir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "store":
			config.Store = strings.ToLower(value)
		case "sqlite_path":
			config.SQLitePath = expandPath(value, homeDir)
		case "redis_addr":
			config.RedisAddr = value
		case "log_file", "logfile":
			config.LogFile = expandPath(value, homeDir)
		case "metrics_addr":
			config.MetricsAddr = value
		case "history":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.History = n
			}
		case "connect_modifier":
			switch v := strings.ToLower(value); v {
			case "alt", "ctrl", "any":
				config.ConnectModifier = v
			}
		case "confirmations", "confirm":
			config.Confirmations = strings.ToLower(value) == "true"
		}
	}
	return scanner.Err()
}

// finish fills the paths that default to the data directory.
func (c *Config) finish(homeDir string) {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(os.TempDir(), "qnks")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "qnks.log")
	}
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// IsConnectModifier reports whether the modifiers held on a click select
// connection mode.
func (c *Config) IsConnectModifier(alt, ctrl bool) bool {
	switch c.ConnectModifier {
	case "alt":
		return alt
	case "ctrl":
		return ctrl
	default:
		return alt || ctrl
	}
}

// applyReload copies the settings that can change while running.
func (c *Config) applyReload(next *Config) {
	c.Confirmations = next.Confirmations
	c.ConnectModifier = next.ConnectModifier
	c.SaveDirectory = next.SaveDirectory
}

type configChangedMsg struct {
	config *Config
}

// configWatcher reloads the rc file when it changes on disk.
type configWatcher struct {
	path    string
	homeDir string
	watcher *fsnotify.Watcher
	changes chan *Config
	logger  *zap.Logger
	stopCh  chan struct{}
	once    sync.Once
}

func newConfigWatcher(path, homeDir string, logger *zap.Logger) (*configWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no config path to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory so editors that save by rename are seen, and so
	// the file can be created after startup.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}
	w := &configWatcher{
		path:    path,
		homeDir: homeDir,
		watcher: watcher,
		changes: make(chan *Config, 1),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go w.watchLoop()
	logger.Info("config watcher started", zap.String("path", path))
	return w, nil
}

func (w *configWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *configWatcher) reload() {
	config, err := loadConfigFrom(w.path, w.homeDir)
	if err != nil {
		w.logger.Error("failed to reload configuration, keeping current", zap.Error(err))
		return
	}
	w.logger.Info("configuration reloaded", zap.String("path", w.path))
	// Keep only the newest pending config.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- config:
	case <-w.stopCh:
	}
}

// Next waits for the next reload and delivers it to the program.
func (w *configWatcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case config := <-w.changes:
			return configChangedMsg{config: config}
		case <-w.stopCh:
			return nil
		}
	}
}

func (w *configWatcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("config watcher stopped")
	})
}
