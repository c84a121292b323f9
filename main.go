package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	config := loadConfig()

	logger, err := newLogger(config.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	kv, err := openKV(config, logger)
	if err != nil {
		logger.Error("failed to open store", zap.String("store", config.Store), zap.Error(err))
		log.Fatal(err)
	}
	defer kv.Close()

	metricsServer := serveMetrics(config.MetricsAddr, logger)

	m := initialModel(config, kv, logger)

	homeDir, _ := os.UserHomeDir()
	if watcher, err := newConfigWatcher(config.Path, homeDir, logger); err != nil {
		logger.Info("config reload disabled", zap.Error(err))
	} else {
		m.watcher = watcher
		defer watcher.Stop()
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		log.Fatal(err)
	}

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
	}
}

func initialModel(config *Config, kv KV, logger *zap.Logger) model {
	geometry := newCanvasGeometry(80-panelWidth, 23)
	session := NewSession(SessionOptions{
		Geometry:     geometry,
		Store:        NewRecordStore(kv, logger),
		Logger:       logger,
		HistoryDepth: config.History,
	})

	m := model{
		session:    session,
		geometry:   geometry,
		config:     config,
		kv:         kv,
		logger:     logger,
		styles:     newStyles(),
		editNoteID: noNote,
		moveNoteID: noNote,
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := session.Load(ctx); err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			m.setNotice("Saved data was unreadable; starting fresh", true)
		} else {
			logger.Error("failed to load saved data", zap.Error(err))
			m.setNotice("Could not load saved data; autosave is off until ctrl+s", true)
		}
	}

	settings, err := LoadSettings(ctx, kv)
	if err != nil {
		logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	m.settings = settings.applyEnv(nil)
	m.teacherMode = m.settings.TeacherMode

	m.ai = newAIRouter(aiRouterOptions{Logger: logger})
	m.outbox = NewOutbox(kv, nil, logger)

	m.questionInput = textinput.New()
	m.questionInput.Placeholder = "What is the question?"
	m.questionInput.CharLimit = 500

	m.keywordInput = textarea.New()
	m.keywordInput.Placeholder = "one keyword per line"
	m.keywordInput.ShowLineNumbers = false
	m.keywordInput.SetHeight(5)

	m.summaryInput = textarea.New()
	m.summaryInput.Placeholder = "Summarise the answer in your own words"
	m.summaryInput.ShowLineNumbers = false
	m.summaryInput.CharLimit = 0
	m.summaryInput.SetHeight(6)
	m.summaryInput.SetValue(session.Summary())

	m.noteInput = textinput.New()
	m.noteInput.Placeholder = "note text"
	m.noteInput.CharLimit = 200

	m.editInput = textarea.New()
	m.editInput.ShowLineNumbers = false
	m.editInput.SetHeight(4)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = m.styles.panelTitle

	m.answerPanel = session.Answer()

	logger.Info("session loaded",
		zap.Int("notes", session.Canvas().NoteCount()),
		zap.Int("connections", session.Canvas().ConnectionCount()),
		zap.String("store", config.Store),
		zap.String("provider", string(m.settings.Provider)))
	return m
}
