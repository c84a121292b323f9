package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeQuestionInput
	ModeKeywordInput
	ModeSummaryInput
	ModeAddNote
	ModeEditNote
	ModeMove
	ModeSettings
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmReset ConfirmAction = iota
	ConfirmQuit
)

type aiKind int

const (
	aiModelAnswer aiKind = iota
	aiCorrection
)

const (
	minNoteWidth = 12
	maxNoteWidth = 28
	noteMargin   = 2
	panelWidth   = 38

	// Where a freshly applied question note lands.
	questionX = 2
	questionY = 1

	defaultHistoryDepth = 30
	noticeDuration      = 2 * time.Second
	saveTimeout         = 3 * time.Second
	aiTimeout           = 60 * time.Second

	recordKey      = "qnks_dojo_data"
	outboxKey      = "qnks_outbox"
	settingsPrefix = "qnks_"
)
