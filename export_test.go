package main

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 0, 0, time.UTC)
	assert.Equal(t, "qnks_20240309_0705.csv", exportFilename(now, "csv"))
}

func TestWriteCSV(t *testing.T) {
	s, _ := newTestSession(t)
	s.ApplyQuestion(`Say "why"`)
	s.ApplyKeywords("one\ntwo")
	s.SetSummary("line one\nline two")

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeCSV(path, "Sam", s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "\ufeff"), "starts with a BOM")

	want := "\ufeffName,Question (Q),Keywords (K),Summary (S),Model answer\n" +
		`"Sam","Say ""why""","one、two","line one` + "\n" + `line two",""` + "\n"
	assert.Equal(t, want, text)
}

func TestWriteCSVNeedsContent(t *testing.T) {
	s, _ := newTestSession(t)
	err := writeCSV(filepath.Join(t.TempDir(), "out.csv"), "Sam", s)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportToPNG(t *testing.T) {
	s, _ := newTestSession(t)
	s.ApplyQuestion("Why?")
	a, _ := s.AddNote("first", ColorBlue)
	b, _ := s.AddNote("second", ColorGreen)
	s.ToggleConnection(a.ID)
	s.ToggleConnection(b.ID)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, ExportToPNG(path, s.Scene()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestExportToPNGEmpty(t *testing.T) {
	err := ExportToPNG(filepath.Join(t.TempDir(), "out.png"), Scene{})
	assert.ErrorIs(t, err, ErrValidation)
}
