package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Geometry answers layout questions about the editing surface. Note sizes
// are recomputed from the text on every call.
type Geometry interface {
	Surface() Size
	NoteSize(n Note) Size
}

// canvasGeometry is the terminal area left of the side panel, in cells.
type canvasGeometry struct {
	size Size
}

func newCanvasGeometry(w, h int) *canvasGeometry {
	g := &canvasGeometry{}
	g.Resize(w, h)
	return g
}

func (g *canvasGeometry) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	g.size = Size{W: float64(w), H: float64(h)}
}

func (g *canvasGeometry) Surface() Size {
	return g.size
}

func (g *canvasGeometry) NoteSize(n Note) Size {
	_, size := layoutNote(n)
	return size
}

// layoutNote wraps the note text to the box and returns the lines drawn
// inside the border together with the outer box size.
func layoutNote(n Note) ([]string, Size) {
	inner := maxNoteWidth - 4
	text := strings.ReplaceAll(n.Text, "\r\n", "\n")
	wrapped := wrap.String(wordwrap.String(text, inner), inner)
	lines := strings.Split(wrapped, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}

	width := minNoteWidth
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		lines[i] = line
		if w := runewidth.StringWidth(line) + 4; w > width {
			width = w
		}
	}
	if width > maxNoteWidth {
		width = maxNoteWidth
	}

	height := len(lines) + 2
	if n.Kind == KindQuestion {
		height++
	}
	return lines, Size{W: float64(width), H: float64(height)}
}
