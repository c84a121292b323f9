package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	styleDefault = iota
	styleLine
	styleCursor
	styleArmed
	styleDragging
	styleQuestion
	styleNoteBase // + palette index
)

type cell struct {
	r     rune
	style int
	// cont marks the right half of a double-width rune.
	cont bool
}

type grid struct {
	cells  [][]cell
	width  int
	height int
}

func newGrid(width, height int) *grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &grid{width: width, height: height, cells: make([][]cell, height)}
	for y := range g.cells {
		g.cells[y] = make([]cell, width)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{r: ' '}
		}
	}
	return g
}

func (g *grid) valid(x, y int) bool {
	return y >= 0 && y < g.height && x >= 0 && x < g.width
}

func (g *grid) set(x, y int, r rune, style int) {
	if !g.valid(x, y) {
		return
	}
	// Overwriting either half of a wide rune blanks the other half.
	if g.cells[y][x].cont && x > 0 {
		g.cells[y][x-1] = cell{r: ' ', style: g.cells[y][x-1].style}
	}
	if x+1 < g.width && g.cells[y][x+1].cont {
		g.cells[y][x+1] = cell{r: ' ', style: g.cells[y][x+1].style}
	}
	g.cells[y][x] = cell{r: r, style: style}
}

// text writes s from (x, y) without going past limit (exclusive).
func (g *grid) text(x, y int, s string, limit, style int) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > limit {
			return
		}
		g.set(x, y, r, style)
		if w == 2 && g.valid(x+1, y) {
			g.cells[y][x+1] = cell{cont: true, style: style}
		}
		x += w
	}
}

func lineRune(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case ady*2 <= adx:
		return '─'
	case adx*2 <= ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// line draws a straight segment between two points with Bresenham's
// algorithm.
func (g *grid) line(a, b Point) {
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	x1, y1 := int(math.Floor(b.X)), int(math.Floor(b.Y))
	r := lineRune(x1-x0, y1-y0)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy
	for {
		g.set(x0, y0, r, styleLine)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func noteStyleID(v NoteView) int {
	if v.Kind == KindQuestion {
		return styleQuestion
	}
	for i, c := range Palette {
		if c == v.Color {
			return styleNoteBase + i
		}
	}
	return styleNoteBase + 1
}

func (g *grid) box(v NoteView) {
	x0, y0 := int(v.Rect.X), int(v.Rect.Y)
	w, h := int(v.Rect.W), int(v.Rect.H)
	fill := noteStyleID(v)

	tl, tr, bl, br, hz, vt := '┌', '┐', '└', '┘', '─', '│'
	border := fill
	switch {
	case v.Armed:
		tl, tr, bl, br, hz, vt = '╔', '╗', '╚', '╝', '═', '║'
		border = styleArmed
	case v.Dragging:
		tl, tr, bl, br, hz, vt = '┏', '┓', '┗', '┛', '━', '┃'
		border = styleDragging
	}

	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			var r rune
			switch {
			case y == y0 && x == x0:
				r = tl
			case y == y0 && x == x0+w-1:
				r = tr
			case y == y0+h-1 && x == x0:
				r = bl
			case y == y0+h-1 && x == x0+w-1:
				r = br
			case y == y0 || y == y0+h-1:
				r = hz
			case x == x0 || x == x0+w-1:
				r = vt
			default:
				g.set(x, y, ' ', fill)
				continue
			}
			g.set(x, y, r, border)
		}
	}

	if del, ok := v.DeletePoint(); ok {
		g.set(int(del.X), int(del.Y), '×', border)
	}

	textY := y0 + 1
	if v.Kind == KindQuestion {
		g.text(x0+2, textY, "Q", x0+w-1, fill)
		textY++
	}
	for i, line := range v.Lines {
		if textY+i >= y0+h-1 {
			break
		}
		g.text(x0+2, textY+i, line, x0+w-2, fill)
	}
}

func (g *grid) render(st styles) []string {
	out := make([]string, g.height)
	for y, row := range g.cells {
		var sb strings.Builder
		var run strings.Builder
		current := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if current == styleDefault {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(st.cell(current).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.cont {
				continue
			}
			if c.style != current {
				flush()
				current = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

// drawScene rasterises a scene: lines first, notes on top, then the
// keyboard cursor.
func drawScene(scene Scene, width, height int, st styles, cursor Point, showCursor bool) []string {
	g := newGrid(width, height)
	for _, l := range scene.Lines {
		g.line(l.A, l.B)
	}
	for _, v := range scene.Notes {
		g.box(v)
	}
	if showCursor {
		g.set(int(cursor.X), int(cursor.Y), '█', styleCursor)
	}
	return g.render(st)
}

type styles struct {
	line        lipgloss.Style
	cursor      lipgloss.Style
	armed       lipgloss.Style
	dragging    lipgloss.Style
	question    lipgloss.Style
	notes       []lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	hint        lipgloss.Style
	status      lipgloss.Style
	notice      lipgloss.Style
	noticeError lipgloss.Style
	errorText   lipgloss.Style
	heading     lipgloss.Style
}

// noteColors maps the palette to terminal colours; the order matches
// Palette.
var noteColors = []lipgloss.Color{"218", "229", "153", "157", "183"}

func newStyles() styles {
	st := styles{
		line:        lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		armed:       lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		dragging:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		question:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("99")).Bold(true),
		panel:       lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		panelTitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		hint:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		notice:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		noticeError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		errorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		heading:     lipgloss.NewStyle().Bold(true),
	}
	for _, c := range noteColors {
		st.notes = append(st.notes, lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(c))
	}
	return st
}

func (st styles) cell(id int) lipgloss.Style {
	switch id {
	case styleLine:
		return st.line
	case styleCursor:
		return st.cursor
	case styleArmed:
		return st.armed
	case styleDragging:
		return st.dragging
	case styleQuestion:
		return st.question
	}
	if i := id - styleNoteBase; i >= 0 && i < len(st.notes) {
		return st.notes[i]
	}
	return lipgloss.NewStyle()
}
