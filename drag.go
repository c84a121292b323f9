package main

import "math"

type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

// DragController turns pointer movement into note positions. Only one note
// can be dragged at a time; events that arrive out of sequence are ignored.
type DragController struct {
	state        DragState
	noteID       int
	pointerStart Point
	noteStart    Point
}

// Press starts a drag when the pointer went down on a note body. Presses on
// the delete affordance, on the note whose text is being edited, or with the
// connection modifier held leave the controller idle.
func (d *DragController) Press(c *Canvas, hit Hit, p Point, connectModifier bool, editingID int) bool {
	if d.state == DragDragging {
		return false
	}
	if hit.Kind != HitNote || connectModifier {
		return false
	}
	if editingID != noNote && hit.NoteID == editingID {
		return false
	}
	note, ok := c.Note(hit.NoteID)
	if !ok {
		return false
	}
	d.state = DragDragging
	d.noteID = note.ID
	d.pointerStart = p
	d.noteStart = Point{X: note.X, Y: note.Y}
	return true
}

// Move places the dragged note at its start position plus the pointer delta,
// clamped to the surface. It reports whether the note moved.
func (d *DragController) Move(c *Canvas, g Geometry, p Point) bool {
	if d.state != DragDragging {
		return false
	}
	note, ok := c.Note(d.noteID)
	if !ok {
		d.reset()
		return false
	}
	surface := g.Surface()
	size := g.NoteSize(note)
	x := clamp(d.noteStart.X+(p.X-d.pointerStart.X), 0, surface.W-size.W)
	y := clamp(d.noteStart.Y+(p.Y-d.pointerStart.Y), 0, surface.H-size.H)
	if x == note.X && y == note.Y {
		return false
	}
	return c.SetNotePosition(note.ID, x, y)
}

// Release ends the drag and returns the note that was being dragged.
func (d *DragController) Release() (int, bool) {
	if d.state != DragDragging {
		return noNote, false
	}
	id := d.noteID
	d.reset()
	return id, true
}

// Abort ends the drag and puts the note back where it started.
func (d *DragController) Abort(c *Canvas) {
	if d.state != DragDragging {
		return
	}
	c.SetNotePosition(d.noteID, d.noteStart.X, d.noteStart.Y)
	d.reset()
}

func (d *DragController) Active() (int, bool) {
	if d.state != DragDragging {
		return noNote, false
	}
	return d.noteID, true
}

func (d *DragController) reset() {
	*d = DragController{}
}

// clamp keeps v within [lo, hi]; when hi < lo the lower bound wins.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
