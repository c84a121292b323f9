package main

// Canvas holds the notes and the connections between them. Slices handed
// out through state() are shared with the caller; the next mutation clones
// them first, so a stored snapshot never sees later edits.
type Canvas struct {
	notes       []Note
	connections []Connection
	nextID      int
	shared      bool
}

func NewCanvas() *Canvas {
	return &Canvas{
		notes:       make([]Note, 0),
		connections: make([]Connection, 0),
		nextID:      1,
	}
}

// own makes the live slices private before a write.
func (c *Canvas) own() {
	if !c.shared {
		return
	}
	notes := make([]Note, len(c.notes))
	copy(notes, c.notes)
	connections := make([]Connection, len(c.connections))
	copy(connections, c.connections)
	c.notes = notes
	c.connections = connections
	c.shared = false
}

func (c *Canvas) state() ([]Note, []Connection, int) {
	c.shared = true
	return c.notes, c.connections, c.nextID
}

func (c *Canvas) restore(notes []Note, connections []Connection, nextID int) {
	if notes == nil {
		notes = make([]Note, 0)
	}
	if connections == nil {
		connections = make([]Connection, 0)
	}
	if nextID < 1 {
		nextID = 1
	}
	c.notes = notes
	c.connections = connections
	c.nextID = nextID
	c.shared = true
}

// clear drops every note and connection but keeps the id counter, so ids
// handed out before a reset are never reused.
func (c *Canvas) clear() {
	c.notes = make([]Note, 0)
	c.connections = make([]Connection, 0)
	c.shared = false
}

func (c *Canvas) NextID() int {
	return c.nextID
}

func (c *Canvas) AddNote(text string, color Color, kind Kind, pos Point) Note {
	c.own()
	note := Note{
		ID:    c.nextID,
		Text:  text,
		Color: color,
		Kind:  kind,
		X:     pos.X,
		Y:     pos.Y,
	}
	c.nextID++
	c.notes = append(c.notes, note)
	return note
}

func (c *Canvas) noteIndex(id int) int {
	for i := range c.notes {
		if c.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Canvas) Note(id int) (Note, bool) {
	if i := c.noteIndex(id); i >= 0 {
		return c.notes[i], true
	}
	return Note{}, false
}

func (c *Canvas) Notes() []Note {
	out := make([]Note, len(c.notes))
	copy(out, c.notes)
	return out
}

func (c *Canvas) NotesOfKind(kind Kind) []Note {
	var out []Note
	for _, n := range c.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (c *Canvas) NoteCount() int {
	return len(c.notes)
}

// DeleteNote removes the note and every connection touching it. Unknown ids
// are ignored.
func (c *Canvas) DeleteNote(id int) bool {
	i := c.noteIndex(id)
	if i < 0 {
		return false
	}
	c.own()
	c.notes = append(c.notes[:i], c.notes[i+1:]...)
	c.CascadeDelete(id)
	return true
}

func (c *Canvas) SetNoteText(id int, text string) bool {
	i := c.noteIndex(id)
	if i < 0 {
		return false
	}
	if c.notes[i].Text == text {
		return true
	}
	c.own()
	c.notes[i].Text = text
	return true
}

func (c *Canvas) SetNotePosition(id int, x, y float64) bool {
	i := c.noteIndex(id)
	if i < 0 {
		return false
	}
	if c.notes[i].X == x && c.notes[i].Y == y {
		return true
	}
	c.own()
	c.notes[i].X = x
	c.notes[i].Y = y
	return true
}

func (c *Canvas) Connections() []Connection {
	out := make([]Connection, len(c.connections))
	copy(out, c.connections)
	return out
}

func (c *Canvas) ConnectionCount() int {
	return len(c.connections)
}

func (c *Canvas) ConnectionExists(a, b int) bool {
	for _, conn := range c.connections {
		if conn.Joins(a, b) {
			return true
		}
	}
	return false
}

// AddConnection joins two existing notes. It refuses self loops and
// duplicates in either direction and reports whether an edge was added.
func (c *Canvas) AddConnection(a, b int) bool {
	if a == b || c.ConnectionExists(a, b) {
		return false
	}
	if c.noteIndex(a) < 0 || c.noteIndex(b) < 0 {
		return false
	}
	c.own()
	c.connections = append(c.connections, Connection{From: a, To: b})
	return true
}

func (c *Canvas) RemoveConnectionAt(index int) bool {
	if index < 0 || index >= len(c.connections) {
		return false
	}
	c.own()
	c.connections = append(c.connections[:index], c.connections[index+1:]...)
	return true
}

// CascadeDelete removes every connection referencing id and returns how
// many went away.
func (c *Canvas) CascadeDelete(id int) int {
	removed := 0
	for _, conn := range c.connections {
		if conn.Touches(id) {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	c.own()
	kept := c.connections[:0]
	for _, conn := range c.connections {
		if !conn.Touches(id) {
			kept = append(kept, conn)
		}
	}
	c.connections = kept
	return removed
}
