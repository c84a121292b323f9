package main

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "shift+left":
		m.cursorX -= speed
	case "l", "right", "shift+right":
		m.cursorX += speed
	case "k", "up", "shift+up":
		m.cursorY -= speed
	case "j", "down", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// ensureCursorInBounds keeps the keyboard cursor on the canvas.
func (m *model) ensureCursorInBounds() {
	surface := m.geometry.Surface()
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if maxX := int(surface.W) - 1; m.cursorX > maxX {
		m.cursorX = maxX
	}
	if maxY := int(surface.H) - 1; m.cursorY > maxY {
		m.cursorY = maxY
	}
}
