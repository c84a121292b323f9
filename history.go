package main

import "errors"

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History keeps bounded undo and redo stacks of whole-session states.
// Entries are never mutated after they are pushed; the canvas clones its
// slices before writing to anything a snapshot still references.
type History struct {
	undo []State
	redo []State
	max  int
}

func NewHistory(max int) *History {
	if max < 1 {
		max = defaultHistoryDepth
	}
	return &History{max: max}
}

func (h *History) push(stack []State, s State) []State {
	stack = append(stack, s)
	if len(stack) > h.max {
		// Oldest entry goes first.
		copy(stack, stack[1:])
		stack[len(stack)-1] = State{}
		stack = stack[:len(stack)-1]
	}
	return stack
}

// Snapshot records s as the newest undo step. Any redo branch is dropped.
func (h *History) Snapshot(s State) {
	h.undo = h.push(h.undo, s)
	h.redo = nil
}

// Undo returns the state to install, saving current for Redo.
func (h *History) Undo(current State) (State, error) {
	if len(h.undo) == 0 {
		return State{}, ErrNothingToUndo
	}
	prev := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = State{}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.push(h.redo, current)
	return prev, nil
}

func (h *History) Redo(current State) (State, error) {
	if len(h.redo) == 0 {
		return State{}, ErrNothingToRedo
	}
	next := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = State{}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.push(h.undo, current)
	return next, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }
func (h *History) Max() int       { return h.max }
