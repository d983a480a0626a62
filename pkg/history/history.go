// Package history keeps undo and redo stacks of immutable snapshots.
//
// A [History] never stores grids or other large state, only small values
// that fully describe how to reproduce a view. Callers record the state they
// are about to leave:
//
//	h := history.New[Params](100)
//	h.Record(current)      // before applying a change
//	prev, ok := h.Undo(now) // now goes on the redo stack
//
// Recording after an undo clears the redo stack. History is not safe for
// concurrent use; the owner serialises access.
package history

// DefaultLimit bounds the undo stack when New is given a non-positive limit.
const DefaultLimit = 256

// History holds undo and redo stacks of T.
type History[T any] struct {
	undo  []T
	redo  []T
	limit int
}

// New returns an empty History keeping at most limit undo entries.
func New[T any](limit int) *History[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History[T]{limit: limit}
}

// Record pushes the state being left onto the undo stack and clears redo.
// When the stack is full the oldest entry is dropped.
func (h *History[T]) Record(state T) {
	h.undo = push(h.undo, state, h.limit)
	h.redo = h.redo[:0]
}

// Undo returns the most recently recorded state and pushes current onto the
// redo stack. It reports false when there is nothing to undo.
func (h *History[T]) Undo(current T) (T, bool) {
	prev, ok := pop(&h.undo)
	if !ok {
		return prev, false
	}
	h.redo = push(h.redo, current, h.limit)
	return prev, true
}

// Redo returns the most recently undone state and pushes current back onto
// the undo stack. It reports false when there is nothing to redo.
func (h *History[T]) Redo(current T) (T, bool) {
	next, ok := pop(&h.redo)
	if !ok {
		return next, false
	}
	h.undo = push(h.undo, current, h.limit)
	return next, true
}

// CanUndo reports whether Undo would succeed.
func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History[T]) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Clear empties both stacks.
func (h *History[T]) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

func push[T any](stack []T, v T, limit int) []T {
	if len(stack) >= limit {
		copy(stack, stack[1:])
		stack = stack[:len(stack)-1]
	}
	return append(stack, v)
}

func pop[T any](stack *[]T) (T, bool) {
	var zero T
	s := *stack
	if len(s) == 0 {
		return zero, false
	}
	v := s[len(s)-1]
	s[len(s)-1] = zero
	*stack = s[:len(s)-1]
	return v, true
}
