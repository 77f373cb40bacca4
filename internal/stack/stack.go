// Package stack provides an ordered collection with a focus cursor.
package stack

// Stack is an ordered sequence of distinct values with an optional focused
// element. The zero value is an empty stack ready to use.
//
// The focused index is -1 exactly when the stack is empty; otherwise it is a
// valid index into the sequence. Order changes only through Insert, Remove
// and the shuffle operations.
type Stack[T comparable] struct {
	items   []T
	focused int
}

// New returns an empty stack.
func New[T comparable]() *Stack[T] {
	return &Stack[T]{focused: -1}
}

func (s *Stack[T]) norm() {
	if len(s.items) == 0 {
		s.focused = -1
	}
}

// Len returns the number of elements.
func (s *Stack[T]) Len() int { return len(s.items) }

// Empty reports whether the stack has no elements.
func (s *Stack[T]) Empty() bool { return len(s.items) == 0 }

// Items returns a copy of the elements in stack order.
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Index returns the position of v, or -1.
func (s *Stack[T]) Index(v T) int {
	for i, item := range s.items {
		if item == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is in the stack.
func (s *Stack[T]) Contains(v T) bool { return s.Index(v) >= 0 }

// FocusedIndex returns the focused position, or -1 when empty.
func (s *Stack[T]) FocusedIndex() int {
	s.norm()
	return s.focused
}

// Focused returns the focused element.
func (s *Stack[T]) Focused() (T, bool) {
	var zero T
	s.norm()
	if s.focused < 0 {
		return zero, false
	}
	return s.items[s.focused], true
}

// Insert appends v and focuses it. Inserting a value already present only
// moves focus to it.
func (s *Stack[T]) Insert(v T) {
	if i := s.Index(v); i >= 0 {
		s.focused = i
		return
	}
	s.items = append(s.items, v)
	s.focused = len(s.items) - 1
}

// Remove deletes v and reports whether it was present. When the focused
// element is removed, focus passes to the element that followed it, or to
// the new last element if it was last.
func (s *Stack[T]) Remove(v T) bool {
	i := s.Index(v)
	if i < 0 {
		return false
	}
	s.norm()
	s.items = append(s.items[:i], s.items[i+1:]...)
	switch {
	case len(s.items) == 0:
		s.focused = -1
	case i < s.focused:
		s.focused--
	case s.focused >= len(s.items):
		s.focused = len(s.items) - 1
	}
	return true
}

// RemoveFocused deletes and returns the focused element.
func (s *Stack[T]) RemoveFocused() (T, bool) {
	v, ok := s.Focused()
	if !ok {
		return v, false
	}
	s.Remove(v)
	return v, true
}

// Focus moves the cursor to v and reports whether v was found.
func (s *Stack[T]) Focus(v T) bool {
	i := s.Index(v)
	if i < 0 {
		return false
	}
	s.focused = i
	return true
}

// FocusNext moves the cursor forward, wrapping at the end.
func (s *Stack[T]) FocusNext() {
	if len(s.items) == 0 {
		return
	}
	s.focused = (s.focused + 1) % len(s.items)
}

// FocusPrevious moves the cursor backward, wrapping at the start.
func (s *Stack[T]) FocusPrevious() {
	if len(s.items) == 0 {
		return
	}
	s.focused = (s.focused - 1 + len(s.items)) % len(s.items)
}

// ShuffleUp swaps the focused element with its predecessor. Focus stays on
// the same element. It reports whether anything moved.
func (s *Stack[T]) ShuffleUp() bool {
	s.norm()
	if s.focused <= 0 {
		return false
	}
	i := s.focused
	s.items[i-1], s.items[i] = s.items[i], s.items[i-1]
	s.focused = i - 1
	return true
}

// ShuffleDown swaps the focused element with its successor.
func (s *Stack[T]) ShuffleDown() bool {
	s.norm()
	if s.focused < 0 || s.focused >= len(s.items)-1 {
		return false
	}
	i := s.focused
	s.items[i+1], s.items[i] = s.items[i], s.items[i+1]
	s.focused = i + 1
	return true
}

// Valid reports whether the focus cursor is consistent with the contents.
func (s *Stack[T]) Valid() bool {
	if len(s.items) == 0 {
		return s.focused <= 0
	}
	return s.focused >= 0 && s.focused < len(s.items)
}
