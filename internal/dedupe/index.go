package dedupe

// Index keeps values keyed by id in first-insertion order. A later Put with a
// known id replaces the value but keeps its original slot.
type Index[T any] struct {
	slots map[string]int
	order []T
}

// NewIndex creates an index sized for capacity entries.
func NewIndex[T any](capacity int) *Index[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Index[T]{
		slots: make(map[string]int, capacity),
		order: make([]T, 0, capacity),
	}
}

// Put stores v under id and reports whether an earlier value was replaced.
func (i *Index[T]) Put(id string, v T) bool {
	if slot, ok := i.slots[id]; ok {
		i.order[slot] = v
		return true
	}
	i.slots[id] = len(i.order)
	i.order = append(i.order, v)
	return false
}

// Get returns the value stored under id.
func (i *Index[T]) Get(id string) (T, bool) {
	slot, ok := i.slots[id]
	if !ok {
		var zero T
		return zero, false
	}
	return i.order[slot], true
}

// Len returns the number of distinct ids.
func (i *Index[T]) Len() int {
	return len(i.order)
}

// Values returns a copy of the stored values in insertion order.
func (i *Index[T]) Values() []T {
	out := make([]T, len(i.order))
	copy(out, i.order)
	return out
}
