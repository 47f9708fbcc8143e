package history

import "errors"

var (
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	ErrInvalidDataType = errors.New("unrecognized data type")
	ErrTypeMismatch    = errors.New("value does not match the configured data type")
)

// A Slot is one cell of the physical array. Committed is false for holes:
// cells that have never held a value, or were invalidated by Clear.
type Slot[T any] struct {
	Value     T
	Committed bool
}

// A Buffer records a bounded sequence of committed values and lets the caller
// step backward and forward through them. Once more than capacity values have
// been committed the oldest entries are overwritten in place. Committing while
// the cursor is behind the newest entry discards everything ahead of it.
//
// A Buffer performs no internal locking. Callers sharing one instance across
// goroutines must serialize access themselves.
type Buffer[T any] struct {
	capacity int
	dataType DataType
	slots    []Slot[T]
	// cursor selects the current entry; its physical slot is cursor mod
	// capacity. -1 means no entry is selected.
	cursor int
	// latest is the cursor of the newest commit, or -1 before the first one.
	latest int
	// navigated is the cursor's position within the navigable window;
	// upperBound is the newest position. 0 <= navigated <= upperBound <= capacity-1.
	navigated  int
	upperBound int
}

func New[T any](capacity int, dataType DataType) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if !dataType.Valid() {
		return nil, ErrInvalidDataType
	}
	return &Buffer[T]{
		capacity: capacity,
		dataType: dataType,
		slots:    make([]Slot[T], capacity),
		cursor:   -1,
		latest:   -1,
	}, nil
}

// Commit records value as the newest entry and returns it. The navigable
// window grows by one until it saturates at capacity-1; the cursor advances by
// exactly one and the value overwrites whatever occupied its slot, whether an
// aged-out entry on wrap or an entry that had been moved back past. Fails with
// ErrTypeMismatch when value's runtime type disagrees with the configured
// data type; the buffer is unchanged on failure.
func (b *Buffer[T]) Commit(value T) (T, error) {
	if err := b.dataType.check(value); err != nil {
		var zero T
		return zero, err
	}
	if b.navigated < b.capacity-1 {
		b.navigated++
	}
	// Entries ahead of the cursor are no longer reachable.
	b.upperBound = b.navigated
	b.cursor++
	b.latest = b.cursor
	b.slots[b.cursor%b.capacity] = Slot[T]{Value: value, Committed: true}
	return value, nil
}

// Current returns the entry under the cursor. The second return is false when
// no entry is selected or the cursor's slot is a hole.
func (b *Buffer[T]) Current() (T, bool) {
	var zero T
	if b.cursor == -1 {
		return zero, false
	}
	s := b.slots[b.cursor%b.capacity]
	if !s.Committed {
		return zero, false
	}
	return s.Value, true
}

// MoveBackward steps the cursor one entry toward the oldest navigable entry.
// Stepping backward from the oldest navigable entry deselects entirely
// (Current reports no value); stepping backward with nothing selected does
// nothing. Callers observe the result via Current.
func (b *Buffer[T]) MoveBackward() {
	if b.cursor == -1 {
		return
	}
	if b.navigated == 0 {
		// At the oldest navigable entry: step out to the empty state.
		// MoveForward undoes this without consuming window positions.
		b.cursor = -1
		return
	}
	b.cursor--
	b.navigated--
}

// MoveForward steps the cursor one entry toward the newest entry. From the
// deselected state it reselects the oldest navigable entry; at the newest
// entry it does nothing.
func (b *Buffer[T]) MoveForward() {
	if b.cursor == -1 {
		if b.upperBound > 0 {
			resume := b.latest - b.upperBound
			if resume < 0 {
				resume = 0
			}
			b.cursor = resume
		}
		return
	}
	if b.navigated == b.upperBound {
		return
	}
	b.cursor++
	b.navigated++
}

// Clear discards every entry and deselects the cursor. Capacity and data type
// are unchanged.
func (b *Buffer[T]) Clear() {
	b.slots = make([]Slot[T], b.capacity)
	b.cursor = -1
	b.latest = -1
	b.navigated = 0
	b.upperBound = 0
}

// Dump returns a snapshot of the slot array in physical index order, which
// after wrap-around is not chronological order. With discardHoles only
// committed slots are returned.
func (b *Buffer[T]) Dump(discardHoles bool) []Slot[T] {
	out := make([]Slot[T], 0, b.capacity)
	for _, s := range b.slots {
		if discardHoles && !s.Committed {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Values returns every committed value in physical index order.
func (b *Buffer[T]) Values() []T {
	out := make([]T, 0, b.capacity)
	for _, s := range b.slots {
		if s.Committed {
			out = append(out, s.Value)
		}
	}
	return out
}

// CurrentIndex returns the physical slot index of the cursor, or -1 when no
// entry is selected.
func (b *Buffer[T]) CurrentIndex() int {
	// Go's % preserves the sign of the dividend, so -1 stays -1.
	return b.cursor % b.capacity
}

// StartReached reports whether MoveBackward can reach no earlier entry.
func (b *Buffer[T]) StartReached() bool {
	return b.navigated == 0 || b.cursor == -1
}

// EndReached reports whether the cursor is at the newest entry. It is
// trivially true while the buffer is empty.
func (b *Buffer[T]) EndReached() bool {
	return b.navigated == b.upperBound
}

// Len returns the number of committed slots.
func (b *Buffer[T]) Len() int {
	n := 0
	for _, s := range b.slots {
		if s.Committed {
			n++
		}
	}
	return n
}

func (b *Buffer[T]) Cap() int {
	return b.capacity
}

func (b *Buffer[T]) DataType() DataType {
	return b.dataType
}
