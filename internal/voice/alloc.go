// Package voice holds the slot allocation policy shared by the voice engines.
package voice

// Allocator picks the slot for a new note. The first free slot wins; when
// every slot is busy the next one in round-robin order is stolen.
type Allocator struct {
	size int
	next int
}

func NewAllocator(size int) Allocator {
	if size <= 0 {
		size = 1
	}
	return Allocator{size: size}
}

// Pick returns the chosen slot and whether it had to be stolen. busy reports
// whether slot i currently holds a note.
func (a *Allocator) Pick(busy func(i int) bool) (slot int, stolen bool) {
	for i := 0; i < a.size; i++ {
		if !busy(i) {
			return i, false
		}
	}
	slot = a.next
	a.next = (a.next + 1) % a.size
	return slot, true
}

// Size is the number of slots managed.
func (a *Allocator) Size() int { return a.size }
