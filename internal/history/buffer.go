// Package history keeps the bounded slice of recent room messages served to
// newly joined sessions.
package history

import (
	"sync"

	"github.com/johndosdos/murmur/internal/model"
)

// Capacity is the number of most recent messages retained.
const Capacity = 200

// Buffer is a fixed-capacity ring of messages in insertion order.
type Buffer struct {
	mu    sync.RWMutex
	items []model.Message
	head  int
	size  int
}

// NewBuffer returns an empty Buffer holding at most capacity messages.
// A non-positive capacity falls back to Capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &Buffer{
		items: make([]model.Message, capacity),
	}
}

// Append adds msg to the tail, evicting the oldest message when full.
func (b *Buffer) Append(msg model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.items)
	if b.size < capacity {
		b.items[(b.head+b.size)%capacity] = msg
		b.size++
		return
	}

	b.items[b.head] = msg
	b.head = (b.head + 1) % capacity
}

// Snapshot returns an independent copy of the buffered messages, oldest
// first.
func (b *Buffer) Snapshot() []model.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Message, b.size)
	capacity := len(b.items)
	for i := range b.size {
		out[i] = b.items[(b.head+i)%capacity]
	}
	return out
}

// Len reports the number of buffered messages.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.size
}
