// Package container adapts a memkit.Allocator to typed, countable
// allocation requests, the way a standard-library container's
// allocator parameter would.
package container

import (
	"unsafe"

	"github.com/memkit-go/memkit"
)

// Handle binds a memkit.Allocator to a specific element type T,
// translating element counts into the byte size and alignment the
// underlying allocator expects. Two Handles compare equal if they
// wrap the same allocator instance.
type Handle[T any] struct {
	alloc memkit.Allocator
}

// NewHandle wraps alloc for allocating values of type T through it.
func NewHandle[T any](alloc memkit.Allocator) Handle[T] {
	return Handle[T]{alloc: alloc}
}

// Allocate reserves room for count contiguous values of T and returns
// a pointer to the first one, along with the Block backing it so the
// caller can later pass it to Deallocate.
func (h Handle[T]) Allocate(count int) (*T, memkit.Block, error) {
	var zero T
	size := int(unsafe.Sizeof(zero)) * count
	alignment := uintptr(unsafe.Alignof(zero))

	block, err := h.alloc.Allocate(size, alignment)
	if err != nil {
		return nil, memkit.Block{}, err
	}

	return (*T)(unsafe.Pointer(block.Address)), block, nil
}

// Deallocate releases a block previously returned by Allocate.
func (h Handle[T]) Deallocate(block memkit.Block) error {
	return h.alloc.Deallocate(block)
}

// MaxSize reports how many values of T the wrapped allocator could
// currently service in a single request, derived from its MaxSize.
func (h Handle[T]) MaxSize() int {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return h.alloc.MaxSize()
	}
	return h.alloc.MaxSize() / size
}

// Allocator returns the allocator this Handle wraps.
func (h Handle[T]) Allocator() memkit.Allocator {
	return h.alloc
}

// Equal reports whether h and other wrap the same allocator instance.
func (h Handle[T]) Equal(other Handle[T]) bool {
	return h.alloc == other.alloc
}
