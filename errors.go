package memkit

import "github.com/pkg/errors"

// ErrOutOfMemory is returned when a strategy cannot satisfy an Allocate
// or Reallocate request: insufficient capacity, or a child arena
// rejected the request. GlobalAllocator never returns it.
var ErrOutOfMemory error = errors.New("memkit: out of memory")

// ErrNotOwned is returned when a Block is presented to Deallocate,
// Reallocate, or a composite allocator that did not produce it. It is
// never caught internally by any strategy; it indicates a caller bug.
var ErrNotOwned error = errors.New("memkit: block not owned by this allocator")
