// Package memkit implements a library of composable memory allocators:
// small strategies that all satisfy the same Allocator contract and can
// be nested to build application-specific allocation policies, such as
// a fast bump arena backed by the Go heap, or size-routed traffic split
// across two pools.
package memkit

// Allocator is the capability set every strategy in this package
// implements. The composite strategies FallbackAllocator and
// SegregatingAllocator are generic over their child Allocator type
// parameters, and PoolAllocator holds its *StackAllocator pools
// directly, so dispatch to children is static; nothing
// in this package needs dynamic dispatch except where a caller crosses
// an API boundary that can't know the concrete type (memkit/container).
type Allocator interface {
	// Allocate returns a fresh Block of the requested size, aligned to
	// alignment (which must be a power of two). It fails with
	// ErrOutOfMemory when the strategy cannot satisfy the request.
	Allocate(size int, alignment uintptr) (Block, error)

	// Reallocate resizes block in place when the strategy permits it;
	// otherwise it allocates a new block, copies min(block.Size, newSize)
	// bytes, and frees the old block. It fails with ErrOutOfMemory or
	// ErrNotOwned.
	Reallocate(block Block, newSize int, alignment uintptr) (Block, error)

	// Deallocate releases a live block. It fails with ErrNotOwned if
	// block was not produced by this allocator.
	Deallocate(block Block) error

	// DeallocateAll releases every live block owned by the allocator.
	// After it returns, Owns(b) is false for every block previously
	// handed out. It is idempotent once the allocator is empty.
	DeallocateAll()

	// MaxSize reports an upper bound on what a single Allocate call
	// could currently succeed with. It is informational: Allocate may
	// still fail on a smaller request due to fragmentation.
	MaxSize() int

	// Owns reports whether block was produced by this allocator. It
	// never fails and never mutates observable state.
	Owns(block Block) bool
}
