package memkit

// SegregatingAllocator routes requests by size: Small services
// requests of size <= Threshold, Large services everything above it.
// Because the threshold decides routing the same way on every call,
// Deallocate can route by block.Size alone, without asking either child
// whether it owns the block.
type SegregatingAllocator[Small Allocator, Large Allocator] struct {
	Threshold int
	Small     Small
	Large     Large
}

// NewSegregatingAllocator composes small and large behind a single
// Allocator that routes by threshold bytes.
func NewSegregatingAllocator[Small Allocator, Large Allocator](threshold int, small Small, large Large) *SegregatingAllocator[Small, Large] {
	return &SegregatingAllocator[Small, Large]{Threshold: threshold, Small: small, Large: large}
}

var _ Allocator = &SegregatingAllocator[Allocator, Allocator]{}

// Allocate routes to Small when size <= Threshold, otherwise to Large.
func (a *SegregatingAllocator[Small, Large]) Allocate(size int, alignment uintptr) (Block, error) {
	if size <= a.Threshold {
		return a.Small.Allocate(size, alignment)
	}
	return a.Large.Allocate(size, alignment)
}

// Reallocate forwards to the owning child unless newSize crosses the
// threshold into the other bucket, in which case it allocates fresh
// from the destination child, copies the contents, and frees the
// original.
func (a *SegregatingAllocator[Small, Large]) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	if block.Size <= a.Threshold {
		return a.reallocateFromSmall(block, newSize, alignment)
	}
	return a.reallocateFromLarge(block, newSize, alignment)
}

func (a *SegregatingAllocator[Small, Large]) reallocateFromSmall(block Block, newSize int, alignment uintptr) (Block, error) {
	if newSize > a.Threshold {
		newBlock, err := a.Large.Allocate(newSize, alignment)
		if err != nil {
			return Block{}, err
		}

		// block.Size <= Threshold < newSize, so block.Size is the
		// overlapping length.
		copyBlockBytes(newBlock, block, block.Size)

		if err := a.Small.Deallocate(block); err != nil {
			return Block{}, err
		}

		return newBlock, nil
	}

	return a.Small.Reallocate(block, newSize, alignment)
}

func (a *SegregatingAllocator[Small, Large]) reallocateFromLarge(block Block, newSize int, alignment uintptr) (Block, error) {
	if newSize <= a.Threshold {
		newBlock, err := a.Small.Allocate(newSize, alignment)
		if err != nil {
			return Block{}, err
		}

		// block.Size > Threshold >= newSize, so newSize is the
		// overlapping length.
		copyBlockBytes(newBlock, block, newSize)

		if err := a.Large.Deallocate(block); err != nil {
			return Block{}, err
		}

		return newBlock, nil
	}

	return a.Large.Reallocate(block, newSize, alignment)
}

// Deallocate routes by block.Size alone, matching the same bucket
// Allocate would have used for a request of that size.
func (a *SegregatingAllocator[Small, Large]) Deallocate(block Block) error {
	if block.Size <= a.Threshold {
		return a.Small.Deallocate(block)
	}
	return a.Large.Deallocate(block)
}

// DeallocateAll releases every block owned by both children.
func (a *SegregatingAllocator[Small, Large]) DeallocateAll() {
	a.Small.DeallocateAll()
	a.Large.DeallocateAll()
}

// MaxSize reports the component-wise maximum of both children's bounds.
func (a *SegregatingAllocator[Small, Large]) MaxSize() int {
	return maxInt(a.Small.MaxSize(), a.Large.MaxSize())
}

// Owns routes the membership check the same way Deallocate would.
func (a *SegregatingAllocator[Small, Large]) Owns(block Block) bool {
	if block.Size <= a.Threshold {
		return a.Small.Owns(block)
	}
	return a.Large.Owns(block)
}
