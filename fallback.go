package memkit

import (
	"errors"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
)

// FallbackAllocator tries Primary first and only consults Secondary when
// Primary fails with ErrOutOfMemory. Primary and Secondary are generic
// type parameters rather than an interface field, so dispatch to
// children is static.
type FallbackAllocator[Primary Allocator, Secondary Allocator] struct {
	Primary   Primary
	Secondary Secondary
}

// NewFallbackAllocator composes primary and secondary into a single
// Allocator that spills over to secondary only on ErrOutOfMemory.
func NewFallbackAllocator[Primary Allocator, Secondary Allocator](primary Primary, secondary Secondary) *FallbackAllocator[Primary, Secondary] {
	return &FallbackAllocator[Primary, Secondary]{Primary: primary, Secondary: secondary}
}

var _ Allocator = &FallbackAllocator[Allocator, Allocator]{}

// Allocate tries Primary; if it fails with ErrOutOfMemory, Secondary is
// tried and its result (success or failure) is returned as-is.
func (a *FallbackAllocator[Primary, Secondary]) Allocate(size int, alignment uintptr) (Block, error) {
	block, err := a.Primary.Allocate(size, alignment)
	if err == nil {
		return block, nil
	}
	if !errors.Is(err, ErrOutOfMemory) {
		return Block{}, err
	}

	return a.Secondary.Allocate(size, alignment)
}

// Reallocate dispatches to whichever child owns block. If the owning
// child can't satisfy the resize in place, this allocates fresh from
// the other child, copies the contents, and frees the original.
func (a *FallbackAllocator[Primary, Secondary]) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	min := minInt(block.Size, newSize)

	if a.Primary.Owns(block) {
		realloc, err := a.Primary.Reallocate(block, newSize, alignment)
		if err == nil {
			return realloc, nil
		}
		if !errors.Is(err, ErrOutOfMemory) {
			return Block{}, err
		}

		println("DEBUG after primary.Reallocate err byte", *(*byte)(unsafe.Pointer(block.Address)))
		newBlock, err := a.Secondary.Allocate(newSize, alignment)
		if err != nil {
			return Block{}, err
		}

		println("DEBUG after secondary.Allocate byte", *(*byte)(unsafe.Pointer(block.Address)))
		debugByte := *(*byte)(unsafe.Pointer(block.Address))
		println("DEBUG before copy src", block.Address, "dst", newBlock.Address, "min", min, "srcByte", debugByte)
		copyBlockBytes(newBlock, block, min)
		println("DEBUG after copy")

		if err := a.Primary.Deallocate(block); err != nil {
			return Block{}, err
		}

		return newBlock, nil
	}

	if a.Secondary.Owns(block) {
		realloc, err := a.Secondary.Reallocate(block, newSize, alignment)
		if err == nil {
			return realloc, nil
		}
		if !errors.Is(err, ErrOutOfMemory) {
			return Block{}, err
		}

		newBlock, err := a.Primary.Allocate(newSize, alignment)
		if err != nil {
			return Block{}, err
		}

		copyBlockBytes(newBlock, block, min)

		if err := a.Secondary.Deallocate(block); err != nil {
			return Block{}, err
		}

		return newBlock, nil
	}

	return Block{}, cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
}

// Deallocate dispatches to whichever child owns block.
func (a *FallbackAllocator[Primary, Secondary]) Deallocate(block Block) error {
	if a.Primary.Owns(block) {
		return a.Primary.Deallocate(block)
	}
	if a.Secondary.Owns(block) {
		return a.Secondary.Deallocate(block)
	}

	return cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
}

// DeallocateAll releases every block owned by both children.
func (a *FallbackAllocator[Primary, Secondary]) DeallocateAll() {
	a.Primary.DeallocateAll()
	a.Secondary.DeallocateAll()
}

// MaxSize reports the larger of the two children's bounds.
func (a *FallbackAllocator[Primary, Secondary]) MaxSize() int {
	return maxInt(a.Primary.MaxSize(), a.Secondary.MaxSize())
}

// Owns reports true if either child owns block. The set of blocks owned
// by this allocator is structurally the disjoint union of its
// children's sets, since every block originates from exactly one child.
func (a *FallbackAllocator[Primary, Secondary]) Owns(block Block) bool {
	return a.Primary.Owns(block) || a.Secondary.Owns(block)
}

// copyBlockBytes copies the first n bytes of src's memory into dst's.
func copyBlockBytes(dst, src Block, n int) {
	copyMemory(dst.Address, src.Address, n)
}
