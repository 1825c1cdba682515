package memkit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackAllocatorLIFOReuse(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	first, err := a.Allocate(32, 8)
	require.NoError(t, err)

	second, err := a.Allocate(32, 8)
	require.NoError(t, err)

	remainingBeforeFree := a.MaxSize()

	require.NoError(t, a.Deallocate(second))
	require.Greater(t, a.MaxSize(), remainingBeforeFree)

	third, err := a.Allocate(32, 8)
	require.NoError(t, err)
	require.Equal(t, second.Address, third.Address)

	require.NoError(t, a.Deallocate(third))
	require.NoError(t, a.Deallocate(first))
}

func TestStackAllocatorInteriorHole(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	first, err := a.Allocate(32, 8)
	require.NoError(t, err)

	second, err := a.Allocate(32, 8)
	require.NoError(t, err)

	remainingBeforeFree := a.MaxSize()

	// first is not the topmost block, so freeing it leaves a hole rather
	// than reclaiming space immediately. Owns is a range check against
	// [base, top), so the hole's address still reads as owned until the
	// arena resets.
	require.NoError(t, a.Deallocate(first))
	require.Equal(t, remainingBeforeFree, a.MaxSize())
	require.True(t, a.Owns(first))
	require.True(t, a.Owns(second))

	// Freeing the last live block empties the arena and resets it.
	require.NoError(t, a.Deallocate(second))
	require.Equal(t, 256, a.MaxSize())
}

func TestStackAllocatorOutOfMemory(t *testing.T) {
	a := NewStackAllocator(16, StackOptions{})

	_, err := a.Allocate(1024, 8)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestStackAllocatorNotOwned(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	err := a.Deallocate(Block{Address: 0xDEADBEEF, Size: 8})
	require.ErrorIs(t, err, ErrNotOwned)
}

func TestStackAllocatorReallocateGrowInPlace(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	block, err := a.Allocate(16, 8)
	require.NoError(t, err)

	grown, err := a.Reallocate(block, 32, 8)
	require.NoError(t, err)
	require.Equal(t, block.Address, grown.Address)
	require.Equal(t, 32, grown.Size)
}

func TestStackAllocatorReallocateCopiesContents(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	first, err := a.Allocate(16, 8)
	require.NoError(t, err)
	copy(a.bytesAt(first.Address, 16), []byte("0123456789abcdef"))

	// Allocate a second block so first is no longer topmost, forcing
	// Reallocate to copy rather than resize in place.
	_, err = a.Allocate(16, 8)
	require.NoError(t, err)

	grown, err := a.Reallocate(first, 32, 8)
	require.NoError(t, err)
	require.NotEqual(t, first.Address, grown.Address)
	require.Equal(t, []byte("0123456789abcdef"), a.bytesAt(grown.Address, 16))
}

func TestStackAllocatorDeallocateAll(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	_, err := a.Allocate(32, 8)
	require.NoError(t, err)
	_, err = a.Allocate(32, 8)
	require.NoError(t, err)

	a.DeallocateAll()
	require.Equal(t, 256, a.MaxSize())
}

func TestStackAllocatorStatistics(t *testing.T) {
	a := NewStackAllocator(256, StackOptions{})

	_, err := a.Allocate(32, 8)
	require.NoError(t, err)
	_, err = a.Allocate(32, 8)
	require.NoError(t, err)

	var stats Statistics
	a.AddStatistics(&stats)
	require.Equal(t, 2, stats.AllocationCount)
}
