package memkit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocatorCreatesPoolsOnDemand(t *testing.T) {
	a := NewPoolAllocator(64, PoolOptions{})

	require.Empty(t, a.pools)

	block, err := a.Allocate(32, 8)
	require.NoError(t, err)
	require.Len(t, a.pools, 1)
	require.True(t, a.Owns(block))
}

func TestPoolAllocatorRejectsOversizedRequest(t *testing.T) {
	a := NewPoolAllocator(64, PoolOptions{})

	_, err := a.Allocate(128, 8)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestPoolAllocatorGrowsWhenRootIsFull(t *testing.T) {
	a := NewPoolAllocator(32, PoolOptions{})

	first, err := a.Allocate(32, 8)
	require.NoError(t, err)
	require.Len(t, a.pools, 1)

	// The one existing pool is now full; this should create a second.
	second, err := a.Allocate(32, 8)
	require.NoError(t, err)
	require.Len(t, a.pools, 2)

	require.True(t, a.Owns(first))
	require.True(t, a.Owns(second))
}

func TestPoolAllocatorHeapOrderFavorsMostFreeCapacity(t *testing.T) {
	a := NewPoolAllocator(32, PoolOptions{})

	_, err := a.Allocate(32, 8)
	require.NoError(t, err)

	_, err = a.Allocate(16, 8)
	require.NoError(t, err)

	// Pool 0 is full (0 free); the second allocation creates pool 1 with
	// 16 free, and fixUp swaps it to the root. The max-heap must place
	// the pool with more remaining capacity there.
	require.Equal(t, 16, a.pools[0].MaxSize())
}

func TestPoolAllocatorDeallocateRestoresHeap(t *testing.T) {
	a := NewPoolAllocator(32, PoolOptions{})

	first, err := a.Allocate(32, 8)
	require.NoError(t, err)
	second, err := a.Allocate(16, 8)
	require.NoError(t, err)

	require.NoError(t, a.Deallocate(second))
	require.False(t, a.Owns(second))
	require.True(t, a.Owns(first))
	// second's pool emptied and reset to full capacity; it stays the root.
	require.Equal(t, 32, a.pools[0].MaxSize())
}

func TestPoolAllocatorDeallocateNotOwned(t *testing.T) {
	a := NewPoolAllocator(32, PoolOptions{})

	err := a.Deallocate(Block{Address: 0xDEADBEEF, Size: 8})
	require.ErrorIs(t, err, ErrNotOwned)
}

func TestPoolAllocatorDeallocateAll(t *testing.T) {
	a := NewPoolAllocator(32, PoolOptions{})

	first, err := a.Allocate(32, 8)
	require.NoError(t, err)
	second, err := a.Allocate(16, 8)
	require.NoError(t, err)

	a.DeallocateAll()
	require.False(t, a.Owns(first))
	require.False(t, a.Owns(second))
	// Pools themselves survive DeallocateAll, only their contents clear.
	require.Len(t, a.pools, 2)
}

func TestPoolAllocatorMaxSize(t *testing.T) {
	a := NewPoolAllocator(64, PoolOptions{})
	require.Equal(t, 64, a.MaxSize())
}
