package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memkit-go/memkit"
)

type record struct {
	A int64
	B int64
}

func TestHandleAllocateAndDeallocate(t *testing.T) {
	alloc := memkit.NewStackAllocator(256, memkit.StackOptions{})
	handle := NewHandle[record](alloc)

	ptr, block, err := handle.Allocate(1)
	require.NoError(t, err)
	require.NotNil(t, ptr)

	ptr.A = 7
	ptr.B = 9
	require.Equal(t, int64(7), ptr.A)

	require.NoError(t, handle.Deallocate(block))
}

func TestHandleMaxSize(t *testing.T) {
	alloc := memkit.NewStackAllocator(256, memkit.StackOptions{})
	handle := NewHandle[record](alloc)

	require.Positive(t, handle.MaxSize())
}

func TestHandleEqual(t *testing.T) {
	alloc := memkit.NewStackAllocator(256, memkit.StackOptions{})
	other := memkit.NewStackAllocator(256, memkit.StackOptions{})

	a := NewHandle[record](alloc)
	b := NewHandle[record](alloc)
	c := NewHandle[record](other)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
