package memkit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(buf))
}

func TestLoggingAllocatorLogsAllocate(t *testing.T) {
	var buf bytes.Buffer
	next := NewStackAllocator(256, StackOptions{})
	a := NewLoggingAllocator[*StackAllocator](next, newTestLogger(&buf))

	block, err := a.Allocate(32, 8)
	require.NoError(t, err)
	require.True(t, a.Owns(block))
	require.Contains(t, buf.String(), "memkit: allocate")
}

func TestLoggingAllocatorLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	next := NewStackAllocator(16, StackOptions{})
	a := NewLoggingAllocator[*StackAllocator](next, newTestLogger(&buf))

	_, err := a.Allocate(1024, 8)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Contains(t, buf.String(), "memkit: allocate failed")
}

func TestLoggingAllocatorLogsDeallocate(t *testing.T) {
	var buf bytes.Buffer
	next := NewStackAllocator(256, StackOptions{})
	a := NewLoggingAllocator[*StackAllocator](next, newTestLogger(&buf))

	block, err := a.Allocate(32, 8)
	require.NoError(t, err)

	require.NoError(t, a.Deallocate(block))
	require.Contains(t, buf.String(), "memkit: deallocate")
}
