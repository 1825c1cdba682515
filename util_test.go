package memkit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, checkPow2(1, "alignment"))
	require.NoError(t, checkPow2(64, "alignment"))

	require.Error(t, checkPow2(0, "alignment"))
	require.Error(t, checkPow2(3, "alignment"))
}

func TestAlignUp(t *testing.T) {
	require.Equal(t, uintptr(64), alignUp(1, 64))
	require.Equal(t, uintptr(64), alignUp(64, 64))
	require.Equal(t, uintptr(128), alignUp(65, 64))
}

func TestAlignedPadding(t *testing.T) {
	require.Equal(t, uintptr(63), alignedPadding(1, 64))
	require.Equal(t, uintptr(0), alignedPadding(64, 64))
}
