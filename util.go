package memkit

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// errNotPowerOfTwo is the sentinel wrapped by checkPow2 when an
// alignment argument isn't a power of two.
var errNotPowerOfTwo error = errors.New("alignment must be a power of two")

// checkPow2 validates that alignment is a power of two, wrapping
// errNotPowerOfTwo with the offending value and its call site's name.
func checkPow2(alignment uintptr, name string) error {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return cerrors.Wrapf(errNotPowerOfTwo, "%s is %d", name, alignment)
	}
	return nil
}

// alignUp rounds value up to the next multiple of alignment.
func alignUp(value uintptr, alignment uintptr) uintptr {
	return (value + alignment - 1) &^ (alignment - 1)
}

// alignedPadding returns the number of bytes of padding needed to bring
// value up to alignment.
func alignedPadding(value uintptr, alignment uintptr) uintptr {
	return alignUp(value, alignment) - value
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
