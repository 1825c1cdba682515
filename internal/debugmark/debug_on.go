//go:build debug_memkit

// Package debugmark writes and checks anti-corruption markers at the
// edges of live allocations. It no-ops entirely unless the debug_memkit
// build tag is set, so production builds pay nothing for it.
package debugmark

import "unsafe"

const (
	// MarginSize is the number of bytes of canary data placed after each
	// live allocation when the debug_memkit build tag is present.
	MarginSize int = 16

	magicValue uint32 = 0x7F84E666
)

// Write stamps MarginSize bytes of canary data at data+offset.
func Write(data unsafe.Pointer, offset int) {
	dest := unsafe.Add(data, offset)
	words := MarginSize / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		*(*uint32)(dest) = magicValue
		dest = unsafe.Add(dest, unsafe.Sizeof(uint32(0)))
	}
}

// Check verifies the canary data stamped by Write is still intact.
func Check(data unsafe.Pointer, offset int) bool {
	src := unsafe.Add(data, offset)
	words := MarginSize / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		if *(*uint32)(src) != magicValue {
			return false
		}
		src = unsafe.Add(src, unsafe.Sizeof(uint32(0)))
	}
	return true
}
