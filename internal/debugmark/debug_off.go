//go:build !debug_memkit

package debugmark

import "unsafe"

// MarginSize is zero in production builds: no canary bytes are reserved.
const MarginSize int = 0

// Write no-ops unless the debug_memkit build tag is present.
func Write(data unsafe.Pointer, offset int) {}

// Check always reports intact canaries unless the debug_memkit build tag
// is present, since none were written.
func Check(data unsafe.Pointer, offset int) bool { return true }
