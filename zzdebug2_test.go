package memkit

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"testing"
)

func TestZZStackGrowth(t *testing.T) {
	debug.SetGCPercent(1)
	a := newFallback(16, 256)
	block, err := a.Allocate(16, 8)
	if err != nil { t.Fatal(err) }
	copy(a.Primary.bytesAt(block.Address, 16), []byte("0123456789abcdef"))
	runtime.GC()
	runtime.GC()
	fmt.Println("after GC:", a.Primary.bytesAt(block.Address, 16))
}
