package memkit

import (
	"math"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/memkit-go/memkit/internal/syncutil"
)

// GlobalOptions configures a GlobalAllocator at construction time.
type GlobalOptions struct {
	// ThreadSafe opts this allocator into a real mutex. Allocators are
	// single-threaded by default.
	ThreadSafe bool
}

// GlobalAllocator adapts the Go heap to the Allocator protocol,
// tracking every live block in a registry so DeallocateAll can release
// everything at once; there is no separate destruction step, and once
// the allocator is unreachable its registered buffers are left to the
// garbage collector along with it. Go has no
// malloc/free/realloc; allocation is make([]byte, size), kept alive by
// the registry holding a strong reference, and deallocation is simply
// dropping that reference so the garbage collector can reclaim it.
type GlobalAllocator struct {
	mutex  syncutil.OptionalRWMutex
	blocks map[uintptr][]byte
}

var _ Allocator = &GlobalAllocator{}

// NewGlobalAllocator creates an empty GlobalAllocator.
func NewGlobalAllocator(options GlobalOptions) *GlobalAllocator {
	return &GlobalAllocator{
		mutex:  syncutil.OptionalRWMutex{UseMutex: options.ThreadSafe},
		blocks: make(map[uintptr][]byte),
	}
}

// Allocate returns a fresh Block of size bytes from the Go heap.
// alignment is accepted for protocol conformance but Go's allocator
// already guarantees word alignment; requests wider than that are not
// honored by this strategy.
func (a *GlobalAllocator) Allocate(size int, alignment uintptr) (Block, error) {
	if err := checkPow2(alignment, "alignment"); err != nil {
		return Block{}, err
	}

	buf := make([]byte, size)
	address := addressOf(buf)
	block := Block{Address: address, Size: size}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.blocks[address] = buf

	return block, nil
}

// Reallocate allocates a fresh block of newSize bytes, copies the
// overlapping content, and frees block.
func (a *GlobalAllocator) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	if err := checkPow2(alignment, "alignment"); err != nil {
		return Block{}, err
	}

	a.mutex.Lock()
	old, ok := a.blocks[block.Address]
	a.mutex.Unlock()

	if !ok {
		return Block{}, cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	newBuf := make([]byte, newSize)
	copy(newBuf, old[:minInt(len(old), newSize)])
	newAddress := addressOf(newBuf)
	newBlock := Block{Address: newAddress, Size: newSize}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	delete(a.blocks, block.Address)
	a.blocks[newAddress] = newBuf

	return newBlock, nil
}

// Deallocate removes block from the registry, letting the garbage
// collector reclaim its memory.
func (a *GlobalAllocator) Deallocate(block Block) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.deallocateLocked(block)
}

func (a *GlobalAllocator) deallocateLocked(block Block) error {
	if _, ok := a.blocks[block.Address]; !ok {
		return cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	delete(a.blocks, block.Address)
	return nil
}

// DeallocateAll drains the registry, releasing every live block.
func (a *GlobalAllocator) DeallocateAll() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.blocks = make(map[uintptr][]byte)
}

// MaxSize reports the platform's size maximum, since this strategy
// defers to the Go heap and imposes no capacity bound of its own.
func (a *GlobalAllocator) MaxSize() int {
	return math.MaxInt
}

// Owns reports whether block is currently registered.
func (a *GlobalAllocator) Owns(block Block) bool {
	if block.Zero() {
		return false
	}

	a.mutex.RLock()
	defer a.mutex.RUnlock()

	_, ok := a.blocks[block.Address]
	return ok
}

// AddStatistics accumulates the registry's live blocks into stats.
func (a *GlobalAllocator) AddStatistics(stats *Statistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	stats.AllocationCount += len(a.blocks)
	for _, buf := range a.blocks {
		stats.AllocationBytes += len(buf)
	}
}

// AddDetailedStatistics accumulates per-allocation size bounds into
// stats by visiting every registered block.
func (a *GlobalAllocator) AddDetailedStatistics(stats *DetailedStatistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	for _, buf := range a.blocks {
		stats.AddAllocation(len(buf))
	}
}

// WriteJSON writes this allocator's registry occupancy into obj.
func (a *GlobalAllocator) WriteJSON(obj jwriter.ObjectState) {
	var stats Statistics
	a.AddStatistics(&stats)

	obj.Name("LiveAllocations").Int(stats.AllocationCount)
	obj.Name("LiveBytes").Int(stats.AllocationBytes)
}

func addressOf(buf []byte) uintptr {
	if len(buf) == 0 {
		return uintptr(unsafe.Pointer(&buf))
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
