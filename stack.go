package memkit

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/memkit-go/memkit/internal/debugmark"
	"github.com/memkit-go/memkit/internal/syncutil"
)

// stackAlignment is the byte alignment of a StackAllocator's backing
// buffer, matching the alignas(64) array this strategy is modeled on.
const stackAlignment uintptr = 64

// StackOptions configures a StackAllocator at construction time.
type StackOptions struct {
	// ThreadSafe opts this allocator into a real mutex. Allocators are
	// single-threaded by default.
	ThreadSafe bool
}

// StackAllocator is a fixed-capacity bump arena with LIFO reuse: it
// advances a top pointer on every allocation and only reclaims memory
// when the most recently allocated block is freed, or when the arena
// empties out entirely and resets.
type StackAllocator struct {
	mutex syncutil.OptionalMutex

	raw      []byte
	base     uintptr
	capacity int

	top       uintptr
	remaining int
	liveCount int
	live      map[uintptr]int
}

var _ Allocator = &StackAllocator{}

// NewStackAllocator creates a StackAllocator with the given byte
// capacity. In the allocator this package is modeled on, capacity was a
// compile-time template parameter; Go has no non-type generic
// parameters, so it is a constructor argument instead.
func NewStackAllocator(size int, options StackOptions) *StackAllocator {
	raw := make([]byte, size+int(stackAlignment)-1)
	rawBase := uintptr(unsafe.Pointer(&raw[0]))
	base := alignUp(rawBase, stackAlignment)

	return &StackAllocator{
		mutex:     syncutil.OptionalMutex{UseMutex: options.ThreadSafe},
		raw:       raw,
		base:      base,
		capacity:  size,
		top:       base,
		remaining: size,
		live:      make(map[uintptr]int),
	}
}

// Allocate returns a fresh Block of size bytes aligned to alignment.
func (a *StackAllocator) Allocate(size int, alignment uintptr) (Block, error) {
	if err := checkPow2(alignment, "alignment"); err != nil {
		return Block{}, err
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocateLocked(size, alignment)
}

func (a *StackAllocator) allocateLocked(size int, alignment uintptr) (Block, error) {
	padding := alignedPadding(a.top, alignment)

	if size+int(padding)+debugmark.MarginSize > a.remaining {
		return Block{}, cerrors.Wrapf(ErrOutOfMemory, "requested %d bytes (alignment %d), only %d remaining", size, alignment, a.remaining)
	}

	a.push(padding)
	block := Block{Address: a.top, Size: size}
	a.push(uintptr(size))

	debugmark.Write(a.pointerAt(block.Address), size)
	a.push(uintptr(debugmark.MarginSize))

	a.liveCount++
	a.live[block.Address] = size

	return block, nil
}

// Reallocate resizes block in place when it is the most recently
// allocated (topmost) block; otherwise it allocates fresh, copies the
// overlapping bytes, and frees the original.
func (a *StackAllocator) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	if err := checkPow2(alignment, "alignment"); err != nil {
		return Block{}, err
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.ownsLocked(block) {
		return Block{}, cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	if a.isTopmost(block) {
		realloc := Block{Address: block.Address, Size: newSize}

		delta := newSize - block.Size
		if delta < 0 {
			a.pop(uintptr(-delta))
		} else {
			if delta+debugmark.MarginSize > a.remaining {
				return Block{}, cerrors.Wrapf(ErrOutOfMemory, "grow to %d bytes, only %d remaining", newSize, a.remaining)
			}
			a.push(uintptr(delta))
		}

		debugmark.Write(a.pointerAt(block.Address), newSize)
		a.live[block.Address] = newSize

		return realloc, nil
	}

	min := minInt(block.Size, newSize)
	realloc, err := a.allocateLocked(newSize, alignment)
	if err != nil {
		return Block{}, err
	}

	copy(a.bytesAt(realloc.Address, min), a.bytesAt(block.Address, min))

	if err := a.deallocateLocked(block); err != nil {
		return Block{}, err
	}

	return realloc, nil
}

// Deallocate releases block. If block sits at the top of the stack it
// is popped immediately; otherwise it leaves an interior hole that is
// only reclaimed when the arena fully empties.
func (a *StackAllocator) Deallocate(block Block) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.deallocateLocked(block)
}

func (a *StackAllocator) deallocateLocked(block Block) error {
	if !a.ownsLocked(block) {
		return cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	if !debugmark.Check(a.pointerAt(block.Address), block.Size) {
		panic(cerrors.Newf("memkit: corruption detected past block at %#x size %d", block.Address, block.Size))
	}

	if a.isTopmost(block) {
		a.pop(uintptr(block.Size) + uintptr(debugmark.MarginSize))
	}

	delete(a.live, block.Address)

	a.liveCount--
	if a.liveCount == 0 {
		a.top = a.base
		a.remaining = a.capacity
	}

	return nil
}

// DeallocateAll resets the arena to empty in one step.
func (a *StackAllocator) DeallocateAll() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.top = a.base
	a.remaining = a.capacity
	a.liveCount = 0
	a.live = make(map[uintptr]int)
}

// MaxSize reports the arena's currently remaining capacity.
func (a *StackAllocator) MaxSize() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.remaining
}

// Owns reports whether block's address falls within the live range of
// this arena.
func (a *StackAllocator) Owns(block Block) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.ownsLocked(block)
}

func (a *StackAllocator) ownsLocked(block Block) bool {
	if block.Zero() {
		return false
	}
	return block.Address >= a.base && block.Address < a.top
}

func (a *StackAllocator) isTopmost(block Block) bool {
	return block.Address+uintptr(block.Size)+uintptr(debugmark.MarginSize) == a.top
}

func (a *StackAllocator) push(size uintptr) {
	a.top += size
	a.remaining -= int(size)
}

func (a *StackAllocator) pop(size uintptr) {
	a.top -= size
	a.remaining += int(size)
}

func (a *StackAllocator) bytesAt(address uintptr, size int) []byte {
	offset := int(address - a.base)
	return a.raw[offset : offset+size]
}

func (a *StackAllocator) pointerAt(address uintptr) unsafe.Pointer {
	return unsafe.Pointer(&a.raw[int(address-a.base)])
}

// AddStatistics accumulates this arena's live-allocation count and
// bytes into stats.
func (a *StackAllocator) AddStatistics(stats *Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats.AllocationCount += a.liveCount
	for _, size := range a.live {
		stats.AllocationBytes += size
	}
}

// AddDetailedStatistics accumulates per-allocation size bounds into
// stats by visiting every live allocation, the way the teacher's
// LinearBlockMetadata.AddDetailedStatistics visits its suballocations.
func (a *StackAllocator) AddDetailedStatistics(stats *DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, size := range a.live {
		stats.AddAllocation(size)
	}
}

// WriteJSON writes this arena's occupancy into obj, matching the
// BlockJsonData diagnostic idiom this package's metadata strategies are
// modeled on.
func (a *StackAllocator) WriteJSON(obj jwriter.ObjectState) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	obj.Name("Capacity").Int(a.capacity)
	obj.Name("Remaining").Int(a.remaining)
	obj.Name("LiveAllocations").Int(a.liveCount)
}
