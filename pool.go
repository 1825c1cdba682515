package memkit

import (
	"errors"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"

	"github.com/memkit-go/memkit/internal/syncutil"
)

// PoolOptions configures a PoolAllocator at construction time.
type PoolOptions struct {
	// ThreadSafe opts this allocator into a real mutex. Allocators are
	// single-threaded by default.
	ThreadSafe bool

	// Logger, if set, receives a debug record every time a new pool is
	// created.
	Logger *slog.Logger
}

// PoolAllocator manages a growable collection of fixed-size pools, each
// a StackAllocator sized PoolSize bytes. Requests larger than PoolSize
// are rejected. The pools are kept as a binary max-heap ordered by
// remaining capacity (MaxSize), so the pool most likely to satisfy the
// next request is always found in O(1), and a failed allocation can
// grow the collection without rescanning every existing pool.
type PoolAllocator struct {
	mutex syncutil.OptionalMutex

	PoolSize int
	logger   *slog.Logger

	pools []*StackAllocator
}

var _ Allocator = &PoolAllocator{}

// NewPoolAllocator creates an empty PoolAllocator whose pools are each
// poolSize bytes. In the allocator this package is modeled on, a new
// pool's storage came from a caller-supplied backing allocator; in Go
// the pool structs themselves are ordinary heap values managed by the
// garbage collector, so no backing allocator is needed to create them.
func NewPoolAllocator(poolSize int, options PoolOptions) *PoolAllocator {
	return &PoolAllocator{
		mutex:    syncutil.OptionalMutex{UseMutex: options.ThreadSafe},
		PoolSize: poolSize,
		logger:   options.Logger,
	}
}

// Allocate finds the pool with the most remaining capacity and
// allocates from it. If no pool can satisfy the request, a new pool is
// created and the allocation retried there.
func (a *PoolAllocator) Allocate(size int, alignment uintptr) (Block, error) {
	if size > a.PoolSize {
		return Block{}, cerrors.Wrapf(ErrOutOfMemory, "requested %d bytes exceeds pool size %d", size, a.PoolSize)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocateLocked(size, alignment)
}

func (a *PoolAllocator) allocateLocked(size int, alignment uintptr) (Block, error) {
	if len(a.pools) == 0 {
		a.createPool()
	}

	block, err := a.pools[0].Allocate(size, alignment)
	if err == nil {
		a.fixDown(0)
		return block, nil
	}
	if !errors.Is(err, ErrOutOfMemory) {
		return Block{}, err
	}

	idx := a.createPool()
	block, err = a.pools[idx].Allocate(size, alignment)
	if err != nil {
		return Block{}, err
	}

	a.fixUp(idx)
	return block, nil
}

// Reallocate locates the owning pool and resizes in place when
// possible. If the owning pool cannot satisfy the new size, this
// allocates a fresh block (possibly in another pool, or a brand new
// one), copies the contents, and frees the original.
func (a *PoolAllocator) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	if newSize > a.PoolSize {
		return Block{}, cerrors.Wrapf(ErrOutOfMemory, "requested %d bytes exceeds pool size %d", newSize, a.PoolSize)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	idx := a.ownerIndex(block)
	if idx < 0 {
		return Block{}, cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	realloc, err := a.pools[idx].Reallocate(block, newSize, alignment)
	if err == nil {
		a.fixDown(idx)
		a.fixUp(idx)
		return realloc, nil
	}
	if !errors.Is(err, ErrOutOfMemory) {
		return Block{}, err
	}

	min := minInt(block.Size, newSize)
	owner := a.pools[idx]

	newBlock, err := a.allocateLocked(newSize, alignment)
	if err != nil {
		return Block{}, err
	}

	copyBlockBytes(newBlock, block, min)

	// allocateLocked above may have reordered the heap (fixDown on the
	// root, or fixUp after createPool), so idx can no longer be trusted
	// to still point at owner; hold owner by pointer and re-find its
	// current position before restoring the heap invariant there.
	if err := owner.Deallocate(block); err != nil {
		return Block{}, err
	}
	a.fixUp(a.indexOf(owner))

	return newBlock, nil
}

// Deallocate locates the owning pool, frees block there, and restores
// the heap invariant at that pool's position.
func (a *PoolAllocator) Deallocate(block Block) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	idx := a.ownerIndex(block)
	if idx < 0 {
		return cerrors.Wrapf(ErrNotOwned, "block at %#x size %d", block.Address, block.Size)
	}

	if err := a.pools[idx].Deallocate(block); err != nil {
		return err
	}

	a.fixUp(idx)
	return nil
}

// DeallocateAll releases every block in every pool, without discarding
// the pools themselves.
func (a *PoolAllocator) DeallocateAll() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, pool := range a.pools {
		pool.DeallocateAll()
	}
}

// MaxSize reports the configured pool size: the largest request any
// single pool could ever satisfy, regardless of current occupancy.
func (a *PoolAllocator) MaxSize() int {
	return a.PoolSize
}

// Owns reports whether any pool currently owns block.
func (a *PoolAllocator) Owns(block Block) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.ownerIndex(block) >= 0
}

func (a *PoolAllocator) ownerIndex(block Block) int {
	if block.Zero() {
		return -1
	}

	for i, pool := range a.pools {
		if pool.Owns(block) {
			return i
		}
	}
	return -1
}

// indexOf finds pool's current slot, used to relocate a pool whose
// index may have shifted since it was last looked up.
func (a *PoolAllocator) indexOf(pool *StackAllocator) int {
	for i, p := range a.pools {
		if p == pool {
			return i
		}
	}
	return -1
}

// createPool appends a new pool and returns its index. The new pool
// starts out with PoolSize bytes free, so it is very likely to become
// the new root; callers are expected to fixUp after inserting.
func (a *PoolAllocator) createPool() int {
	pool := NewStackAllocator(a.PoolSize, StackOptions{})
	a.pools = append(a.pools, pool)
	idx := len(a.pools) - 1

	if a.logger != nil {
		a.logger.Debug("memkit: pool created", "index", idx, "poolSize", a.PoolSize, "poolCount", len(a.pools))
	}

	return idx
}

// fixUp restores the max-heap invariant by walking idx toward the root,
// swapping with its parent while the parent has less remaining
// capacity. It touches only the path from idx to its final resting
// place, never the whole heap.
func (a *PoolAllocator) fixUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if a.pools[parent].MaxSize() >= a.pools[idx].MaxSize() {
			break
		}
		a.pools[parent], a.pools[idx] = a.pools[idx], a.pools[parent]
		idx = parent
	}
}

// fixDown restores the max-heap invariant by walking idx toward the
// leaves, swapping with whichever child has the most remaining
// capacity while that child exceeds idx's own. It touches only the
// path from idx to its final resting place.
func (a *PoolAllocator) fixDown(idx int) {
	n := len(a.pools)
	for {
		left := 2*idx + 1
		right := 2*idx + 2
		largest := idx

		if left < n && a.pools[left].MaxSize() > a.pools[largest].MaxSize() {
			largest = left
		}
		if right < n && a.pools[right].MaxSize() > a.pools[largest].MaxSize() {
			largest = right
		}
		if largest == idx {
			break
		}

		a.pools[idx], a.pools[largest] = a.pools[largest], a.pools[idx]
		idx = largest
	}
}

// AddStatistics accumulates every pool's live-allocation count and
// bytes into stats.
func (a *PoolAllocator) AddStatistics(stats *Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, pool := range a.pools {
		pool.AddStatistics(stats)
	}
}

// AddDetailedStatistics accumulates per-allocation size bounds across
// every pool into stats.
func (a *PoolAllocator) AddDetailedStatistics(stats *DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, pool := range a.pools {
		pool.AddDetailedStatistics(stats)
	}
}

// WriteJSON writes per-pool occupancy into obj.
func (a *PoolAllocator) WriteJSON(obj jwriter.ObjectState) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	obj.Name("PoolSize").Int(a.PoolSize)
	obj.Name("PoolCount").Int(len(a.pools))
}
