package memkit

import (
	"golang.org/x/exp/slog"
)

// LoggingAllocator wraps Next and emits a debug log record for every
// operation, reporting the outcome of each call. It adds no behavior
// of its own; it exists purely to make a composed allocator's traffic
// observable.
type LoggingAllocator[Next Allocator] struct {
	Next   Next
	Logger *slog.Logger
}

// NewLoggingAllocator wraps next so every operation performed through
// it is logged at logger.
func NewLoggingAllocator[Next Allocator](next Next, logger *slog.Logger) *LoggingAllocator[Next] {
	return &LoggingAllocator[Next]{Next: next, Logger: logger}
}

var _ Allocator = &LoggingAllocator[Allocator]{}

// Allocate forwards to Next and logs the request and outcome.
func (a *LoggingAllocator[Next]) Allocate(size int, alignment uintptr) (Block, error) {
	block, err := a.Next.Allocate(size, alignment)
	if err != nil {
		a.Logger.Debug("memkit: allocate failed", "size", size, "alignment", alignment, "error", err)
		return Block{}, err
	}

	a.Logger.Debug("memkit: allocate", "size", size, "alignment", alignment, "address", block.Address)
	return block, nil
}

// Reallocate forwards to Next and logs the request and outcome.
func (a *LoggingAllocator[Next]) Reallocate(block Block, newSize int, alignment uintptr) (Block, error) {
	realloc, err := a.Next.Reallocate(block, newSize, alignment)
	if err != nil {
		a.Logger.Debug("memkit: reallocate failed", "address", block.Address, "oldSize", block.Size, "newSize", newSize, "error", err)
		return Block{}, err
	}

	a.Logger.Debug("memkit: reallocate", "oldAddress", block.Address, "oldSize", block.Size, "newAddress", realloc.Address, "newSize", realloc.Size)
	return realloc, nil
}

// Deallocate forwards to Next and logs the request and outcome.
func (a *LoggingAllocator[Next]) Deallocate(block Block) error {
	err := a.Next.Deallocate(block)
	if err != nil {
		a.Logger.Debug("memkit: deallocate failed", "address", block.Address, "size", block.Size, "error", err)
		return err
	}

	a.Logger.Debug("memkit: deallocate", "address", block.Address, "size", block.Size)
	return nil
}

// DeallocateAll forwards to Next and logs the event.
func (a *LoggingAllocator[Next]) DeallocateAll() {
	a.Next.DeallocateAll()
	a.Logger.Debug("memkit: deallocate all")
}

// MaxSize forwards to Next without logging; it has no side effects
// worth recording.
func (a *LoggingAllocator[Next]) MaxSize() int {
	return a.Next.MaxSize()
}

// Owns forwards to Next without logging; it has no side effects worth
// recording.
func (a *LoggingAllocator[Next]) Owns(block Block) bool {
	return a.Next.Owns(block)
}
