package memkit

// Block identifies a single live allocation. Two blocks compare equal iff
// both Address and Size match. A freshly zero-valued Block is the
// sentinel: it is never owned by any allocator, because a live
// allocation's Address is never zero.
//
// Alignment is deliberately absent from Block: it is a request
// parameter to Allocate/Reallocate, not part of a block's identity, so
// Owns and Deallocate never depend on how a block was aligned.
type Block struct {
	Address uintptr
	Size    int
}

// Zero reports whether b is the sentinel zero-valued Block.
func (b Block) Zero() bool {
	return b.Address == 0 && b.Size == 0
}

// Equal reports whether b and other identify the same live allocation.
func (b Block) Equal(other Block) bool {
	return b.Address == other.Address && b.Size == other.Size
}

// Less totally orders blocks by address, then by size, so Blocks can be
// used as map/set keys or kept in sorted containers.
func (b Block) Less(other Block) bool {
	if b.Address != other.Address {
		return b.Address < other.Address
	}
	return b.Size < other.Size
}

// Hash combines the address and size using the Boost-style combine,
// matching the hash gregjm::MemoryBlock used in the allocator this
// package is modeled on: h ^ (g + 0x9e3779b9 + (h << 6) + (h >> 2)).
func (b Block) Hash() uint64 {
	h := uint64(b.Address)
	g := uint64(b.Size)
	return h ^ (g + 0x9e3779b9 + (h << 6) + (h >> 2))
}
