// Package syncutil provides opt-in locking primitives shared by the
// allocator strategies in memkit. Allocators are single-threaded by
// default; passing UseMutex: true turns the no-op into a real sync.Mutex
// without changing any call site.
package syncutil

import "sync"

// OptionalMutex wraps sync.Mutex behind a flag. When UseMutex is false,
// Lock and Unlock are no-ops, so single-threaded allocators pay nothing
// for synchronization they don't need.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}

// OptionalRWMutex is the read/write counterpart of OptionalMutex, used by
// strategies whose membership queries (Owns) benefit from concurrent
// readers, such as GlobalAllocator's registry.
type OptionalRWMutex struct {
	Mutex    sync.RWMutex
	UseMutex bool
}

func (m *OptionalRWMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalRWMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}

func (m *OptionalRWMutex) RLock() {
	if m.UseMutex {
		m.Mutex.RLock()
	}
}

func (m *OptionalRWMutex) RUnlock() {
	if m.UseMutex {
		m.Mutex.RUnlock()
	}
}
