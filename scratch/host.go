package scratch

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/internal/utils"
)

// HostAllocator is an Allocator backed by Go memory. It is used when the orchestration core runs
// without a device, such as when command streams are planned ahead of time or replayed from a
// capture, and it can enforce a byte limit to reproduce out-of-memory conditions.
type HostAllocator struct {
	// Limit caps the number of live bytes. Zero means unlimited.
	Limit int

	mutex     utils.OptionalMutex
	liveBytes int
}

var _ Allocator = &HostAllocator{}

// NewHostAllocator creates a HostAllocator. When threadSafe is false, the allocator must only be
// used from one goroutine at a time.
func NewHostAllocator(limit int, threadSafe bool) *HostAllocator {
	return &HostAllocator{
		Limit: limit,
		mutex: utils.OptionalMutex{UseMutex: threadSafe},
	}
}

func (a *HostAllocator) Allocate(kind caps.BufferKind, size int, lockable bool) (Memory, error) {
	if size <= 0 {
		return nil, errors.Newf("cannot allocate %d bytes for %s", size, kind)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.Limit > 0 && a.liveBytes+size > a.Limit {
		return nil, errors.Wrapf(hwutils.ErrResourceExhausted, "allocating %d bytes for %s would exceed the %d byte limit (%d live)",
			size, kind, a.Limit, a.liveBytes)
	}

	a.liveBytes += size
	return &HostMemory{
		parent:   a,
		data:     make([]byte, size),
		lockable: lockable,
	}, nil
}

// LiveBytes is the total size of every allocation that has not been freed
func (a *HostAllocator) LiveBytes() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.liveBytes
}

func (a *HostAllocator) release(size int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.liveBytes -= size
	if a.liveBytes < 0 {
		panic("host allocator live bytes went negative")
	}
}

// HostMemory is the Memory produced by HostAllocator
type HostMemory struct {
	parent   *HostAllocator
	data     []byte
	lockable bool
	freed    bool
}

var _ Memory = &HostMemory{}

func (m *HostMemory) Size() int {
	return len(m.data)
}

func (m *HostMemory) Lockable() bool {
	return m.lockable
}

func (m *HostMemory) ReadUint32(offset int) (uint32, error) {
	if m.freed {
		return 0, errors.New("attempted to read freed memory")
	}
	if !m.lockable {
		return 0, errors.New("attempted to read memory that was not allocated as lockable")
	}
	if offset < 0 || offset+4 > len(m.data) {
		return 0, errors.Newf("offset %d is outside of the %d byte allocation", offset, len(m.data))
	}

	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

// WriteUint32 stores a little-endian word, standing in for a device write when command streams
// are executed by an emulator
func (m *HostMemory) WriteUint32(offset int, value uint32) error {
	if m.freed {
		return errors.New("attempted to write freed memory")
	}
	if offset < 0 || offset+4 > len(m.data) {
		return errors.Newf("offset %d is outside of the %d byte allocation", offset, len(m.data))
	}

	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *HostMemory) Free() {
	if m.freed {
		panic("host memory freed twice")
	}
	m.freed = true
	m.parent.release(len(m.data))
	m.data = nil
}
