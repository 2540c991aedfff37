package vulkan

import (
	"encoding/binary"
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/internal/utils"
	"github.com/vdbox/scalability/scratch"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

// CreateOptions configures an Allocator
type CreateOptions struct {
	// AllocationCallbacks are passed to every vkAllocateMemory and vkFreeMemory call
	AllocationCallbacks *driver.AllocationCallbacks
	// HeapSizeLimit caps the number of live bytes this allocator will take from the device. Zero
	// means no limit beyond what the device reports.
	HeapSizeLimit int
	// ExternallySynchronized indicates the allocator is never used from two goroutines at once
	ExternallySynchronized bool
}

// Allocator is a scratch.Allocator that places each scratch buffer in its own block of Vulkan
// device memory. Ordinary buffers prefer device-local memory. Lockable buffers are placed in
// host-visible memory and stay persistently mapped so diagnostics can read them back.
type Allocator struct {
	logger *slog.Logger
	driver DeviceDriver

	memoryProperties    *core1_0.PhysicalDeviceMemoryProperties
	nonCoherentAtomSize int
	heapSizeLimit       int

	deviceLocalTypeIndex int
	lockableTypeIndex    int

	mutex     utils.OptionalMutex
	liveBytes int
}

var _ scratch.Allocator = &Allocator{}

// New creates an Allocator that allocates from a vkngwrapper device
func New(logger *slog.Logger, device core1_0.Device, physicalDevice core1_0.PhysicalDevice, options CreateOptions) (*Allocator, error) {
	if device == nil || physicalDevice == nil {
		return nil, errors.New("attempted to create a vulkan scratch allocator without a device")
	}

	return NewWithDriver(logger, &coreDriver{device: device, callbacks: options.AllocationCallbacks}, physicalDevice, options)
}

// NewWithDriver creates an Allocator on top of an arbitrary device driver. options.AllocationCallbacks
// is ignored; the driver owns its callbacks.
func NewWithDriver(logger *slog.Logger, deviceDriver DeviceDriver, physicalDevice PhysicalDevice, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a vulkan scratch allocator without a logger")
	}
	if deviceDriver == nil || physicalDevice == nil {
		return nil, errors.New("attempted to create a vulkan scratch allocator without a device")
	}

	properties, err := physicalDevice.Properties()
	if err != nil {
		return nil, err
	}

	atomSize := 1
	if properties.Limits != nil && properties.Limits.NonCoherentAtomSize > 0 {
		atomSize = properties.Limits.NonCoherentAtomSize
		err = hwutils.CheckPow2(atomSize, "device nonCoherentAtomSize")
		if err != nil {
			return nil, err
		}
	}

	allocator := &Allocator{
		logger:              logger,
		driver:              deviceDriver,
		memoryProperties:    physicalDevice.MemoryProperties(),
		nonCoherentAtomSize: atomSize,
		heapSizeLimit:       options.HeapSizeLimit,
		mutex: utils.OptionalMutex{
			UseMutex: !options.ExternallySynchronized,
		},
	}

	allocator.deviceLocalTypeIndex = allocator.findMemoryTypeIndex(0, core1_0.MemoryPropertyDeviceLocal, core1_0.MemoryPropertyHostVisible)
	if allocator.deviceLocalTypeIndex < 0 {
		return nil, errors.New("the physical device does not expose any memory types")
	}

	allocator.lockableTypeIndex = allocator.findMemoryTypeIndex(
		core1_0.MemoryPropertyHostVisible,
		core1_0.MemoryPropertyHostCoherent|core1_0.MemoryPropertyHostCached,
		0,
	)

	logger.Debug("Allocator::New",
		slog.Int("DeviceLocalMemoryType", allocator.deviceLocalTypeIndex),
		slog.Int("LockableMemoryType", allocator.lockableTypeIndex),
	)

	return allocator, nil
}

func (a *Allocator) findMemoryTypeIndex(requiredFlags, preferredFlags, notPreferredFlags core1_0.MemoryPropertyFlags) int {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range a.memoryProperties.MemoryTypes {
		flags := memType.PropertyFlags
		if requiredFlags&flags != requiredFlags {
			continue
		}

		missingPreferredFlags := preferredFlags & ^flags
		presentNotPreferredFlags := notPreferredFlags & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))
		if cost == 0 {
			return memTypeIndex
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	return bestMemoryTypeIndex
}

func (a *Allocator) isHostCoherent(memoryTypeIndex int) bool {
	return a.memoryProperties.MemoryTypes[memoryTypeIndex].PropertyFlags&core1_0.MemoryPropertyHostCoherent != 0
}

func (a *Allocator) Allocate(kind caps.BufferKind, size int, lockable bool) (scratch.Memory, error) {
	if size <= 0 {
		return nil, errors.Newf("cannot allocate %d bytes for %s", size, kind)
	}

	memoryTypeIndex := a.deviceLocalTypeIndex
	if lockable {
		if a.lockableTypeIndex < 0 {
			return nil, errors.Mark(errors.Newf("buffer %s must be lockable, but the device has no host-visible memory", kind), hwutils.ErrUnsupportedConfiguration)
		}
		memoryTypeIndex = a.lockableTypeIndex
		size = hwutils.AlignUp(size, uint(a.nonCoherentAtomSize))
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	heapIndex := a.memoryProperties.MemoryTypes[memoryTypeIndex].HeapIndex
	heapSize := a.memoryProperties.MemoryHeaps[heapIndex].Size
	limit := heapSize
	if a.heapSizeLimit > 0 && a.heapSizeLimit < limit {
		limit = a.heapSizeLimit
	}
	if a.liveBytes+size > limit {
		return nil, errors.Wrapf(hwutils.ErrResourceExhausted, "allocating %d bytes for %s would exceed the %d byte heap limit", size, kind, limit)
	}

	memory, res, err := a.driver.AllocateMemory(size, memoryTypeIndex)
	if err != nil {
		if res == core1_0.VKErrorOutOfDeviceMemory || res == core1_0.VKErrorOutOfHostMemory {
			err = errors.Mark(err, hwutils.ErrResourceExhausted)
		}
		return nil, errors.Wrapf(err, "vkAllocateMemory failed for %s", kind)
	}

	allocation := &deviceMemory{
		parent:          a,
		memory:          memory,
		size:            size,
		lockable:        lockable,
		memoryTypeIndex: memoryTypeIndex,
	}

	if lockable {
		allocation.mapped, res, err = memory.Map()
		if err != nil {
			memory.Free()
			return nil, errors.Wrapf(err, "failed to map lockable buffer %s (%v)", kind, res)
		}
	}

	a.liveBytes += size
	a.logger.Debug("Allocator::Allocate",
		slog.String("Buffer", kind.String()),
		slog.Int("Size", size),
		slog.Int("MemoryTypeIndex", memoryTypeIndex),
	)

	return allocation, nil
}

// LiveBytes is the total size of every allocation that has not been freed
func (a *Allocator) LiveBytes() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.liveBytes
}

func (a *Allocator) free(allocation *deviceMemory) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if allocation.mapped != nil {
		allocation.memory.Unmap()
		allocation.mapped = nil
	}
	allocation.memory.Free()
	a.liveBytes -= allocation.size
}

type deviceMemory struct {
	parent          *Allocator
	memory          DeviceMemory
	size            int
	lockable        bool
	memoryTypeIndex int
	mapped          unsafe.Pointer
	freed           bool
}

func (m *deviceMemory) Size() int {
	return m.size
}

func (m *deviceMemory) Lockable() bool {
	return m.lockable
}

func (m *deviceMemory) ReadUint32(offset int) (uint32, error) {
	if m.freed {
		return 0, errors.New("attempted to read freed device memory")
	}
	if !m.lockable || m.mapped == nil {
		return 0, errors.New("attempted to read device memory that was not allocated as lockable")
	}
	if offset < 0 || offset+4 > m.size {
		return 0, errors.Newf("offset %d is outside of the %d byte allocation", offset, m.size)
	}

	if !m.parent.isHostCoherent(m.memoryTypeIndex) {
		res, err := m.parent.driver.InvalidateMemory(m.memory, m.size)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to invalidate lockable memory (%v)", res)
		}
	}

	data := unsafe.Slice((*byte)(m.mapped), m.size)
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

func (m *deviceMemory) Free() {
	if m.freed {
		panic("device memory freed twice")
	}
	m.freed = true
	m.parent.free(m)
}

// Handle exposes the device memory object so the emission layer can resolve buffer addresses
func (m *deviceMemory) Handle() DeviceMemory {
	return m.memory
}
