package vulkan

//go:generate mockgen -source device.go -destination ./mocks/device.go -package mocks

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

// DeviceDriver is the part of a logical device the Allocator drives
type DeviceDriver interface {
	AllocateMemory(size int, memoryTypeIndex int) (DeviceMemory, common.VkResult, error)
	// InvalidateMemory makes device writes to the first size bytes of mapped memory visible to the
	// host. It is only needed for memory types that are not host coherent.
	InvalidateMemory(memory DeviceMemory, size int) (common.VkResult, error)
}

// DeviceMemory is one VkDeviceMemory object
type DeviceMemory interface {
	// Map maps the whole allocation into host address space
	Map() (unsafe.Pointer, common.VkResult, error)
	Unmap()
	Free()
}

// PhysicalDevice is the part of a physical device the Allocator queries at creation
type PhysicalDevice interface {
	Properties() (*core1_0.PhysicalDeviceProperties, error)
	MemoryProperties() *core1_0.PhysicalDeviceMemoryProperties
}

// coreDriver drives a vkngwrapper core1_0.Device
type coreDriver struct {
	device    core1_0.Device
	callbacks *driver.AllocationCallbacks
}

var _ DeviceDriver = &coreDriver{}

func (d *coreDriver) AllocateMemory(size int, memoryTypeIndex int) (DeviceMemory, common.VkResult, error) {
	memory, res, err := d.device.AllocateMemory(d.callbacks, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return nil, res, err
	}

	return &coreMemory{memory: memory, callbacks: d.callbacks}, res, nil
}

func (d *coreDriver) InvalidateMemory(memory DeviceMemory, size int) (common.VkResult, error) {
	core, ok := memory.(*coreMemory)
	if !ok {
		var res common.VkResult
		return res, errors.New("attempted to invalidate memory that was not allocated by this device")
	}

	return d.device.InvalidateMappedMemoryRanges([]core1_0.MappedMemoryRange{
		{
			Memory: core.memory,
			Offset: 0,
			Size:   size,
		},
	})
}

type coreMemory struct {
	memory    core1_0.DeviceMemory
	callbacks *driver.AllocationCallbacks
}

func (m *coreMemory) Map() (unsafe.Pointer, common.VkResult, error) {
	return m.memory.Map(0, -1, 0)
}

func (m *coreMemory) Unmap() {
	m.memory.Unmap()
}

func (m *coreMemory) Free() {
	m.memory.Free(m.callbacks)
}

// Handle is the vkngwrapper memory object, used by the emission layer to resolve buffer addresses
func (m *coreMemory) Handle() core1_0.DeviceMemory {
	return m.memory
}
