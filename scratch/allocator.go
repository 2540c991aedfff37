package scratch

//go:generate mockgen -source allocator.go -destination ./mocks/allocator.go -package mocks

import "github.com/vdbox/scalability/caps"

// Memory is one backing allocation handed out by an Allocator
type Memory interface {
	Size() int
	Lockable() bool
	// ReadUint32 reads a little-endian word at the provided byte offset. Only lockable memory can
	// be read, and only after the pipeline that writes it has drained.
	ReadUint32(offset int) (uint32, error)
	// Free releases the allocation. The Memory must not be used afterward.
	Free()
}

// Allocator is the backend the Manager obtains scratch storage from. An allocation failure
// returned from Allocate should be marked with hwutils.ErrResourceExhausted when it is caused by
// memory pressure; the Manager marks any error it receives regardless.
type Allocator interface {
	Allocate(kind caps.BufferKind, size int, lockable bool) (Memory, error)
}
