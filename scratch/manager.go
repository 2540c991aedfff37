package scratch

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/internal/utils"
	"golang.org/x/exp/slog"
	"golang.org/x/exp/slices"
)

// Buffer is the descriptor of one scratch buffer owned by a Manager. Other components may hold a
// *Buffer for the duration of a frame but must not keep it across frames, because a later Ensure
// may replace it.
type Buffer struct {
	kind       caps.BufferKind
	size       int
	lockable   bool
	generation int
	memory     Memory
}

func (b *Buffer) Kind() caps.BufferKind {
	return b.kind
}

// Size is the allocated size in bytes, which may exceed what the current frame requires
func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) Lockable() bool {
	return b.lockable
}

// Generation counts how many times the buffer's identity has been reallocated
func (b *Buffer) Generation() int {
	return b.generation
}

// Memory is the backend allocation behind the buffer, used by the emission layer to resolve addresses
func (b *Buffer) Memory() Memory {
	return b.memory
}

// CreateOptions configures a Manager
type CreateOptions struct {
	// Table supplies the sizing rules used by EnsureForFrame. It may be nil if only Ensure is used.
	Table *caps.Table
	// ExternallySynchronized indicates the caller guarantees the Manager is never used from two
	// goroutines at once, which removes its internal locking
	ExternallySynchronized bool
}

// Manager owns every scratch buffer of a decode session. Buffers grow when a frame needs more
// space than they hold and never shrink while the session is live.
type Manager struct {
	logger    *slog.Logger
	allocator Allocator
	table     *caps.Table

	mutex   utils.OptionalRWMutex
	buffers *swiss.Map[caps.BufferKind, *Buffer]
	stats   hwutils.Statistics
	// failures counts allocation attempts the backend refused
	failures int
}

func NewManager(logger *slog.Logger, allocator Allocator, options CreateOptions) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a scratch manager without a logger")
	}
	if allocator == nil {
		return nil, errors.New("attempted to create a scratch manager without an allocator")
	}

	return &Manager{
		logger:    logger,
		allocator: allocator,
		table:     options.Table,
		mutex: utils.OptionalRWMutex{
			UseMutex: !options.ExternallySynchronized,
		},
		buffers: swiss.NewMap[caps.BufferKind, *Buffer](42),
	}, nil
}

// Ensure returns the buffer for kind, allocating it on first use and reallocating it when
// requiredBytes exceeds its current size. A buffer that is already large enough is returned
// unchanged. A lockable request for a buffer that was allocated without the flag reallocates it
// at its current size or larger.
//
// If the backend fails, the old buffer has already been released and the identity is left
// empty, so the next frame starts from a fresh allocation. The returned error is marked with
// hwutils.ErrResourceExhausted; the caller must abort the frame before building any command that
// references the buffer.
func (m *Manager) Ensure(kind caps.BufferKind, requiredBytes int, lockable bool) (*Buffer, error) {
	if kind == caps.BufferInvalid {
		return nil, errors.New("attempted to ensure the invalid buffer kind")
	}
	if requiredBytes <= 0 {
		return nil, errors.Newf("buffer %s: required size must be positive, but was %d", kind, requiredBytes)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.ensure(kind, requiredBytes, lockable)
}

func (m *Manager) ensure(kind caps.BufferKind, requiredBytes int, lockable bool) (*Buffer, error) {
	existing, exists := m.buffers.Get(kind)
	if exists && existing.size >= requiredBytes && (existing.lockable || !lockable) {
		return existing, nil
	}

	generation := 0
	if exists {
		m.logger.Debug("Manager::ensure reallocating",
			slog.String("Buffer", kind.String()),
			slog.Int("CurrentBytes", existing.size),
			slog.Int("RequiredBytes", requiredBytes),
		)

		generation = existing.generation + 1
		requiredBytes = hwutils.Max(requiredBytes, existing.size)
		lockable = lockable || existing.lockable

		m.release(existing)
	}

	memory, err := m.allocator.Allocate(kind, requiredBytes, lockable)
	if err != nil {
		m.failures++
		m.logger.Warn("Manager::ensure allocation FAILED",
			slog.String("Buffer", kind.String()),
			slog.Int("RequiredBytes", requiredBytes),
			slog.Any("Error", err),
		)

		if !errors.Is(err, hwutils.ErrResourceExhausted) {
			err = errors.Mark(err, hwutils.ErrResourceExhausted)
		}
		return nil, errors.Wrapf(err, "failed to allocate %d bytes for scratch buffer %s", requiredBytes, kind)
	}

	buffer := &Buffer{
		kind:       kind,
		size:       requiredBytes,
		lockable:   lockable,
		generation: generation,
		memory:     memory,
	}
	m.buffers.Put(kind, buffer)
	m.stats.BufferCount++
	m.stats.BufferBytes += requiredBytes
	m.stats.AllocationCount++

	m.logger.Debug("Manager::ensure allocated",
		slog.String("Buffer", kind.String()),
		slog.Int("Size", requiredBytes),
		slog.Bool("Lockable", lockable),
		slog.Int("Generation", generation),
	)

	return buffer, nil
}

func (m *Manager) release(buffer *Buffer) {
	m.buffers.Delete(buffer.kind)
	m.stats.BufferCount--
	m.stats.BufferBytes -= buffer.size
	m.stats.FreeCount++
	buffer.memory.Free()
	buffer.memory = nil
}

// EnsureForFrame ensures every buffer in kinds at the size the frame geometry requires and
// reports how many of them had to be reallocated. First-time allocations are not reallocations.
// It stops at the first failure.
func (m *Manager) EnsureForFrame(geometry codec.FrameGeometry, kinds []caps.BufferKind) (reallocated int, err error) {
	if m.table == nil {
		return 0, errors.New("the scratch manager was created without a capability table")
	}

	err = geometry.Validate()
	if err != nil {
		return 0, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, kind := range kinds {
		var rule caps.SizingRule
		rule, err = m.table.Sizing(kind)
		if err != nil {
			return reallocated, err
		}

		_, existed := m.buffers.Get(kind)
		before := m.stats.AllocationCount

		_, err = m.ensure(kind, rule.RequiredBytes(geometry), rule.Lockable)
		if err != nil {
			return reallocated, err
		}

		if existed && m.stats.AllocationCount != before {
			reallocated++
		}
	}

	return reallocated, nil
}

// Get returns the current buffer for kind, if one is allocated
func (m *Manager) Get(kind caps.BufferKind) (*Buffer, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.buffers.Get(kind)
}

// ReadLockable reads one word of a lockable buffer. The caller must only read after the pipeline
// that writes the buffer has drained.
func (m *Manager) ReadLockable(kind caps.BufferKind, offset int) (uint32, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	buffer, ok := m.buffers.Get(kind)
	if !ok {
		return 0, errors.Newf("scratch buffer %s has not been allocated", kind)
	}
	if !buffer.lockable {
		return 0, errors.Newf("scratch buffer %s is not lockable", kind)
	}

	return buffer.memory.ReadUint32(offset)
}

// Kinds lists every allocated buffer identity in ascending order
func (m *Manager) Kinds() []caps.BufferKind {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.kinds()
}

func (m *Manager) kinds() []caps.BufferKind {
	kinds := make([]caps.BufferKind, 0, m.buffers.Count())
	m.buffers.Iter(func(kind caps.BufferKind, _ *Buffer) bool {
		kinds = append(kinds, kind)
		return false
	})
	slices.Sort(kinds)
	return kinds
}

// Destroy frees every buffer. The Manager must not be used afterward.
func (m *Manager) Destroy() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	kinds := m.kinds()
	if len(kinds) > 0 {
		m.logger.Debug("Manager::Destroy freeing scratch buffers", slog.Int("Count", len(kinds)), slog.Int("Bytes", m.stats.BufferBytes))
	}

	for _, kind := range kinds {
		buffer, _ := m.buffers.Get(kind)
		m.release(buffer)
	}

	if m.stats.BufferCount != 0 || m.stats.BufferBytes != 0 {
		m.logger.Warn("Manager::Destroy scratch accounting did not return to zero",
			slog.Int("BufferCount", m.stats.BufferCount),
			slog.Int("BufferBytes", m.stats.BufferBytes),
		)
	}
}
