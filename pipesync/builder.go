package pipesync

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/phase"
)

// Registers touched by the front end's streamout overflow check. The emission layer maps them to the
// generation's MMIO offsets.
const (
	RegisterStreamoutSize uint32 = iota + 1
	RegisterGeneralPurpose0Lo
	RegisterGeneralPurpose0Hi
	RegisterGeneralPurpose4Lo
	RegisterGeneralPurpose4Hi
)

// StatusOverflowOffset is the word of the FrontEndStatus buffer holding the carry flag of
// (reported streamout size - allocated streamout size). The front end leaves it all ones when the
// streamout fit and zero when it overflowed.
const StatusOverflowOffset = 0

// SyncFrontEndDone is the software sync point the front end signals under separate submission
const SyncFrontEndDone cmdbuf.SyncPoint = 1

// Options configures the synchronization built for one frame
type Options struct {
	// FrontEndSeparateSubmission submits the front end on its own context, which replaces the
	// front end to back end hardware semaphore with a software sync point
	FrontEndSeparateSubmission bool
	// StreamoutBytes is the allocated size of the CABAC streamout buffer the front end fills
	StreamoutBytes int
}

// Builder wraps every phase of one frame with its synchronization commands. Phases must be built in
// list order: Begin, optionally LockPipe and UnlockPipe, then End, before the next phase begins.
// A Builder is used for one frame and by one goroutine.
type Builder struct {
	list    phase.List
	options Options

	counters Counters
	next     int
	open     *cmdbuf.Buffer
	current  phase.Phase
	locked   bool
	failed   bool
}

func NewBuilder(list phase.List, options Options) (*Builder, error) {
	err := list.Validate()
	if err != nil {
		return nil, err
	}
	if options.StreamoutBytes < 0 {
		return nil, errors.Newf("streamout size must not be negative, but was %d", options.StreamoutBytes)
	}

	return &Builder{
		list:    list,
		options: options,
	}, nil
}

// Counters returns the modeled counter values after every command built so far
func (b *Builder) Counters() Counters {
	return b.counters
}

// Finished reports whether every phase of the frame has been closed
func (b *Builder) Finished() bool {
	return !b.failed && b.open == nil && b.next == len(b.list)
}

func (b *Builder) emit(buf *cmdbuf.Buffer, cmds ...cmdbuf.Command) error {
	for _, cmd := range cmds {
		err := b.counters.apply(cmd)
		if err != nil {
			b.failed = true
			return err
		}

		err = buf.Add(cmd)
		if err != nil {
			b.failed = true
			return err
		}
	}
	return nil
}

func (b *Builder) checkOpen(buf *cmdbuf.Buffer) error {
	if b.failed {
		return errors.New("the frame's synchronization has already failed")
	}
	if b.open == nil {
		return errors.Wrap(ErrPhaseOutOfOrder, "no phase is open")
	}
	if b.open != buf {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d is open on a different command buffer", b.current.Index)
	}
	return nil
}

// Begin opens p and emits its prologue into buf: the engine init barrier, and for back ends the
// start gate (watchdog stop, wait on the preceding phase's counter and release of that counter,
// reset and signal of the phase's own counter) followed by the conditional end that skips the
// rest of the phase when the front end reported a streamout overflow.
func (b *Builder) Begin(p phase.Phase, buf *cmdbuf.Buffer) error {
	if b.failed {
		return errors.New("the frame's synchronization has already failed")
	}
	if buf == nil {
		return errors.New("attempted to begin a phase without a command buffer")
	}
	if b.open != nil {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d began while phase %d is still open", p.Index, b.current.Index)
	}
	if p.Index != b.next || p.Index >= len(b.list) {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d began, expected phase %d", p.Index, b.next)
	}
	if p.Mode != b.list[p.Index].Mode || p.Ordinal != b.list[p.Index].Ordinal {
		return errors.Newf("phase %d does not match the frame's plan", p.Index)
	}

	buf.SetPipe(p.Pipe)
	separate := b.options.FrontEndSeparateSubmission && b.list.Scalable()

	err := b.emit(buf,
		cmdbuf.Command{Op: caps.VdControlState, Control: cmdbuf.ControlInit},
		cmdbuf.Command{Op: caps.MiFlushDw},
	)
	if err != nil {
		return err
	}

	switch p.Mode {
	case phase.WorkModeLegacy, phase.WorkModeShortFormat:
	case phase.WorkModeFrontEnd:
		buf.SetSeparateSubmission(separate)
	case phase.WorkModeBackEnd:
		err = b.beginBackEnd(p, buf, separate)
	default:
		err = errors.AssertionFailedf("unknown work mode %d", p.Mode)
	}
	if err != nil {
		return err
	}

	b.open = buf
	b.current = p
	b.locked = false
	return nil
}

func (b *Builder) beginBackEnd(p phase.Phase, buf *cmdbuf.Buffer, separate bool) error {
	err := b.emit(buf, cmdbuf.Command{Op: caps.MiWatchdogStop})
	if err != nil {
		return err
	}

	if p.Ordinal == 0 && separate {
		buf.AddWait(SyncFrontEndDone)
	} else {
		gate := CounterFrontEndDone
		if p.Ordinal > 0 {
			gate = BackEndDone(p.Ordinal - 1)
		}

		err = b.emit(buf,
			cmdbuf.Command{Op: caps.MiSemaphoreWait, Target: gate.Address(), Value: 1, Compare: cmdbuf.CompareGreaterOrEqual},
			cmdbuf.Command{Op: caps.MiAtomic, Target: gate.Address(), Value: 1, Atomic: cmdbuf.AtomicDecrement},
		)
		if err != nil {
			return err
		}
	}

	own := BackEndDone(p.Ordinal)
	err = b.emit(buf, cmdbuf.Command{Op: caps.MiStoreDataImm, Target: own.Address(), Value: 0})
	if err != nil {
		return err
	}

	// The last back end has no successor to release
	if p.Ordinal < b.list.PipeCount()-1 {
		err = b.emit(buf, cmdbuf.Command{Op: caps.MiAtomic, Target: own.Address(), Value: 1, Atomic: cmdbuf.AtomicIncrement})
		if err != nil {
			return err
		}
	}

	return b.emit(buf, cmdbuf.Command{
		Op:      caps.MiConditionalBatchBufferEnd,
		Target:  cmdbuf.Address{Buffer: caps.BufferFrontEndStatus, Offset: StatusOverflowOffset},
		Value:   0,
		Compare: cmdbuf.CompareEqual,
	})
}

// LockPipe scopes the engine's arbitration to the open phase before tile or segment state is
// programmed
func (b *Builder) LockPipe(buf *cmdbuf.Buffer) error {
	err := b.checkOpen(buf)
	if err != nil {
		return err
	}
	if b.locked {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d locked its pipe twice", b.current.Index)
	}

	err = b.emit(buf, cmdbuf.Command{Op: caps.VdControlState, Control: cmdbuf.ControlPipeLock})
	if err != nil {
		return err
	}
	b.locked = true
	return nil
}

// UnlockPipe releases the lock taken by LockPipe
func (b *Builder) UnlockPipe(buf *cmdbuf.Buffer) error {
	err := b.checkOpen(buf)
	if err != nil {
		return err
	}
	if !b.locked {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d unlocked a pipe it had not locked", b.current.Index)
	}

	err = b.emit(buf, cmdbuf.Command{Op: caps.VdControlState, Control: cmdbuf.ControlPipeUnlock})
	if err != nil {
		return err
	}
	b.locked = false
	return nil
}

// End emits p's epilogue and closes it. The front end records whether its streamout overflowed and
// signals the first back end. Back ends run the completion sync: every back end but the last
// signals the completion counter, and the last waits for all of them and resets it.
func (b *Builder) End(p phase.Phase, buf *cmdbuf.Buffer) error {
	err := b.checkOpen(buf)
	if err != nil {
		return err
	}
	if p.Index != b.current.Index {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d ended while phase %d is open", p.Index, b.current.Index)
	}
	if b.locked {
		return errors.Wrapf(ErrPhaseOutOfOrder, "phase %d ended with its pipe still locked", p.Index)
	}

	switch p.Mode {
	case phase.WorkModeLegacy, phase.WorkModeShortFormat:
		err = b.emit(buf, cmdbuf.Command{Op: caps.MiFlushDw})
	case phase.WorkModeFrontEnd:
		err = b.endFrontEnd(buf)
	case phase.WorkModeBackEnd:
		err = b.endBackEnd(p, buf)
	default:
		err = errors.AssertionFailedf("unknown work mode %d", p.Mode)
	}
	if err != nil {
		return err
	}

	b.open = nil
	b.next++
	return nil
}

func (b *Builder) endFrontEnd(buf *cmdbuf.Buffer) error {
	status := cmdbuf.Address{Buffer: caps.BufferFrontEndStatus, Offset: StatusOverflowOffset}
	err := b.emit(buf,
		cmdbuf.Command{Op: caps.MiFlushDw},
		cmdbuf.Command{Op: caps.MiLoadRegisterReg, Register: RegisterGeneralPurpose0Lo, Value: RegisterStreamoutSize},
		cmdbuf.Command{Op: caps.MiLoadRegisterImm, Register: RegisterGeneralPurpose0Hi, Value: 0},
		cmdbuf.Command{Op: caps.MiLoadRegisterImm, Register: RegisterGeneralPurpose4Lo, Value: uint32(b.options.StreamoutBytes)},
		cmdbuf.Command{Op: caps.MiLoadRegisterImm, Register: RegisterGeneralPurpose4Hi, Value: 0},
		// GPR0 = carry(GPR0 - GPR4)
		cmdbuf.Command{Op: caps.MiMath},
		cmdbuf.Command{Op: caps.MiStoreRegisterMem, Target: status, Register: RegisterGeneralPurpose0Lo},
	)
	if err != nil {
		return err
	}

	if b.options.FrontEndSeparateSubmission {
		buf.AddSignal(SyncFrontEndDone)
		return nil
	}

	return b.emit(buf, cmdbuf.Command{Op: caps.MiAtomic, Target: CounterFrontEndDone.Address(), Value: 1, Atomic: cmdbuf.AtomicIncrement})
}

func (b *Builder) endBackEnd(p phase.Phase, buf *cmdbuf.Buffer) error {
	completion := CounterCompletion.Address()
	if !p.IsLast {
		return b.emit(buf, cmdbuf.Command{Op: caps.MiAtomic, Target: completion, Value: 1, Atomic: cmdbuf.AtomicIncrement})
	}

	others := b.list.PipeCount() - 1
	err := b.emit(buf, cmdbuf.Command{Op: caps.MiSemaphoreWait, Target: completion, Value: uint32(others), Compare: cmdbuf.CompareEqual})
	if err != nil {
		return err
	}
	for i := 0; i < others; i++ {
		err = b.emit(buf, cmdbuf.Command{Op: caps.MiAtomic, Target: completion, Value: 1, Atomic: cmdbuf.AtomicDecrement})
		if err != nil {
			return err
		}
	}
	return nil
}
