package decode

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/budget"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/internal/utils"
	"github.com/vdbox/scalability/mmc"
	"github.com/vdbox/scalability/phase"
	"github.com/vdbox/scalability/pipesync"
	"github.com/vdbox/scalability/scratch"
	"golang.org/x/exp/slog"
)

// Session prepares the frames of one decode stream. Frames are prepared one at a time; preparing a
// frame never waits for the device.
type Session struct {
	logger       *slog.Logger
	flags        CreateFlags
	generation   caps.Generation
	table        *caps.Table
	costs        caps.CostTable
	platform     caps.Platform
	emitter      Emitter
	decompressor Decompressor

	mutex   utils.OptionalMutex
	scratch *scratch.Manager

	lastGeometry codec.FrameGeometry
	stats        Statistics
}

// New creates a session that allocates its scratch buffers from allocator. The hardware generation
// must be described by the capability table.
func New(logger *slog.Logger, allocator scratch.Allocator, options Options) (*Session, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a decode session without a logger")
	}

	table := options.Table
	if table == nil {
		table = caps.Default()
	}

	costs, err := table.Costs(options.Generation)
	if err != nil {
		return nil, err
	}

	externallySynchronized := options.Flags&SessionCreateExternallySynchronized != 0
	manager, err := scratch.NewManager(logger, allocator, scratch.CreateOptions{
		Table:                  table,
		ExternallySynchronized: externallySynchronized,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Session::New",
		slog.String("Generation", options.Generation.String()),
		slog.Int("VdboxCount", options.Platform.VdboxCount),
		slog.String("Flags", options.Flags.String()),
	)

	return &Session{
		logger:       logger,
		flags:        options.Flags,
		generation:   options.Generation,
		table:        table,
		costs:        costs,
		platform:     options.Platform,
		emitter:      options.Emitter,
		decompressor: options.Decompressor,
		mutex: utils.OptionalMutex{
			UseMutex: !externallySynchronized,
		},
		scratch: manager,
	}, nil
}

// Scratch is the session's scratch manager
func (s *Session) Scratch() *scratch.Manager {
	return s.scratch
}

// PrepareFrame plans a frame and builds the command buffer of every phase. In order, it sizes the
// phases' command budget, plans the phases, grows the scratch buffers for the frame's geometry,
// reconciles the compression state of the target and its references, and builds each phase:
// synchronization prologue, picture commands, pipe-locked tile commands, synchronization epilogue.
//
// A frame that cannot be prepared is dropped: the error is returned, no command buffer is
// returned, and the next frame starts fresh. Errors marked hwutils.ErrResourceExhausted or
// hwutils.ErrUnsupportedConfiguration mean the frame must be withheld from output.
func (s *Session) PrepareFrame(input FrameInput) (*FramePlan, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stats.Frames++
	plan, err := s.prepareFrame(input)
	if err != nil {
		s.stats.Dropped++
		s.logger.Warn("Session::PrepareFrame frame DROPPED",
			slog.Int("Frame", s.stats.Frames),
			slog.String("Mode", input.Geometry.Mode.String()),
			slog.Any("Error", err),
		)
		return nil, err
	}

	s.lastGeometry = input.Geometry
	s.stats.Phases += len(plan.Phases)
	s.stats.Reallocations += plan.Reallocations
	if plan.Scalable() {
		s.stats.ScalableFrames++
	}

	return plan, nil
}

func (s *Session) prepareFrame(input FrameInput) (*FramePlan, error) {
	geometry := input.Geometry
	err := geometry.Validate()
	if err != nil {
		return nil, errors.Mark(err, hwutils.ErrUnsupportedConfiguration)
	}

	modeCaps, err := s.table.Mode(geometry.Mode)
	if err != nil {
		return nil, err
	}

	pipeCount := input.PipeCount
	if pipeCount == 0 {
		pipeCount = phase.DecidePipeCount(geometry, s.platform, phase.DecideHints{
			Unscalable:         !modeCaps.Scalable,
			UsingScalingEngine: input.ScalingEngine,
			TileColumns:        input.TileColumns,
			SecureDecode:       input.SecureDecode,
		})
	}

	features := budget.Features{
		PipeCount:                  pipeCount,
		ScalingEngine:              input.ScalingEngine,
		TileReplay:                 input.TileReplay,
		HighBitDepth:               geometry.HighBitDepth(),
		FrontEndSeparateSubmission: s.platform.FrontEndSeparateSubmission,
	}
	capacity, err := budget.Estimate(geometry.Mode, s.generation, features, s.table)
	if err != nil {
		return nil, err
	}

	phases, err := phase.Plan(phase.Option{
		PipeCount:        pipeCount,
		Tiling:           input.Tiling,
		ResolutionStable: geometry == s.lastGeometry,
		TileReplay:       input.TileReplay,
		ShortFormat:      input.ShortFormat,
		WidthInCtb:       geometry.WidthInCtb(),
		TileColumns:      input.TileColumns,
	})
	if err != nil {
		return nil, err
	}

	kinds, err := s.table.BuffersFor(geometry.Mode, phases.Scalable())
	if err != nil {
		return nil, err
	}
	reallocated, err := s.scratch.EnsureForFrame(geometry, kinds)
	if err != nil {
		return nil, err
	}

	plan := &FramePlan{
		Number:        s.stats.Frames,
		Geometry:      geometry,
		Phases:        phases,
		Capacity:      capacity,
		Reallocations: reallocated,
		scratch:       make(map[caps.BufferKind]*scratch.Buffer, len(kinds)),
	}
	for _, kind := range kinds {
		buffer, ok := s.scratch.Get(kind)
		if !ok {
			return nil, errors.AssertionFailedf("scratch buffer %s is missing after being ensured", kind)
		}
		plan.scratch[kind] = buffer
	}

	plan.Compression = s.reconcile(input)

	err = s.buildPhases(plan, input.Tiles)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Session::PrepareFrame prepared",
		slog.Int("Frame", plan.Number),
		slog.String("Mode", geometry.Mode.String()),
		slog.Int("Width", geometry.Width),
		slog.Int("Height", geometry.Height),
		slog.Int("Pipes", phases.PipeCount()),
		slog.Int("Phases", len(phases)),
		slog.Int("Reallocations", reallocated),
	)

	return plan, nil
}

func (s *Session) reconcile(input FrameInput) mmc.Result {
	result := mmc.Reconcile(input.Target, input.References, input.Inter)

	for _, remediation := range result.Remediations {
		s.stats.Remediations++
		s.logger.Warn("Session::reconcile compression hazard remediated",
			slog.String("Kind", remediation.Kind.String()),
			slog.Uint64("Surface", uint64(remediation.Surface)),
			slog.Int("Slot", remediation.Slot),
			slog.String("Previous", remediation.Previous.String()),
		)
	}

	if s.decompressor != nil {
		for _, surface := range result.Decompress {
			s.decompressor.DecompressInPlace(surface)
		}
	}

	return result
}

func (s *Session) buildPhases(plan *FramePlan, tiles int) error {
	streamoutBytes := 0
	if streamout, ok := plan.scratch[caps.BufferCabacStreamout]; ok {
		streamoutBytes = streamout.Size()
	}

	builder, err := pipesync.NewBuilder(plan.Phases, pipesync.Options{
		FrontEndSeparateSubmission: s.platform.FrontEndSeparateSubmission,
		StreamoutBytes:             streamoutBytes,
	})
	if err != nil {
		return err
	}

	phaseBudget := plan.Capacity.PhaseBudget(tiles)
	buffers := make([]*cmdbuf.Buffer, 0, len(plan.Phases))
	for i := range plan.Phases {
		plan.Phases[i].Budget = phaseBudget
		p := plan.Phases[i]

		buf := cmdbuf.NewBuffer(s.costs, phaseBudget)
		err = s.buildPhase(builder, plan, p, buf)
		if err != nil {
			return errors.Wrapf(err, "failed to build phase %d (%s)", p.Index, p.Mode)
		}
		buffers = append(buffers, buf)
	}

	if !builder.Finished() {
		return errors.AssertionFailedf("the frame's synchronization was left open")
	}

	plan.Buffers = buffers
	return nil
}

func (s *Session) buildPhase(builder *pipesync.Builder, plan *FramePlan, p phase.Phase, buf *cmdbuf.Buffer) error {
	err := builder.Begin(p, buf)
	if err != nil {
		return err
	}

	if s.emitter != nil {
		err = s.emitter.EmitPicture(plan, p, buf)
		if err != nil {
			return err
		}
	}

	err = builder.LockPipe(buf)
	if err != nil {
		return err
	}

	if s.emitter != nil {
		err = s.emitter.EmitTiles(plan, p, buf)
		if err != nil {
			return err
		}
	}

	err = builder.UnlockPipe(buf)
	if err != nil {
		return err
	}

	return builder.End(p, buf)
}

// FrameStatus reports how a prepared frame completed. It reads the front end's status word, so it
// must only be called once the frame's pipeline has drained. Single-pipe frames have no front end
// and always complete.
func (s *Session) FrameStatus(plan *FramePlan) (Status, error) {
	if plan == nil {
		return StatusComplete, errors.New("attempted to read the status of a nil frame")
	}
	if !plan.Scalable() {
		return StatusComplete, nil
	}

	carry, err := s.scratch.ReadLockable(caps.BufferFrontEndStatus, pipesync.StatusOverflowOffset)
	if err != nil {
		return StatusComplete, err
	}

	if carry == 0 {
		s.mutex.Lock()
		s.stats.Degraded++
		s.mutex.Unlock()

		s.logger.Warn("Session::FrameStatus device reported streamout overflow", slog.Int("Frame", plan.Number))
		return StatusDegraded, nil
	}
	return StatusComplete, nil
}

// Destroy frees every scratch buffer. The session must not be used afterward.
func (s *Session) Destroy() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.Debug("Session::Destroy",
		slog.Int("Frames", s.stats.Frames),
		slog.Int("Dropped", s.stats.Dropped),
	)
	s.scratch.Destroy()
}
