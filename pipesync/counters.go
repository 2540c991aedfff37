package pipesync

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/phase"
)

// CounterID indexes the frame's hardware semaphores. Phases refer to the counters they wait on and
// signal by index into the SyncCounters scratch buffer, never by reference to one another.
type CounterID int

const (
	// CounterFrontEndDone is signalled by the front end once the streamout buffer is complete
	CounterFrontEndDone CounterID = 0
	// CounterCompletion gathers every back end's completion for the last back end
	CounterCompletion CounterID = 1 + phase.MaxPipes

	// CounterCount is the number of counters in the arena
	CounterCount = int(CounterCompletion) + 1
	// CounterStride is the distance between counters. Each counter owns a cacheline so that
	// atomics from different pipes never share one.
	CounterStride = int(caps.CacheLineSize)
	// CounterBytes is the part of the SyncCounters buffer the arena occupies
	CounterBytes = CounterCount * CounterStride
)

// BackEndDone is the counter back end ordinal signals once it has passed its start gate
func BackEndDone(ordinal int) CounterID {
	return CounterID(1 + ordinal)
}

func (id CounterID) Valid() bool {
	return id >= 0 && int(id) < CounterCount
}

// Address is the location of the counter in the SyncCounters buffer
func (id CounterID) Address() cmdbuf.Address {
	return cmdbuf.Address{
		Buffer: caps.BufferSyncCounters,
		Offset: int(id) * CounterStride,
	}
}

func (id CounterID) String() string {
	switch {
	case id == CounterFrontEndDone:
		return "FrontEndDone"
	case id == CounterCompletion:
		return "Completion"
	case id > CounterFrontEndDone && id < CounterCompletion:
		return fmt.Sprintf("BackEndDone%d", int(id)-1)
	}
	return "Invalid"
}

// Counters models the value every counter holds once the commands built so far have executed in
// program order. The Builder uses it to refuse a wait that nothing built ahead of it could satisfy.
type Counters struct {
	values [CounterCount]int
}

func (c *Counters) Value(id CounterID) int {
	if !id.Valid() {
		return 0
	}
	return c.values[id]
}

// Settled reports whether every counter is back at zero, which is required before the frame's
// command buffers can be replayed
func (c *Counters) Settled() bool {
	for _, value := range c.values {
		if value != 0 {
			return false
		}
	}
	return true
}

func (c *Counters) apply(cmd cmdbuf.Command) error {
	if cmd.Target.Buffer != caps.BufferSyncCounters {
		return nil
	}

	id := CounterID(cmd.Target.Offset / CounterStride)
	if !id.Valid() || cmd.Target.Offset%CounterStride != 0 {
		return errors.AssertionFailedf("offset %d is not a counter", cmd.Target.Offset)
	}

	value := int(cmd.Value)
	switch cmd.Op {
	case caps.MiAtomic:
		switch cmd.Atomic {
		case cmdbuf.AtomicIncrement:
			c.values[id] += value
		case cmdbuf.AtomicDecrement:
			if c.values[id] < value {
				return errors.AssertionFailedf("counter %s would drop below zero", id)
			}
			c.values[id] -= value
		}
	case caps.MiStoreDataImm:
		c.values[id] = value
	case caps.MiSemaphoreWait:
		satisfied := false
		switch cmd.Compare {
		case cmdbuf.CompareEqual:
			satisfied = c.values[id] == value
		case cmdbuf.CompareGreaterOrEqual:
			satisfied = c.values[id] >= value
		}
		if !satisfied {
			return errors.Wrapf(ErrPhaseOutOfOrder, "wait for counter %s to reach %d can never be satisfied, it holds %d", id, value, c.values[id])
		}
	}

	return nil
}
