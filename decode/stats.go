package decode

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics are the running totals of a session
type Statistics struct {
	// Frames counts every call to PrepareFrame
	Frames int
	// Dropped counts the frames PrepareFrame refused
	Dropped        int
	ScalableFrames int
	Phases         int
	// Remediations counts compression hazards resolved by giving up compression
	Remediations int
	// Reallocations counts scratch buffers that grew
	Reallocations int
	// Degraded counts frames FrameStatus found truncated by a streamout overflow
	Degraded int
}

// Statistics returns the session's running totals
func (s *Session) Statistics() Statistics {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.stats
}

// BuildStatsString returns the session's statistics, along with those of its scratch manager, as
// a JSON string
func (s *Session) BuildStatsString() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	writer := jwriter.NewWriter()
	obj := writer.Object()

	frameObj := obj.Name("Frames").Object()
	frameObj.Name("Total").Int(s.stats.Frames)
	frameObj.Name("Dropped").Int(s.stats.Dropped)
	frameObj.Name("Scalable").Int(s.stats.ScalableFrames)
	frameObj.Name("Degraded").Int(s.stats.Degraded)
	frameObj.Name("Phases").Int(s.stats.Phases)
	frameObj.Name("Remediations").Int(s.stats.Remediations)
	frameObj.Name("Reallocations").Int(s.stats.Reallocations)
	frameObj.End()

	s.scratch.BuildStatsString(obj.Name("Scratch"), s.flags&SessionCreateDetailedStats != 0)

	obj.End()
	return string(writer.Bytes())
}
