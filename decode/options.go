package decode

import (
	"github.com/vdbox/scalability/caps"
	"github.com/vkngwrapper/core/v2/common"
)

// CreateFlags indicate specific session behaviors to activate or deactivate
type CreateFlags int32

var sessionCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	sessionCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return sessionCreateFlagsMapping.FlagsToString(f)
}

const (
	// SessionCreateExternallySynchronized ensures that the session and its scratch manager will not
	// be synchronized internally. The consumer must guarantee they are used from only one goroutine
	// at a time.
	SessionCreateExternallySynchronized CreateFlags = 1 << iota
	// SessionCreateDetailedStats lists every scratch buffer in BuildStatsString
	SessionCreateDetailedStats
)

func init() {
	SessionCreateExternallySynchronized.Register("SessionCreateExternallySynchronized")
	SessionCreateDetailedStats.Register("SessionCreateDetailedStats")
}

// Options contains the settings of a decode session. Only Generation is required.
type Options struct {
	Flags CreateFlags
	// Generation is the hardware generation whose command costs size every phase
	Generation caps.Generation
	// Table is the capability table of the device. caps.Default() is used when it is nil.
	Table *caps.Table
	// Platform describes the decode engines of the device, and decides how many pipes a frame uses
	// when the frame does not request a pipe count
	Platform caps.Platform
	// Emitter writes the codec commands of each phase. When nil, only synchronization is built.
	Emitter Emitter
	// Decompressor performs the in-place decompressions the compression enforcer schedules. When
	// nil, the decompressions are only reported through FramePlan.Compression.
	Decompressor Decompressor
}
