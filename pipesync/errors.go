package pipesync

import "github.com/pkg/errors"

// ErrPhaseOutOfOrder is returned when a phase's synchronization is built before the phase ahead of
// it in the frame's list has been closed, or when lock and end calls do not match an open phase
var ErrPhaseOutOfOrder error = errors.New("phase built out of order")
