package caps

// Platform describes the decode engines available to a session
type Platform struct {
	// VdboxCount is the number of independent decode engines (pipes) on the device
	VdboxCount int
	// ModeSwitchWidth1 and ModeSwitchWidth2 override the built-in resolution thresholds used to
	// choose two pipes and three or more pipes, respectively. Zero keeps the built-in rules.
	ModeSwitchWidth1 int
	ModeSwitchWidth2 int
	// EvenSplit indicates that virtual tiles are split evenly. When false, frames narrower than the
	// first-tile width are kept on a single pipe.
	EvenSplit bool
	// FrontEndSeparateSubmission indicates that the front-end phase is submitted on its own context,
	// so it synchronizes with the first back-end through a software engine signal rather than a
	// hardware semaphore.
	FrontEndSeparateSubmission bool
}
