package contracts

// Recorder is the public surface of the capture engine: the orchestrator
// that owns a Sequencer, a tick clock, and an in-memory SMF buffer, and
// runs one capture goroutine.
type Recorder interface {
	// Start begins capture. A second Start while already running or
	// stopping is a no-op.
	Start() error

	// Stop requests the capture goroutine to exit, waits for it to join,
	// and performs one final save. A Stop while idle is a no-op.
	Stop() error

	// Running reports whether the capture goroutine is active.
	Running() bool

	// Close releases the underlying sequencer connection and the wake
	// descriptor. The Recorder must be stopped first.
	Close() error
}
