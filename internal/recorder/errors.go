package recorder

import "errors"

// Decode-level failures (unknown event type, malformed SysEx) are never
// even constructed as errors: they are dropped silently at the point of
// decode, so only the two durable kinds need sentinels here.

// ErrFatal wraps a failure that makes the capture channel itself unusable
// once the Recorder is being built or running: wake descriptor creation,
// poll set assembly, a hard poll error. Sequencer open and port creation
// failures are returned by the platform Sequencer constructor as they are,
// without ErrFatal. Once recorded by the capture goroutine, the Recorder
// transitions to Idle and Start refuses to recover automatically.
var ErrFatal = errors.New("recorder: fatal capture error")

// ErrSaveFailed marks a transient I/O failure in the save protocol:
// logged, never fatal, retried on the next periodic tick.
var ErrSaveFailed = errors.New("recorder: save failed")
