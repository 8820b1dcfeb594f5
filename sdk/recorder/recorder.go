// Package recorder is the public entry point for the capture engine: a
// single constructor applying functional options, dispatching to a
// platform-specific implementation chosen by runtime.GOOS.
package recorder

import "github.com/keysound/pianorecd/sdk/contracts"

// NewRecorder creates a new Recorder with the specified options, applying
// defaults and dispatching to the host platform's Sequencer
// implementation.
func NewRecorder(opts ...contracts.Option) (contracts.Recorder, error) {
	options := applyDefaultOptions(opts...)
	return newPlatformRecorder(options)
}
