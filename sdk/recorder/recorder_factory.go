package recorder

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/keysound/pianorecd/internal/platform/alsaseq"
	"github.com/keysound/pianorecd/internal/platform/coremidi"
	internalrec "github.com/keysound/pianorecd/internal/recorder"
	"github.com/keysound/pianorecd/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no sequencer
// transport.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// recorderInitializers maps OS names to corresponding capture transport initializers.
var recorderInitializers = map[string]func(*contracts.RecorderOptions) (contracts.Recorder, error){
	"linux":  newALSARecorder,     // Linux ALSA sequencer transport.
	"darwin": newCoreMIDIRecorder, // macOS (Darwin) CoreMIDI transport.
}

// enumeratorInitializers maps OS names to source enumerators for the same
// transports.
var enumeratorInitializers = map[string]func() contracts.Enumerator{
	"linux":  alsaseq.NewSourceEnumerator,
	"darwin": coremidi.NewSourceEnumerator,
}

// ListSources enumerates the subscribable MIDI sources visible on this
// host, ordered as the transport reports them. Callers rank them with
// PortHandle.RankScore.
func ListSources() ([]contracts.PortHandle, error) {
	if initializer, exists := enumeratorInitializers[runtime.GOOS]; exists {
		return initializer().Enumerate()
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// newPlatformRecorder initializes a Recorder based on the current
// operating system, returning ErrUnsupportedOS if the OS is unsupported.
func newPlatformRecorder(opts contracts.RecorderOptions) (contracts.Recorder, error) {
	if initializer, exists := recorderInitializers[runtime.GOOS]; exists {
		return initializer(&opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

func newALSARecorder(opts *contracts.RecorderOptions) (contracts.Recorder, error) {
	seq, err := alsaseq.NewSequencer(opts.ClientName)
	if err != nil {
		return nil, err
	}
	return internalrec.New(seq, alsaseq.NewSourceEnumerator(), opts)
}

func newCoreMIDIRecorder(opts *contracts.RecorderOptions) (contracts.Recorder, error) {
	seq, err := coremidi.NewSequencer(opts.ClientName)
	if err != nil {
		return nil, err
	}
	return internalrec.New(seq, coremidi.NewSourceEnumerator(), opts)
}
