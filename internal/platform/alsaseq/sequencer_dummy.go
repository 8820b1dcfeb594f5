//go:build !linux || !cgo

// The ALSA binding needs Linux and cgo. This file keeps the package
// importable from sdk/recorder's platform-dispatch table on every other
// OS and on Linux builds without cgo.
package alsaseq

import (
	"errors"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// ErrUnsupportedPlatform is returned by NewSequencer on any build without
// the cgo ALSA binding.
var ErrUnsupportedPlatform = errors.New("alsaseq: ALSA sequencer requires linux with cgo")

// NewSequencer always fails in this build.
func NewSequencer(clientName string) (contracts.Sequencer, error) {
	return nil, ErrUnsupportedPlatform
}

// NewSourceEnumerator returns an enumerator whose Enumerate always fails.
func NewSourceEnumerator() contracts.Enumerator {
	return dummyEnumerator{}
}

type dummyEnumerator struct{}

func (dummyEnumerator) Enumerate() ([]contracts.PortHandle, error) {
	return nil, ErrUnsupportedPlatform
}
