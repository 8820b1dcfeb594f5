//go:build !darwin

// Package coremidi adapts Apple's CoreMIDI to the Sequencer contract. On
// every other OS this stub keeps the package importable from sdk/recorder's
// platform-dispatch table.
package coremidi

import (
	"errors"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// ErrUnsupportedPlatform is returned by NewSequencer on any non-Darwin
// host.
var ErrUnsupportedPlatform = errors.New("coremidi: CoreMIDI is only available on darwin")

// NewSequencer always fails outside Darwin.
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
