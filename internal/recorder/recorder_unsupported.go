//go:build !linux && !darwin

package recorder

import (
	"errors"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// ErrUnsupportedPlatform is returned by New on hosts without a usable
// sequencer transport; the platform dispatch in sdk/recorder normally
// rejects such hosts before this constructor is ever reached.
var ErrUnsupportedPlatform = errors.New("recorder: no sequencer transport on this platform")

// Recorder is a placeholder that keeps the package compiling on platforms
// without poll-based capture support.
type Recorder struct{}

func New(seq contracts.Sequencer, enumerator contracts.Enumerator, opts *contracts.RecorderOptions) (*Recorder, error) {
	return nil, ErrUnsupportedPlatform
}

func (r *Recorder) Start() error  { return ErrUnsupportedPlatform }
func (r *Recorder) Stop() error   { return ErrUnsupportedPlatform }
func (r *Recorder) Running() bool { return false }
func (r *Recorder) Err() error    { return ErrUnsupportedPlatform }
func (r *Recorder) Close() error  { return nil }
