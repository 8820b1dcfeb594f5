//go:build linux || darwin

// Package recorder orchestrates capture: it owns a Sequencer, a TickClock,
// and a MidiFileBuffer, and runs one capture goroutine that polls, drains
// events, routes MIDI frames into the buffer, reacts to topology events by
// re-selecting a source, and triggers periodic atomic saves.
package recorder

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/keysound/pianorecd/internal/midifile"
	"github.com/keysound/pianorecd/internal/tickclock"
	"github.com/keysound/pianorecd/sdk/contracts"
)

const (
	pollTimeoutMs    = 50
	autoSaveInterval = 500 * time.Millisecond
)

type state int32

const (
	stateIdle state = iota
	stateRunning
	stateStopping
)

// Recorder implements contracts.Recorder. The capture goroutine exclusively
// owns buf, clock, and the frame/save bookkeeping; the caller goroutine
// only performs Start/Stop/Running and the final save after the join.
type Recorder struct {
	seq        contracts.Sequencer
	enumerator contracts.Enumerator
	logger     contracts.Logger

	preferredSource *contracts.PortHandle
	outputPath      string

	clock *tickclock.TickClock
	buf   *midifile.Buffer

	state         atomic.Int32
	stopRequested atomic.Bool
	fatal         atomic.Value // error
	wake          wakeHandle
	wg            sync.WaitGroup

	lastSave        time.Time
	framesSinceSave int
}

// New constructs a Recorder around an open Sequencer. It initializes the
// MidiFileBuffer and performs one resubscribe pass before returning, so a
// source already present at construction is captured from the first Start.
func New(seq contracts.Sequencer, enumerator contracts.Enumerator, opts *contracts.RecorderOptions) (*Recorder, error) {
	wake, err := newWakeHandle()
	if err != nil {
		return nil, fmt.Errorf("%w: create wake descriptor: %v", ErrFatal, err)
	}

	r := &Recorder{
		seq:             seq,
		enumerator:      enumerator,
		logger:          opts.Logger,
		preferredSource: opts.PreferredSource,
		outputPath:      opts.OutputPath,
		clock:           tickclock.New(),
		buf:             midifile.New(),
		wake:            wake,
	}

	r.doResubscribe()
	return r, nil
}

// Start compare-and-sets Idle to Running and spawns the capture goroutine.
// A second Start while Running or Stopping is a no-op. After a fatal
// capture error, Start refuses with that error until the Recorder is
// rebuilt.
func (r *Recorder) Start() error {
	if err := r.Err(); err != nil {
		return err
	}
	if !r.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		return nil
	}
	r.stopRequested.Store(false)
	r.lastSave = time.Now()
	r.wg.Add(1)
	go r.recordLoop()
	return nil
}

// Stop wakes the capture goroutine, waits for it to join, and performs one
// final save. A Stop while Idle is a no-op.
func (r *Recorder) Stop() error {
	if !r.state.CompareAndSwap(int32(stateRunning), int32(stateStopping)) {
		return nil
	}
	r.stopRequested.Store(true)

	if err := r.wake.signal(); err != nil {
		r.logger.Warn("failed to write wake descriptor", r.logger.Field().Error("error", err))
	}

	r.wg.Wait()
	err := r.save()
	r.stopRequested.Store(false)
	r.state.Store(int32(stateIdle))
	return err
}

// Running reports whether the capture goroutine is active.
func (r *Recorder) Running() bool {
	return state(r.state.Load()) == stateRunning
}

// Err returns the fatal capture error, if any. A non-nil Err means the
// capture channel itself became unusable and the Recorder refuses further
// starts.
func (r *Recorder) Err() error {
	if err, ok := r.fatal.Load().(error); ok {
		return err
	}
	return nil
}

// Close releases the Sequencer and the wake descriptor. Best-effort
// teardown failures are aggregated rather than silently dropped.
func (r *Recorder) Close() error {
	var errs error
	if err := r.seq.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close sequencer: %w", err))
	}
	if err := r.wake.close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close wake descriptor: %w", err))
	}
	return errs
}

func (r *Recorder) recordLoop() {
	defer r.wg.Done()

	for !r.stopRequested.Load() {
		fds, err := r.buildPollSet()
		if err != nil {
			r.dieFatal("cannot assemble poll set", err)
			return
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			r.dieFatal("poll failed", err)
			return
		}

		if n > 0 {
			if fds[0].Revents&unix.POLLIN != 0 {
				r.wake.drain()
			}
			r.drainEvents()
		}

		if time.Since(r.lastSave) >= autoSaveInterval {
			if err := r.save(); err != nil {
				r.logger.Warn("periodic save failed, retrying next tick", r.logger.Field().Error("error", err))
			}
		}
	}
}

// dieFatal records a hard capture error and parks the Recorder back in
// Idle; Start will refuse until the Recorder is rebuilt.
func (r *Recorder) dieFatal(msg string, err error) {
	r.logger.Error("fatal: "+msg, r.logger.Field().Error("error", err))
	r.fatal.Store(fmt.Errorf("%w: %s: %v", ErrFatal, msg, err))
	r.state.Store(int32(stateIdle))
}

func (r *Recorder) buildPollSet() ([]unix.PollFd, error) {
	descriptors, err := r.seq.PollDescriptors()
	if err != nil {
		return nil, err
	}
	fds := make([]unix.PollFd, 0, len(descriptors)+1)
	fds = append(fds, unix.PollFd{Fd: int32(r.wake.readFD()), Events: unix.POLLIN})
	for _, d := range descriptors {
		fds = append(fds, unix.PollFd{Fd: d.FD, Events: d.Events})
	}
	return fds, nil
}

func (r *Recorder) drainEvents() {
	for {
		msg, ok, err := r.seq.GetEvent()
		if err != nil {
			r.logger.Warn("event read error", r.logger.Field().Error("error", err))
			return
		}
		if !ok {
			return
		}

		switch msg.Kind {
		case contracts.MsgMidiFrame:
			tick := r.clock.NowTick()
			r.buf.Append(0, tick, msg.Bytes)
			r.framesSinceSave++

		case contracts.MsgAnnounce:
			addr := msg.Addr
			r.seq.Enrich(&addr)
			r.logger.Info("sequencer announce",
				r.logger.Field().String("kind", msg.AnnounceKind.String()),
				r.logger.Field().String("addr", addr.WireAddr()))
			if msg.AnnounceKind == contracts.AnnouncePortStart {
				r.doResubscribe()
			}
		}
	}
}

// doResubscribe picks the source to record from. It is safe to call
// repeatedly, including while already subscribed to the target:
// Sequencer.Subscribe unsubscribes the current source (best-effort) before
// resubscribing.
func (r *Recorder) doResubscribe() {
	if r.preferredSource != nil && r.preferredSource.IsValid() {
		if err := r.seq.Subscribe(*r.preferredSource); err != nil {
			r.logger.Warn("subscribe to preferred source failed", r.logger.Field().Error("error", err))
		}
		return
	}

	sources, err := r.enumerator.Enumerate()
	if err != nil {
		r.logger.Warn("enumerate sources failed", r.logger.Field().Error("error", err))
		return
	}
	if len(sources) == 0 {
		// The next PortStart announce retries; no error here.
		return
	}

	best := sources[0]
	for _, s := range sources[1:] {
		if s.RankScore() > best.RankScore() {
			best = s
		}
	}
	if err := r.seq.Subscribe(best); err != nil {
		r.logger.Warn("subscribe to auto-selected source failed",
			r.logger.Field().String("source", best.String()),
			r.logger.Field().Error("error", err))
	}
}

// save is the persistence protocol: snapshot, sort and delta-convert,
// write to OutputPath+".tmp", fdatasync best-effort, then rename into
// place. On write failure it logs and aborts without touching OutputPath,
// so at any moment after the first successful save the output is a
// complete, valid SMF.
func (r *Recorder) save() error {
	snap := r.buf.Snapshot()
	tmpPath := r.outputPath + ".tmp"

	if err := snap.WriteFile(tmpPath); err != nil {
		r.logger.Error("save: write temp file failed", r.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	if f, err := os.Open(tmpPath); err == nil {
		syncFile(f) // best-effort
		f.Close()
	}

	if err := os.Rename(tmpPath, r.outputPath); err != nil {
		r.logger.Error("save: rename failed", r.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	if r.framesSinceSave > 0 {
		r.logger.Info("save complete", r.logger.Field().Int("framesWritten", r.framesSinceSave))
		r.framesSinceSave = 0
	}
	r.lastSave = time.Now()
	return nil
}
