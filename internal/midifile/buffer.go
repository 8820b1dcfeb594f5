// Package midifile is a thin facade over gitlab.com/gomidi/midi/v2/smf:
// an in-memory, append-only multi-track SMF under construction, with a
// snapshot-and-write operation used by the Recorder's save protocol.
package midifile

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution is the fixed PPQ (ticks per quarter note).
const Resolution = 960

// TempoBPM is the fixed session tempo.
const TempoBPM = 120

type rawEvent struct {
	tick  int64
	bytes []byte
}

// Buffer is the live, append-only structure the capture goroutine writes
// into. It is touched only by that one goroutine (including during save),
// so no internal locking is required.
type Buffer struct {
	tracks map[int][]rawEvent
}

// New constructs an empty buffer. Resolution and tempo are fixed at
// construction; a tempo entry is implied at track 0, tick 0 by every
// Snapshot even before the first Append.
func New() *Buffer {
	return &Buffer{tracks: map[int][]rawEvent{0: nil}}
}

// Append adds one raw MIDI frame at an absolute tick. bytes is copied so
// the caller's slice may be reused or mutated afterward.
func (b *Buffer) Append(track int, tick int64, bytes []byte) {
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	b.tracks[track] = append(b.tracks[track], rawEvent{tick: tick, bytes: cp})
}

// Snapshot produces an independent copy of the buffer's contents, suitable
// for writing without freezing the live buffer: the capture goroutine may
// keep appending to Buffer immediately after Snapshot returns.
func (b *Buffer) Snapshot() *Snapshot {
	s := &Snapshot{tracks: make(map[int][]rawEvent, len(b.tracks))}
	for track, events := range b.tracks {
		cp := make([]rawEvent, len(events))
		copy(cp, events)
		s.tracks[track] = cp
	}
	return s
}

// Snapshot is an independent, sortable copy of a Buffer ready for delta-tick
// conversion and serialization.
type Snapshot struct {
	tracks map[int][]rawEvent
}

// FrameCount returns the total number of raw MIDI frames across all tracks
// (excluding the implicit tempo meta event).
func (s *Snapshot) FrameCount() int {
	n := 0
	for _, events := range s.tracks {
		n += len(events)
	}
	return n
}

// WriteFile sorts every track by tick, converts to delta-tick form, and
// writes a format-1 SMF to path.
func (s *Snapshot) WriteFile(path string) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(Resolution)

	trackIDs := make([]int, 0, len(s.tracks))
	for id := range s.tracks {
		trackIDs = append(trackIDs, id)
	}
	sort.Ints(trackIDs)
	if len(trackIDs) == 0 || trackIDs[0] != 0 {
		trackIDs = append([]int{0}, trackIDs...)
	}

	for _, id := range trackIDs {
		events := append([]rawEvent(nil), s.tracks[id]...)
		sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

		var track smf.Track
		var lastTick int64
		if id == 0 {
			track.Add(0, smf.MetaTempo(float64(TempoBPM)))
		}
		for _, ev := range events {
			delta := ev.tick - lastTick
			if delta < 0 {
				delta = 0
			}
			track.Add(uint32(delta), midi.Message(ev.bytes))
			lastTick = ev.tick
		}
		track.Close(0)

		if err := sm.Add(track); err != nil {
			return fmt.Errorf("add track %d: %w", id, err)
		}
	}

	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("write smf %s: %w", path, err)
	}
	return nil
}
