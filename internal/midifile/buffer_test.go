package midifile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeAndRead(t *testing.T, b *Buffer) *smf.SMF {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, b.Snapshot().WriteFile(path))
	rd, err := smf.ReadFile(path)
	require.NoError(t, err)
	return rd
}

func TestEmptyBufferWritesValidSMF(t *testing.T) {
	rd := writeAndRead(t, New())

	require.NotEmpty(t, rd.Tracks)
	tempos := rd.TempoChanges()
	require.NotEmpty(t, tempos)
	assert.InDelta(t, 120.0, tempos[0].BPM, 0.01)
}

func TestSingleNoteOnAtTickZero(t *testing.T) {
	b := New()
	b.Append(0, 0, []byte{0x90, 0x3C, 0x64})

	rd := writeAndRead(t, b)
	require.Len(t, rd.Tracks, 1)

	var found bool
	var tick uint32
	for _, ev := range rd.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			found = true
			assert.EqualValues(t, 0, ch)
			assert.EqualValues(t, 60, key)
			assert.EqualValues(t, 100, vel)
			assert.EqualValues(t, 0, tick)
		}
	}
	assert.True(t, found, "NoteOn not found in written file")
}

func TestEventsSortedAndDeltaConverted(t *testing.T) {
	b := New()
	// Appended out of tick order; the snapshot sorts before writing.
	b.Append(0, 960, []byte{0x90, 0x40, 0x64})
	b.Append(0, 0, []byte{0x90, 0x3C, 0x64})
	b.Append(0, 1920, []byte{0x80, 0x3C, 0x40})

	rd := writeAndRead(t, b)

	var ticks []uint32
	var keys []uint8
	var tick uint32
	for _, ev := range rd.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel) {
			ticks = append(ticks, tick)
			keys = append(keys, key)
		}
	}
	assert.Equal(t, []uint32{0, 960, 1920}, ticks)
	assert.Equal(t, []uint8{0x3C, 0x40, 0x3C}, keys)
}

func TestStableOrderForEqualTicks(t *testing.T) {
	b := New()
	b.Append(0, 100, []byte{0x90, 0x3C, 0x64})
	b.Append(0, 100, []byte{0x90, 0x3E, 0x64})

	rd := writeAndRead(t, b)

	var keys []uint8
	for _, ev := range rd.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			keys = append(keys, key)
		}
	}
	assert.Equal(t, []uint8{0x3C, 0x3E}, keys)
}

func TestSnapshotIsIndependent(t *testing.T) {
	b := New()
	b.Append(0, 0, []byte{0x90, 0x3C, 0x64})

	snap := b.Snapshot()
	b.Append(0, 960, []byte{0x80, 0x3C, 0x40})

	assert.Equal(t, 1, snap.FrameCount())
	assert.Equal(t, 2, b.Snapshot().FrameCount())
}

func TestAppendCopiesBytes(t *testing.T) {
	b := New()
	frame := []byte{0x90, 0x3C, 0x64}
	b.Append(0, 0, frame)
	frame[1] = 0x00 // caller reuses its slice

	rd := writeAndRead(t, b)
	var found bool
	for _, ev := range rd.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			found = true
			assert.EqualValues(t, 0x3C, key)
		}
	}
	assert.True(t, found)
}

func TestRepeatedWritesProduceValidFiles(t *testing.T) {
	b := New()
	b.Append(0, 0, []byte{0x90, 0x3C, 0x64})

	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, b.Snapshot().WriteFile(path))
	require.NoError(t, b.Snapshot().WriteFile(path))

	rd, err := smf.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, rd.Tracks)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
