//go:build linux || darwin

package recorder

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/sys/unix"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// fakeSequencer queues messages in memory and exposes a pipe read end as
// its poll descriptor, so the capture loop wakes exactly as it would on a
// live sequencer connection.
type fakeSequencer struct {
	mu      sync.Mutex
	queue   []contracts.SequencerMsg
	subs    []contracts.PortHandle
	pollErr error

	pipeR int
	pipeW int
}

func newFakeSequencer(t *testing.T) *fakeSequencer {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	require.NoError(t, unix.SetNonblock(fds[0], true))
	f := &fakeSequencer{pipeR: fds[0], pipeW: fds[1]}
	t.Cleanup(func() { f.Close() })
	return f
}

func (f *fakeSequencer) push(msg contracts.SequencerMsg) {
	f.mu.Lock()
	f.queue = append(f.queue, msg)
	f.mu.Unlock()
	_, _ = unix.Write(f.pipeW, []byte{1})
}

func (f *fakeSequencer) pushFrame(bytes ...byte) {
	f.push(contracts.SequencerMsg{Kind: contracts.MsgMidiFrame, Bytes: bytes})
}

func (f *fakeSequencer) Subscribe(src contracts.PortHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !src.IsValid() {
		return nil
	}
	f.subs = append(f.subs, src)
	return nil
}

func (f *fakeSequencer) Unsubscribe(src contracts.PortHandle) error { return nil }

func (f *fakeSequencer) Enrich(h *contracts.PortHandle) {}

func (f *fakeSequencer) PollDescriptors() ([]contracts.PollFD, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	return []contracts.PollFD{{FD: int32(f.pipeR), Events: int16(unix.POLLIN)}}, nil
}

func (f *fakeSequencer) GetEvent() (contracts.SequencerMsg, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		var buf [64]byte
		for {
			if _, err := unix.Read(f.pipeR, buf[:]); err != nil {
				break
			}
		}
		return contracts.SequencerMsg{}, false, nil
	}
	msg := f.queue[0]
	f.queue = f.queue[1:]
	return msg, true, nil
}

func (f *fakeSequencer) Close() error {
	unix.Close(f.pipeR)
	unix.Close(f.pipeW)
	return nil
}

func (f *fakeSequencer) subscriptions() []contracts.PortHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contracts.PortHandle(nil), f.subs...)
}

func (f *fakeSequencer) setPollErr(err error) {
	f.mu.Lock()
	f.pollErr = err
	f.mu.Unlock()
	_, _ = unix.Write(f.pipeW, []byte{1})
}

type fakeEnumerator struct {
	mu      sync.Mutex
	sources []contracts.PortHandle
	calls   int
}

func (e *fakeEnumerator) Enumerate() ([]contracts.PortHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return append([]contracts.PortHandle(nil), e.sources...), nil
}

func (e *fakeEnumerator) set(sources ...contracts.PortHandle) {
	e.mu.Lock()
	e.sources = sources
	e.mu.Unlock()
}

func (e *fakeEnumerator) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// nopLogger keeps test output quiet.
type nopLogger struct{}

type nopField struct{}

func (nopField) Bool(string, bool) contracts.Field       { return nopField{} }
func (nopField) Int(string, int) contracts.Field         { return nopField{} }
func (nopField) Float64(string, float64) contracts.Field { return nopField{} }
func (nopField) String(string, string) contracts.Field   { return nopField{} }
func (nopField) Time(string, time.Time) contracts.Field  { return nopField{} }
func (nopField) Int64(string, int64) contracts.Field     { return nopField{} }
func (nopField) Error(string, error) contracts.Field     { return nopField{} }
func (nopField) Uint64(string, uint64) contracts.Field   { return nopField{} }
func (nopField) Uint8(string, uint8) contracts.Field     { return nopField{} }

func (nopLogger) Info(string, ...contracts.Field)                    {}
func (nopLogger) Error(string, ...contracts.Field)                   {}
func (nopLogger) Debug(string, ...contracts.Field)                   {}
func (nopLogger) Warn(string, ...contracts.Field)                    {}
func (nopLogger) Fatal(string, ...contracts.Field)                   {}
func (nopLogger) Field() contracts.Field                             { return nopField{} }
func (nopLogger) SetLevel(contracts.LogLevel)                        {}
func (nopLogger) SetDestination(contracts.LogDestination, ...string) {}

func newTestRecorder(t *testing.T, seq *fakeSequencer, enum *fakeEnumerator, preferred *contracts.PortHandle) (*Recorder, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "session.mid")
	r, err := New(seq, enum, &contracts.RecorderOptions{
		Logger:          nopLogger{},
		PreferredSource: preferred,
		OutputPath:      out,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Stop()
		r.wake.close()
	})
	return r, out
}

func kernelSource(client, port int) contracts.PortHandle {
	h := contracts.NewPortHandle(client, port)
	h.IsKernel = true
	h.TypeBits = contracts.TypeMidiGeneric | contracts.TypeHardware
	h.CapabilityBits = contracts.CapWrite | contracts.CapSubsWrite
	return h
}

func readNotes(t *testing.T, path string) []uint8 {
	t.Helper()
	rd, err := smf.ReadFile(path)
	require.NoError(t, err)
	var keys []uint8
	for _, track := range rd.Tracks {
		for _, ev := range track {
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func TestConstructionSubscribesHighestRankedSource(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	soft := contracts.NewPortHandle(128, 0)
	soft.CapabilityBits = contracts.CapSubsWrite
	hw := kernelSource(24, 0)
	enum.set(soft, hw)

	newTestRecorder(t, seq, enum, nil)

	subs := seq.subscriptions()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Equal(hw), "must pick the kernel MIDI-generic source")
}

func TestPreferredSourceSkipsEnumeration(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	preferred := kernelSource(20, 0)

	newTestRecorder(t, seq, enum, &preferred)

	subs := seq.subscriptions()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Equal(preferred))
	assert.Zero(t, enum.callCount())
}

func TestInvalidPreferredFallsBackToAuto(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	hw := kernelSource(24, 0)
	enum.set(hw)
	invalid := contracts.NewPortHandle(-1, -1)

	newTestRecorder(t, seq, enum, &invalid)

	subs := seq.subscriptions()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Equal(hw))
}

func TestCapturedFramesLandInFile(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, out := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	seq.pushFrame(0x90, 0x3C, 0x64)
	seq.pushFrame(0x90, 0x3E, 0x64)

	require.Eventually(t, func() bool {
		seq.mu.Lock()
		defer seq.mu.Unlock()
		return len(seq.queue) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, r.Stop())

	assert.Equal(t, []uint8{0x3C, 0x3E}, readNotes(t, out))
	_, err := os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err), "no .tmp leftover after save")
}

func TestPortStartAnnounceTriggersResubscribe(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, out := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	require.Empty(t, seq.subscriptions(), "nothing to subscribe to yet")

	// The piano appears: enumeration now finds it, and the announce
	// arrives on the event stream.
	hw := kernelSource(24, 0)
	enum.set(hw)
	seq.push(contracts.SequencerMsg{
		Kind:         contracts.MsgAnnounce,
		AnnounceKind: contracts.AnnouncePortStart,
		Addr:         contracts.NewPortHandle(24, 0),
	})

	require.Eventually(t, func() bool {
		subs := seq.subscriptions()
		return len(subs) == 1 && subs[0].Equal(hw)
	}, time.Second, 5*time.Millisecond)

	seq.pushFrame(0x90, 0x3C, 0x64)
	require.Eventually(t, func() bool {
		seq.mu.Lock()
		defer seq.mu.Unlock()
		return len(seq.queue) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, r.Stop())
	assert.Equal(t, []uint8{0x3C}, readNotes(t, out))
}

func TestNonPortStartAnnouncesDoNotResubscribe(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, _ := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	before := enum.callCount()
	seq.push(contracts.SequencerMsg{
		Kind:         contracts.MsgAnnounce,
		AnnounceKind: contracts.AnnouncePortExit,
		Addr:         contracts.NewPortHandle(24, 0),
	})

	require.Eventually(t, func() bool {
		seq.mu.Lock()
		defer seq.mu.Unlock()
		return len(seq.queue) == 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Stop())

	assert.Equal(t, before, enum.callCount())
}

func TestStartStopIdempotent(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, out := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	require.NoError(t, r.Start()) // second Start is a no-op
	assert.True(t, r.Running())

	require.NoError(t, r.Stop())
	assert.False(t, r.Running())
	require.NoError(t, r.Stop()) // second Stop is a no-op

	// Stop performed a final save even with zero frames.
	_, err := smf.ReadFile(out)
	require.NoError(t, err)
}

func TestStopReturnsPromptly(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, _ := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	time.Sleep(20 * time.Millisecond) // let the loop park in poll

	started := time.Now()
	require.NoError(t, r.Stop())
	assert.Less(t, time.Since(started), 200*time.Millisecond)
}

func TestPeriodicSaveWithoutStop(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, out := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	seq.pushFrame(0x90, 0x3C, 0x64)

	// The auto-save interval is 500 ms; the file must appear without
	// any Stop call.
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, []uint8{0x3C}, readNotes(t, out))
	require.NoError(t, r.Stop())
}

func TestHardPollErrorIsFatal(t *testing.T) {
	seq := newFakeSequencer(t)
	enum := &fakeEnumerator{}
	r, _ := newTestRecorder(t, seq, enum, nil)

	require.NoError(t, r.Start())
	seq.setPollErr(unix.EBADF)

	require.Eventually(t, func() bool {
		return r.Err() != nil
	}, time.Second, 5*time.Millisecond)

	assert.False(t, r.Running())
	assert.ErrorIs(t, r.Err(), ErrFatal)
	assert.Error(t, r.Start(), "Start must refuse after a fatal error")
}
