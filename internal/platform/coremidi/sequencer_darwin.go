//go:build darwin

package coremidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/youpy/go-coremidi"
	"golang.org/x/sys/unix"

	"github.com/keysound/pianorecd/sdk/contracts"
)

var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// queueDepth bounds the callback-to-poll handoff. CoreMIDI delivers
// packets on its own thread; a full queue drops the packet rather than
// blocking that thread.
const queueDepth = 512

// portConnection handles port disconnection.
type portConnection interface {
	Disconnect()
}

// Sequencer adapts CoreMIDI's callback delivery to the poll-driven
// Sequencer contract: the receive callback pushes decoded frames into a
// bounded queue and writes one byte to a pipe, whose read end is the
// poll descriptor. CoreMIDI topology notifications are not surfaced, so
// GetEvent never yields announce messages on Darwin; source selection
// happens at Subscribe time only.
type Sequencer struct {
	client    coremidi.Client
	inputPort coremidi.InputPort

	queue chan contracts.SequencerMsg
	pipeR int
	pipeW int

	mu         sync.Mutex
	portConn   portConnection
	current    contracts.PortHandle
	hasCurrent bool
}

// NewSequencer creates the CoreMIDI client, the local input port, and the
// wake pipe backing PollDescriptors.
func NewSequencer(clientName string) (contracts.Sequencer, error) {
	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, fmt.Errorf("coremidi client: %w", err)
	}

	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, fmt.Errorf("coremidi event pipe: %w", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, fmt.Errorf("coremidi event pipe: %w", err)
		}
	}

	s := &Sequencer{
		client: client,
		queue:  make(chan contracts.SequencerMsg, queueDepth),
		pipeR:  fds[0],
		pipeW:  fds[1],
	}

	s.inputPort, err = coremidi.NewInputPort(client, "input", s.handlePacket)
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	return s, nil
}

// handlePacket runs on CoreMIDI's delivery thread. Packet data is already
// a raw MIDI wire message, so it is copied through verbatim.
func (s *Sequencer) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	if len(packet.Data) == 0 {
		return
	}
	bytes := make([]byte, len(packet.Data))
	copy(bytes, packet.Data)

	select {
	case s.queue <- contracts.SequencerMsg{Kind: contracts.MsgMidiFrame, Bytes: bytes}:
		_, _ = unix.Write(s.pipeW, []byte{1})
	default:
		// Queue full; the packet is lost but the stream stays healthy.
	}
}

// Subscribe connects the input port to the source endpoint addressed by
// src. CoreMIDI sources are flat endpoints, so a handle addresses one as
// (ClientID = enumeration index, PortID = 0).
func (s *Sequencer) Subscribe(src contracts.PortHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.portConn != nil {
		s.portConn.Disconnect() // best-effort, never fatal
		s.portConn = nil
	}
	s.hasCurrent = false

	if !src.IsValid() {
		return nil
	}

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("list MIDI sources: %w", err)
	}
	if src.ClientID >= len(sources) {
		return fmt.Errorf("%w: %s", ErrInvalidMIDIDevice, src.WireAddr())
	}

	conn, err := s.inputPort.Connect(sources[src.ClientID])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	s.portConn = conn
	s.current = src
	s.hasCurrent = true
	return nil
}

func (s *Sequencer) Unsubscribe(src contracts.PortHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCurrent && s.current.Equal(src) && s.portConn != nil {
		s.portConn.Disconnect()
		s.portConn = nil
		s.hasCurrent = false
	}
	return nil
}

func (s *Sequencer) Enrich(h *contracts.PortHandle) {
	sources, err := coremidi.AllSources()
	if err != nil || h.ClientID >= len(sources) {
		return
	}
	fillFromSource(h, sources[h.ClientID])
}

func (s *Sequencer) PollDescriptors() ([]contracts.PollFD, error) {
	return []contracts.PollFD{{FD: int32(s.pipeR), Events: int16(unix.POLLIN)}}, nil
}

func (s *Sequencer) GetEvent() (contracts.SequencerMsg, bool, error) {
	select {
	case msg := <-s.queue:
		var b [1]byte
		_, _ = unix.Read(s.pipeR, b[:])
		return msg, true, nil
	default:
		// Queue empty: clear any leftover wake bytes so poll does not
		// spin on a stale readable pipe.
		var buf [64]byte
		for {
			if _, err := unix.Read(s.pipeR, buf[:]); err != nil {
				break
			}
		}
		return contracts.SequencerMsg{}, false, nil
	}
}

func (s *Sequencer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.portConn != nil {
		s.portConn.Disconnect()
		s.portConn = nil
	}
	unix.Close(s.pipeR)
	unix.Close(s.pipeW)
	return nil
}

// fillFromSource populates descriptive fields from a CoreMIDI endpoint.
// Every enumerable source is subscribable, so the source-capability bit is
// always set.
func fillFromSource(h *contracts.PortHandle, source coremidi.Source) {
	entity := source.Entity()
	h.ClientName = entity.Name()
	h.PortName = source.Name()
	h.CapabilityBits |= contracts.CapSubsWrite
	h.TypeBits |= contracts.TypeMidiGeneric
}

// SourceEnumerator lists CoreMIDI sources as PortHandles, one handle per
// endpoint, addressed by enumeration index.
type SourceEnumerator struct{}

func NewSourceEnumerator() contracts.Enumerator {
	return SourceEnumerator{}
}

func (SourceEnumerator) Enumerate() ([]contracts.PortHandle, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("list MIDI sources: %w", err)
	}

	out := make([]contracts.PortHandle, 0, len(sources))
	for i, source := range sources {
		h := contracts.NewPortHandle(i, 0)
		fillFromSource(&h, source)
		out = append(out, h)
	}
	return out, nil
}
