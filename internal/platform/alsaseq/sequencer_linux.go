//go:build linux && cgo

package alsaseq

import (
	"sync"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// Sequencer owns one long-lived ALSA sequencer connection and one locally
// created input port. The Recorder calls it from its constructor and then
// only from its capture goroutine; Subscribe and Unsubscribe serialize on
// mu. SourceEnumerator never uses this connection: it enriches handles on
// its own transient connection.
type Sequencer struct {
	c *conn

	mu         sync.Mutex
	current    contracts.PortHandle
	hasCurrent bool
}

// NewSequencer opens a sequencer connection, creates the local input port,
// and subscribes it to the system announce port. Matches the platform
// dispatch signature used by sdk/recorder's factory.
func NewSequencer(clientName string) (contracts.Sequencer, error) {
	c, err := openConn(clientName)
	if err != nil {
		return nil, err
	}
	return &Sequencer{c: c}, nil
}

func (s *Sequencer) Subscribe(src contracts.PortHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCurrent {
		_ = s.c.unsubscribe(s.current) // best-effort, never fatal
	}
	s.hasCurrent = false

	if !src.IsValid() {
		return nil
	}

	if err := s.c.subscribe(src); err != nil {
		return err
	}
	s.current = src
	s.hasCurrent = true
	return nil
}

func (s *Sequencer) Unsubscribe(src contracts.PortHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.c.unsubscribe(src)
	if s.hasCurrent && s.current.Equal(src) {
		s.hasCurrent = false
	}
	return err
}

func (s *Sequencer) Enrich(h *contracts.PortHandle) {
	s.c.enrich(h)
}

func (s *Sequencer) PollDescriptors() ([]contracts.PollFD, error) {
	return s.c.pollDescriptors()
}

func (s *Sequencer) GetEvent() (contracts.SequencerMsg, bool, error) {
	for {
		raw, ok, err := s.c.getRawEvent()
		if !ok || err != nil {
			return contracts.SequencerMsg{}, false, err
		}

		if bytes, isFrame := decodeMidi(raw); isFrame {
			return contracts.SequencerMsg{Kind: contracts.MsgMidiFrame, Bytes: bytes}, true, nil
		}

		if kind, isAnnounce := decodeAnnounce(raw.eventType); isAnnounce {
			h := contracts.NewPortHandle(raw.addrClient, raw.addrPort)
			return contracts.SequencerMsg{Kind: contracts.MsgAnnounce, AnnounceKind: kind, Addr: h}, true, nil
		}

		// Recognized-but-irrelevant or genuinely unknown event:
		// dropped, keep draining.
	}
}

func (s *Sequencer) Close() error {
	return s.c.close()
}

// SourceEnumerator queries the host sequencer on a transient connection per
// call; it never touches a running Sequencer's connection or subscription.
type SourceEnumerator struct{}

func NewSourceEnumerator() contracts.Enumerator {
	return SourceEnumerator{}
}

func (SourceEnumerator) Enumerate() ([]contracts.PortHandle, error) {
	return enumerateSources()
}
