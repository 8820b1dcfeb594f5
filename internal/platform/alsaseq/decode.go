// Package alsaseq binds the host sequencer API: open a connection, create
// a local input port (write + subscribe-write), set the client name,
// enumerate clients/ports, query client/port info, subscribe/unsubscribe
// with time-update flags, obtain poll descriptors, and read events
// non-blocking. The real binding is cgo against libasound on Linux; every
// other OS, and Linux built without cgo, gets a stub constructor that
// fails, mirroring the per-platform package pattern of the rest of the SDK.
package alsaseq

import "github.com/keysound/pianorecd/sdk/contracts"

// Sequencer event type values, mirroring <alsa/seq_event.h>. Kept as plain
// Go constants so the decode table compiles and tests without cgo.
const (
	seqEventNoteOn       = 6
	seqEventNoteOff      = 7
	seqEventKeyPress     = 8
	seqEventController   = 10
	seqEventPgmChange    = 11
	seqEventChanPress    = 12
	seqEventPitchBend    = 13
	seqEventClientStart  = 60
	seqEventClientExit   = 61
	seqEventClientChange = 62
	seqEventPortStart    = 63
	seqEventPortExit     = 64
	seqEventPortChange   = 65
	seqEventSysEx        = 130
)

// rawEvent carries the fields of one snd_seq_event_t that the decode table
// and the announce mapping need. Which fields are meaningful depends on
// eventType; the rest stay zero.
type rawEvent struct {
	eventType  int
	channel    uint8
	note       uint8
	velocity   uint8
	param      uint8
	value      int32
	sysex      []byte
	addrClient int
	addrPort   int
}

// decodeMidi translates a sequencer event into a raw MIDI wire message.
// Event types with no table entry (including key-pressure/aftertouch)
// yield "no frame" and are silently dropped by the caller.
func decodeMidi(raw rawEvent) ([]byte, bool) {
	ch := raw.channel & 0x0F

	switch raw.eventType {
	case seqEventNoteOn:
		return []byte{0x90 | ch, raw.note & 0x7F, raw.velocity & 0x7F}, true

	case seqEventNoteOff:
		return []byte{0x80 | ch, raw.note & 0x7F, raw.velocity & 0x7F}, true

	case seqEventController:
		return []byte{0xB0 | ch, raw.param & 0x7F, uint8(raw.value) & 0x7F}, true

	case seqEventPgmChange:
		return []byte{0xC0 | ch, uint8(raw.value) & 0x7F}, true

	case seqEventChanPress:
		return []byte{0xD0 | ch, uint8(raw.value) & 0x7F}, true

	case seqEventPitchBend:
		v := raw.value
		if v < -8192 {
			v = -8192
		}
		if v > 8191 {
			v = 8191
		}
		pb := uint16(v + 8192)
		return []byte{0xE0 | ch, uint8(pb & 0x7F), uint8((pb >> 7) & 0x7F)}, true

	case seqEventSysEx:
		if len(raw.sysex) == 0 {
			return nil, false
		}
		out := make([]byte, len(raw.sysex))
		copy(out, raw.sysex)
		return out, true

	default:
		return nil, false
	}
}

// decodeAnnounce classifies a topology event. Anything else, including
// SND_SEQ_EVENT_CLIENT_CHANGE and port (un)subscribe notifications, maps
// to Unknown and is dropped.
func decodeAnnounce(eventType int) (contracts.AnnounceKind, bool) {
	switch eventType {
	case seqEventClientStart:
		return contracts.AnnounceClientStart, true
	case seqEventClientExit:
		return contracts.AnnounceClientExit, true
	case seqEventPortStart:
		return contracts.AnnouncePortStart, true
	case seqEventPortExit:
		return contracts.AnnouncePortExit, true
	case seqEventPortChange:
		return contracts.AnnouncePortChange, true
	default:
		return contracts.AnnounceUnknown, false
	}
}
