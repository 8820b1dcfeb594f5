package contracts

// AnnounceKind classifies a topology-change event delivered on the system
// announce port.
type AnnounceKind int

const (
	AnnounceUnknown AnnounceKind = iota
	AnnounceClientStart
	AnnounceClientExit
	AnnouncePortStart
	AnnouncePortExit
	AnnouncePortChange
)

func (k AnnounceKind) String() string {
	switch k {
	case AnnounceClientStart:
		return "ClientStart"
	case AnnounceClientExit:
		return "ClientExit"
	case AnnouncePortStart:
		return "PortStart"
	case AnnouncePortExit:
		return "PortExit"
	case AnnouncePortChange:
		return "PortChange"
	default:
		return "Unknown"
	}
}

// MsgKind discriminates the two variants of SequencerMsg.
type MsgKind int

const (
	MsgMidiFrame MsgKind = iota
	MsgAnnounce
)

// SequencerMsg is the tagged union produced by one decoded sequencer event:
// either a complete, well-formed MIDI wire message, or a topology
// announcement. It is produced per event and consumed/discarded by the
// Recorder; it is never persisted.
type SequencerMsg struct {
	Kind MsgKind

	// Valid when Kind == MsgMidiFrame. A complete MIDI wire message,
	// 1..N bytes: status byte with the channel in the low nibble,
	// followed by the 7-bit data bytes, or a verbatim SysEx payload.
	Bytes []byte

	// Valid when Kind == MsgAnnounce.
	AnnounceKind AnnounceKind
	Addr         PortHandle
}

// PollFD is a platform-neutral readability-poll descriptor, avoiding a
// dependency on golang.org/x/sys/unix from this package's value types.
type PollFD struct {
	FD     int32
	Events int16
}

// Sequencer owns one live sequencer connection and one locally-created
// input port, and maintains at most one active subscription from an
// external source to that port.
type Sequencer interface {
	// Subscribe replaces the current subscription. If src is invalid, it
	// is treated as "no source" and Subscribe succeeds without
	// subscribing. The previous source, if any, is unsubscribed
	// best-effort first.
	Subscribe(src PortHandle) error

	// Unsubscribe is best-effort; it is never fatal.
	Unsubscribe(src PortHandle) error

	// Enrich fills in the cached descriptive fields of h by querying the
	// live connection. Tolerant of partial failure: a failed client-info
	// or port-info lookup leaves only the corresponding fields at their
	// defaults.
	Enrich(h *PortHandle)

	// PollDescriptors returns the OS-level descriptors to wait on for
	// readability.
	PollDescriptors() ([]PollFD, error)

	// GetEvent performs a non-blocking read of one event. ok is false
	// when no event was available; err is non-nil only when the read
	// itself failed. The Recorder logs such an error and keeps capturing.
	GetEvent() (msg SequencerMsg, ok bool, err error)

	// Close releases the sequencer connection and the local input port.
	Close() error
}

// Enumerator queries the host for the set of subscribable source
// PortHandles. Implementations open a transient connection and close it
// before returning; calling Enumerate does not disturb a Sequencer's
// existing subscription.
type Enumerator interface {
	Enumerate() ([]PortHandle, error)
}
