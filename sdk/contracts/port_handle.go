package contracts

import "fmt"

// Port capability bits, mirroring ALSA's SND_SEQ_PORT_CAP_* flags. Only the
// bits this package inspects are named; the rest pass through untouched in
// CapabilityBits.
const (
	CapRead      uint32 = 1 << 0
	CapWrite     uint32 = 1 << 1
	CapSyncRead  uint32 = 1 << 2
	CapSyncWrite uint32 = 1 << 3
	CapDuplex    uint32 = 1 << 4
	CapSubsRead  uint32 = 1 << 5
	CapSubsWrite uint32 = 1 << 6
	CapNoExport  uint32 = 1 << 7
)

// Port type bits, mirroring ALSA's SND_SEQ_PORT_TYPE_* flags.
const (
	TypeSpecific    uint32 = 1 << 0
	TypeMidiGeneric uint32 = 1 << 1
	TypeMidiGM      uint32 = 1 << 2
	TypeMidiGS      uint32 = 1 << 3
	TypeMidiXG      uint32 = 1 << 4
	TypeMidiMT32    uint32 = 1 << 5
	TypeMidiGM2     uint32 = 1 << 6
	TypeHardware    uint32 = 1 << 16
	TypeSoftware    uint32 = 1 << 17
	TypeSynthesizer uint32 = 1 << 18
	TypePort        uint32 = 1 << 19
	TypeApplication uint32 = 1 << 20
)

const unknownName = "UNKNOWN"

// PortHandle identifies one MIDI endpoint by (client, port) plus cached
// descriptive fields. It is a value type: cheaply copied, compared by
// identity, and enriched in place from a live sequencer connection.
type PortHandle struct {
	ClientID       int
	PortID         int
	ClientName     string
	PortName       string
	CapabilityBits uint32
	TypeBits       uint32
	IsKernel       bool
}

// NewPortHandle builds a handle with descriptive fields left at their
// defaults; callers enrich it via a live connection before use.
func NewPortHandle(clientID, portID int) PortHandle {
	return PortHandle{
		ClientID:   clientID,
		PortID:     portID,
		ClientName: unknownName,
		PortName:   unknownName,
	}
}

// IsValid holds when both IDs are non-negative. Client 0 and port 0 are
// legal ALSA addresses (the system timer lives there), so the bound is
// >= 0, not > 0.
func (h PortHandle) IsValid() bool {
	return h.ClientID >= 0 && h.PortID >= 0
}

// IsSubscribableSource reports whether this port can feed an external
// subscriber, i.e. SND_SEQ_PORT_CAP_SUBS_WRITE is set.
func (h PortHandle) IsSubscribableSource() bool {
	return h.CapabilityBits&CapSubsWrite != 0
}

// RankScore is a pure function of IsKernel and TypeBits: kernel-backed,
// MIDI-generic ports (real hardware) dominate synthesized/software ports.
// Ordering is ascending, so the maximum of a ranked set is most-preferred.
func (h PortHandle) RankScore() int32 {
	var score int32
	if h.IsKernel {
		score += 1000
	}
	if h.TypeBits&TypeMidiGeneric != 0 {
		score += 500
	}
	return score
}

// Equal compares identity only: (ClientID, PortID).
func (h PortHandle) Equal(other PortHandle) bool {
	return h.ClientID == other.ClientID && h.PortID == other.PortID
}

// WireAddr renders the handle as ALSA's "client:port" address form.
func (h PortHandle) WireAddr() string {
	return fmt.Sprintf("%d:%d", h.ClientID, h.PortID)
}

// PortHandleFromWireAddr parses a "client:port" address into an (unenriched)
// PortHandle.
func PortHandleFromWireAddr(s string) (PortHandle, error) {
	var client, port int
	if _, err := fmt.Sscanf(s, "%d:%d", &client, &port); err != nil {
		return PortHandle{}, fmt.Errorf("parse port address %q: %w", s, err)
	}
	return NewPortHandle(client, port), nil
}

// String renders identity, both names, the capability and type bitsets as
// hex numbers, the kernel flag, and the rank score. Individual flag bits
// are not expanded into names.
func (h PortHandle) String() string {
	return fmt.Sprintf("%s (%q/%q) caps=0x%02x types=0x%06x kernel=%t rank=%d",
		h.WireAddr(), h.ClientName, h.PortName, h.CapabilityBits, h.TypeBits, h.IsKernel, h.RankScore())
}
