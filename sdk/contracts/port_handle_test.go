package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortHandleValidity(t *testing.T) {
	tests := []struct {
		name   string
		client int
		port   int
		valid  bool
	}{
		{"regular hardware address", 24, 0, true},
		{"client zero port zero is legal", 0, 0, true},
		{"negative client", -1, 0, false},
		{"negative port", 24, -1, false},
		{"both negative", -1, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, NewPortHandle(tt.client, tt.port).IsValid())
		})
	}
}

func TestPortHandleDefaultsUnknown(t *testing.T) {
	h := NewPortHandle(24, 0)
	assert.Equal(t, "UNKNOWN", h.ClientName)
	assert.Equal(t, "UNKNOWN", h.PortName)
	assert.False(t, h.IsSubscribableSource())
}

func TestRankOrdering(t *testing.T) {
	kernelGeneric := PortHandle{IsKernel: true, TypeBits: TypeMidiGeneric}
	kernelOnly := PortHandle{IsKernel: true}
	genericOnly := PortHandle{TypeBits: TypeMidiGeneric}
	neither := PortHandle{}

	assert.Greater(t, kernelGeneric.RankScore(), kernelOnly.RankScore())
	assert.Greater(t, kernelOnly.RankScore(), genericOnly.RankScore())
	assert.Greater(t, genericOnly.RankScore(), neither.RankScore())
	assert.EqualValues(t, 1500, kernelGeneric.RankScore())
	assert.EqualValues(t, 0, neither.RankScore())
}

func TestRankScoreIgnoresOtherTypeBits(t *testing.T) {
	h := PortHandle{TypeBits: TypeHardware | TypeSynthesizer}
	assert.EqualValues(t, 0, h.RankScore())
}

func TestIsSubscribableSource(t *testing.T) {
	h := NewPortHandle(24, 0)
	h.CapabilityBits = CapWrite | CapSubsWrite
	assert.True(t, h.IsSubscribableSource())

	h.CapabilityBits = CapRead | CapSubsRead
	assert.False(t, h.IsSubscribableSource())
}

func TestWireAddrRoundTrip(t *testing.T) {
	h := NewPortHandle(128, 3)
	parsed, err := PortHandleFromWireAddr(h.WireAddr())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(h))
}

func TestPortHandleFromWireAddrRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "piano", "1:", "x:y"} {
		_, err := PortHandleFromWireAddr(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestEqualComparesIdentityOnly(t *testing.T) {
	a := NewPortHandle(24, 0)
	b := NewPortHandle(24, 0)
	b.ClientName = "CASIO USB-MIDI"
	b.CapabilityBits = CapSubsWrite
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewPortHandle(24, 1)))
}

func TestStringIncludesNamesAndAddress(t *testing.T) {
	h := NewPortHandle(24, 0)
	h.ClientName = "CASIO USB-MIDI"
	h.PortName = "CASIO USB-MIDI MIDI 1"
	s := h.String()
	assert.Contains(t, s, "24:0")
	assert.Contains(t, s, "CASIO USB-MIDI")
	assert.Contains(t, s, "CASIO USB-MIDI MIDI 1")
}
