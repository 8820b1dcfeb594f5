//go:build linux && cgo

package alsaseq

/*
#cgo pkg-config: alsa
#include <alsa/asoundlib.h>
#include <poll.h>
#include <stdlib.h>

// snd_seq_port_subscribe_alloca is a macro, so the subscribe descriptor is
// built and consumed entirely on the C side. Per spec the subscription
// carries timestamp-update and real-time-timestamp hints.
static int seq_subscribe(snd_seq_t *seq, int src_client, int src_port, int dst_client, int dst_port) {
	snd_seq_port_subscribe_t *sub;
	snd_seq_addr_t sender, dest;

	snd_seq_port_subscribe_alloca(&sub);
	sender.client = (unsigned char)src_client;
	sender.port = (unsigned char)src_port;
	dest.client = (unsigned char)dst_client;
	dest.port = (unsigned char)dst_port;

	snd_seq_port_subscribe_set_sender(sub, &sender);
	snd_seq_port_subscribe_set_dest(sub, &dest);
	snd_seq_port_subscribe_set_time_update(sub, 1);
	snd_seq_port_subscribe_set_time_real(sub, 1);

	return snd_seq_subscribe_port(seq, sub);
}

static int seq_unsubscribe(snd_seq_t *seq, int src_client, int src_port, int dst_client, int dst_port) {
	snd_seq_port_subscribe_t *sub;
	snd_seq_addr_t sender, dest;

	snd_seq_port_subscribe_alloca(&sub);
	sender.client = (unsigned char)src_client;
	sender.port = (unsigned char)src_port;
	dest.client = (unsigned char)dst_client;
	dest.port = (unsigned char)dst_port;

	snd_seq_port_subscribe_set_sender(sub, &sender);
	snd_seq_port_subscribe_set_dest(sub, &dest);

	return snd_seq_unsubscribe_port(seq, sub);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// ALSA announce-port address: client 0 is the kernel, port 1 is the system
// announce port (SNDRV_SEQ_PORT_SYSTEM_ANNOUNCE); port 0 is the system
// timer.
const (
	systemClient       = 0
	systemAnnouncePort = 1
)

type conn struct {
	handle *C.snd_seq_t
	port   C.int
}

func openConn(clientName string) (*conn, error) {
	var handle *C.snd_seq_t
	cName := C.CString("default")
	defer C.free(unsafe.Pointer(cName))

	if rc := C.snd_seq_open(&handle, cName, C.SND_SEQ_OPEN_DUPLEX, 0); rc < 0 {
		return nil, fmt.Errorf("snd_seq_open: %s", C.GoString(C.snd_strerror(rc)))
	}

	cClientName := C.CString(clientName)
	defer C.free(unsafe.Pointer(cClientName))
	C.snd_seq_set_client_name(handle, cClientName)

	if rc := C.snd_seq_nonblock(handle, 1); rc < 0 {
		C.snd_seq_close(handle)
		return nil, fmt.Errorf("snd_seq_nonblock: %s", C.GoString(C.snd_strerror(rc)))
	}

	cPortName := C.CString("input")
	defer C.free(unsafe.Pointer(cPortName))
	port := C.snd_seq_create_simple_port(handle, cPortName,
		C.SND_SEQ_PORT_CAP_WRITE|C.SND_SEQ_PORT_CAP_SUBS_WRITE,
		C.SND_SEQ_PORT_TYPE_MIDI_GENERIC|C.SND_SEQ_PORT_TYPE_APPLICATION)
	if port < 0 {
		C.snd_seq_close(handle)
		return nil, fmt.Errorf("snd_seq_create_simple_port: %s", C.GoString(C.snd_strerror(port)))
	}

	c := &conn{handle: handle, port: port}

	ourClient := C.snd_seq_client_id(handle)
	if rc := C.seq_subscribe(handle, C.int(systemClient), C.int(systemAnnouncePort), ourClient, port); rc < 0 {
		// Non-fatal: loss of announce delivery degrades hot-plug
		// detection to the next do_resubscribe call, it does not
		// break capture of an already-subscribed source.
	}

	return c, nil
}

func (c *conn) ourClientID() int {
	return int(C.snd_seq_client_id(c.handle))
}

func (c *conn) close() error {
	if rc := C.snd_seq_close(c.handle); rc < 0 {
		return fmt.Errorf("snd_seq_close: %s", C.GoString(C.snd_strerror(rc)))
	}
	return nil
}

func (c *conn) subscribe(src contracts.PortHandle) error {
	rc := C.seq_subscribe(c.handle, C.int(src.ClientID), C.int(src.PortID), C.int(c.ourClientID()), c.port)
	if rc < 0 {
		return fmt.Errorf("snd_seq_subscribe_port %s: %s", src.WireAddr(), C.GoString(C.snd_strerror(rc)))
	}
	return nil
}

func (c *conn) unsubscribe(src contracts.PortHandle) error {
	rc := C.seq_unsubscribe(c.handle, C.int(src.ClientID), C.int(src.PortID), C.int(c.ourClientID()), c.port)
	if rc < 0 {
		return fmt.Errorf("snd_seq_unsubscribe_port %s: %s", src.WireAddr(), C.GoString(C.snd_strerror(rc)))
	}
	return nil
}

// pollDescriptors asks ALSA for this connection's readability descriptors.
func (c *conn) pollDescriptors() ([]contracts.PollFD, error) {
	n := C.snd_seq_poll_descriptors_count(c.handle, C.short(unix.POLLIN))
	if n <= 0 {
		return nil, nil
	}
	fds := make([]C.struct_pollfd, n)
	got := C.snd_seq_poll_descriptors(c.handle, &fds[0], C.uint(n), C.short(unix.POLLIN))
	out := make([]contracts.PollFD, 0, got)
	for i := 0; i < int(got); i++ {
		out = append(out, contracts.PollFD{FD: int32(fds[i].fd), Events: int16(fds[i].events)})
	}
	return out, nil
}

// getRawEvent performs one non-blocking snd_seq_event_input call. ok is
// false when no event is currently queued.
func (c *conn) getRawEvent() (ev rawEvent, ok bool, err error) {
	var cev *C.snd_seq_event_t
	rc := C.snd_seq_event_input(c.handle, &cev)
	if rc == -C.EAGAIN || rc == -C.ENOSPC {
		// ENOSPC means the kernel FIFO overflowed and was cleared;
		// events were lost but the stream itself is still healthy.
		return rawEvent{}, false, nil
	}
	if rc < 0 {
		return rawEvent{}, false, fmt.Errorf("snd_seq_event_input: %s", C.GoString(C.snd_strerror(C.int(rc))))
	}
	if cev == nil {
		return rawEvent{}, false, nil
	}

	ev.eventType = int(cev._type)

	// cev.data is a C union; exactly one overlay below is meaningful per
	// event type.
	note := (*C.snd_seq_ev_note_t)(unsafe.Pointer(&cev.data))
	ctrl := (*C.snd_seq_ev_ctrl_t)(unsafe.Pointer(&cev.data))
	addr := (*C.snd_seq_addr_t)(unsafe.Pointer(&cev.data))
	ext := (*C.snd_seq_ev_ext_t)(unsafe.Pointer(&cev.data))

	switch ev.eventType {
	case seqEventNoteOn, seqEventNoteOff, seqEventKeyPress:
		ev.channel = uint8(note.channel)
		ev.note = uint8(note.note)
		ev.velocity = uint8(note.velocity)
	case seqEventController:
		ev.channel = uint8(ctrl.channel)
		ev.param = uint8(ctrl.param)
		ev.value = int32(ctrl.value)
	case seqEventPgmChange, seqEventChanPress, seqEventPitchBend:
		ev.channel = uint8(ctrl.channel)
		ev.value = int32(ctrl.value)
	case seqEventSysEx:
		if ext.len > 0 && ext.ptr != nil {
			ev.sysex = C.GoBytes(ext.ptr, C.int(ext.len))
		}
	case seqEventClientStart, seqEventClientExit, seqEventClientChange:
		ev.addrClient = int(addr.client)
	case seqEventPortStart, seqEventPortExit, seqEventPortChange:
		ev.addrClient = int(addr.client)
		ev.addrPort = int(addr.port)
	}

	ok = true
	return ev, ok, nil
}

// enrich queries client and port info for h, independently: a failed
// client-info or port-info lookup leaves only the corresponding fields at
// their "UNKNOWN" defaults.
func (c *conn) enrich(h *contracts.PortHandle) {
	var clientInfo *C.snd_seq_client_info_t
	if C.snd_seq_client_info_malloc(&clientInfo) >= 0 {
		if C.snd_seq_get_any_client_info(c.handle, C.int(h.ClientID), clientInfo) >= 0 {
			h.ClientName = C.GoString(C.snd_seq_client_info_get_name(clientInfo))
			h.IsKernel = C.snd_seq_client_info_get_type(clientInfo) == C.SND_SEQ_KERNEL_CLIENT
		}
		C.snd_seq_client_info_free(clientInfo)
	}

	var portInfo *C.snd_seq_port_info_t
	if C.snd_seq_port_info_malloc(&portInfo) >= 0 {
		if C.snd_seq_get_any_port_info(c.handle, C.int(h.ClientID), C.int(h.PortID), portInfo) >= 0 {
			h.PortName = C.GoString(C.snd_seq_port_info_get_name(portInfo))
			h.CapabilityBits = uint32(C.snd_seq_port_info_get_capability(portInfo))
			h.TypeBits = uint32(C.snd_seq_port_info_get_type(portInfo))
		}
		C.snd_seq_port_info_free(portInfo)
	}
}

// enumerateSources walks every client and every port of each client on a
// transient connection, keeping only subscribable sources. The connection
// is closed before returning so enumeration never disturbs a live
// Sequencer.
func enumerateSources() ([]contracts.PortHandle, error) {
	var handle *C.snd_seq_t
	cName := C.CString("default")
	defer C.free(unsafe.Pointer(cName))
	if rc := C.snd_seq_open(&handle, cName, C.SND_SEQ_OPEN_DUPLEX, 0); rc < 0 {
		return nil, fmt.Errorf("snd_seq_open: %s", C.GoString(C.snd_strerror(rc)))
	}
	defer C.snd_seq_close(handle)

	c := &conn{handle: handle}

	var clientInfo *C.snd_seq_client_info_t
	if rc := C.snd_seq_client_info_malloc(&clientInfo); rc < 0 {
		return nil, fmt.Errorf("snd_seq_client_info_malloc: %s", C.GoString(C.snd_strerror(rc)))
	}
	defer C.snd_seq_client_info_free(clientInfo)

	var portInfo *C.snd_seq_port_info_t
	if rc := C.snd_seq_port_info_malloc(&portInfo); rc < 0 {
		return nil, fmt.Errorf("snd_seq_port_info_malloc: %s", C.GoString(C.snd_strerror(rc)))
	}
	defer C.snd_seq_port_info_free(portInfo)

	C.snd_seq_client_info_set_client(clientInfo, -1)

	var out []contracts.PortHandle
	for C.snd_seq_query_next_client(handle, clientInfo) >= 0 {
		clientID := int(C.snd_seq_client_info_get_client(clientInfo))

		C.snd_seq_port_info_set_client(portInfo, C.int(clientID))
		C.snd_seq_port_info_set_port(portInfo, -1)
		for C.snd_seq_query_next_port(handle, portInfo) >= 0 {
			portID := int(C.snd_seq_port_info_get_port(portInfo))
			h := contracts.NewPortHandle(clientID, portID)
			c.enrich(&h)
			if h.IsSubscribableSource() {
				out = append(out, h)
			}
		}
	}
	return out, nil
}
