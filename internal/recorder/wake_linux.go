//go:build linux

package recorder

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/unix"
)

// wakeHandle is an eventfd: a single descriptor that any goroutine may
// write to break an in-flight poll in the capture goroutine.
type wakeHandle struct {
	fd int
}

func newWakeHandle() (wakeHandle, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return wakeHandle{}, err
	}
	return wakeHandle{fd: fd}, nil
}

func (w wakeHandle) readFD() int {
	return w.fd
}

func (w wakeHandle) signal() error {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	_, err := unix.Write(w.fd, one[:])
	return err
}

func (w wakeHandle) drain() {
	var buf [8]byte
	for {
		if _, err := unix.Read(w.fd, buf[:]); err != nil {
			return
		}
	}
}

func (w wakeHandle) close() error {
	return unix.Close(w.fd)
}

// syncFile flushes file data to stable storage ahead of the rename that
// publishes a snapshot.
func syncFile(f *os.File) {
	_ = unix.Fdatasync(int(f.Fd()))
}
