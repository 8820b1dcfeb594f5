//go:build darwin

package recorder

import (
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// wakeHandle is a non-blocking pipe: Darwin has no eventfd, so the wake
// descriptor is the pipe's read end and writers push single bytes into the
// write end.
type wakeHandle struct {
	r, w int
}

func newWakeHandle() (wakeHandle, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return wakeHandle{}, err
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return wakeHandle{}, err
		}
	}
	return wakeHandle{r: fds[0], w: fds[1]}, nil
}

func (w wakeHandle) readFD() int {
	return w.r
}

func (w wakeHandle) signal() error {
	_, err := unix.Write(w.w, []byte{1})
	return err
}

func (w wakeHandle) drain() {
	var buf [64]byte
	for {
		if _, err := unix.Read(w.r, buf[:]); err != nil {
			return
		}
	}
}

func (w wakeHandle) close() error {
	return multierr.Append(unix.Close(w.r), unix.Close(w.w))
}

// syncFile flushes file data to stable storage ahead of the rename that
// publishes a snapshot. Darwin has no fdatasync; fsync is the closest
// equivalent.
func syncFile(f *os.File) {
	_ = unix.Fsync(int(f.Fd()))
}
