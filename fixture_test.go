package u6fs_test

import (
	"io"
	"testing"

	"github.com/sergevak/u6fs"
)

// memWriteSeeker is a trivial growable-buffer io.WriteSeeker, the
// minimum Create needs from a destination; tests read back ws.data
// (or reopen it via u6fs.NewImage) once Create returns.
type memWriteSeeker struct {
	data []byte
	pos  int64
}

func (w *memWriteSeeker) Write(p []byte) (int, error) {
	end := w.pos + int64(len(p))
	if end > int64(len(w.data)) {
		grown := make([]byte, end)
		copy(grown, w.data)
		w.data = grown
	}
	n := copy(w.data[w.pos:], p)
	w.pos += int64(n)
	return n, nil
}

func (w *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		w.pos = offset
	case io.SeekCurrent:
		w.pos += offset
	case io.SeekEnd:
		w.pos = int64(len(w.data)) + offset
	}
	return w.pos, nil
}

// memRWDevice adapts a raw byte slice to the blockDevice interface
// (io.ReaderAt + io.WriterAt) so tests can reopen a snapshot taken
// from memWriteSeeker via u6fs.NewImage, the way a *os.File would be
// reopened against a real image file.
type memRWDevice struct{ data []byte }

func (d *memRWDevice) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *memRWDevice) WriteAt(p []byte, off int64) (int, error) {
	n := copy(d.data[off:], p)
	return n, nil
}

// newFixtureImage builds a minimal valid V6 image via u6fs.Create and
// returns its serialized bytes as a blockDevice a test can reopen (via
// reopen) as many times as it likes, read-only or writable.
func newFixtureImage(t *testing.T, fsize, isize uint32, opts ...u6fs.CreateOption) *memRWDevice {
	t.Helper()
	ws := &memWriteSeeker{}
	if _, err := u6fs.Create(ws, fsize, isize, opts...); err != nil {
		t.Fatalf("Create: %s", err)
	}
	return &memRWDevice{data: ws.data}
}

func reopen(t *testing.T, dev *memRWDevice, writable bool) *u6fs.Image {
	t.Helper()
	img, err := u6fs.NewImage(dev, writable)
	if err != nil {
		t.Fatalf("NewImage: %s", err)
	}
	return img
}
