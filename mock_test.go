package u6fs_test

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/sergevak/u6fs"
)

// mockImage implements the blockDevice interface (io.ReaderAt + io.WriterAt)
// and can be configured to fail every read or write at and beyond a chosen
// byte offset, mirroring the teacher's mockReader (mock_test.go) used to
// inject I/O errors that are otherwise hard to trigger against a real file.
type mockImage struct {
	data []byte

	readErrAt  int64
	readErrMsg error

	writeErrAt  int64
	writeErrMsg error
}

func (m *mockImage) ReadAt(p []byte, off int64) (int, error) {
	if m.readErrMsg != nil && off >= m.readErrAt {
		return 0, m.readErrMsg
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mockImage) WriteAt(p []byte, off int64) (int, error) {
	if m.writeErrMsg != nil && off >= m.writeErrAt {
		return 0, m.writeErrMsg
	}
	n := copy(m.data[off:], p)
	return n, nil
}

// TestCheckReportsReadError drives a real read failure through Check and
// confirms the "CAN NOT READ: BLK n" diagnostic spec.md §7 requires is
// actually emitted, the gap the plain memRWDevice fixture can never
// exercise since it never fails.
func TestCheckReportsReadError(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	probe := reopen(t, dev, true)
	root, err := probe.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	blk := uint32(root.Addr[0])
	if blk == 0 {
		t.Fatalf("root inode has no data block to fail reads on")
	}
	probe.Close()

	mock := &mockImage{
		data:       append([]byte(nil), dev.data...),
		readErrAt:  int64(blk) * u6fs.BlockSize,
		readErrMsg: io.ErrUnexpectedEOF,
	}
	img, err := u6fs.NewImage(mock, true)
	if err != nil {
		t.Fatalf("NewImage: %s", err)
	}
	defer img.Close()

	report, err := u6fs.Check(img, u6fs.WithOutput(discard{}))
	if err != nil {
		t.Fatalf("Check: %s", err)
	}
	want := "CAN NOT READ: BLK " + strconv.Itoa(int(blk))
	if !hasDiagnostic(report.Diagnostics, want) {
		t.Fatalf("expected %q diagnostic, got:\n%s", want, joinLines(report.Diagnostics))
	}
}

// TestCheckReportsWriteError forces the repair path (planting an orphan
// inode in lost+found, which rewrites a lost+found directory block through
// the block cursor) to fail its write, and confirms the cursor-flush
// failure path in Check reports "CAN NOT WRITE: BLK n".
func TestCheckReportsWriteError(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	setup := reopen(t, dev, true)
	lf, err := setup.InodeGet(u6fs.RootIno + 1)
	if err != nil {
		t.Fatalf("InodeGet(lost+found): %s", err)
	}
	blk := uint32(lf.Addr[0])
	if blk == 0 {
		t.Fatalf("lost+found has no data block to fail writes on")
	}

	inum, err := u6fs.AddFile(setup, u6fs.RootIno, "orphan", strings.NewReader(""), u6fs.ModeFREG)
	if err != nil {
		t.Fatalf("AddFile: %s", err)
	}
	root, err := setup.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	removeDirEntry(t, setup, root, "orphan")
	_ = inum
	setup.Close()

	mock := &mockImage{
		data:        append([]byte(nil), dev.data...),
		writeErrAt:  int64(blk) * u6fs.BlockSize,
		writeErrMsg: io.ErrClosedPipe,
	}
	img, err := u6fs.NewImage(mock, true)
	if err != nil {
		t.Fatalf("NewImage: %s", err)
	}
	defer img.Close()

	report, err := u6fs.Check(img, u6fs.WithOutput(discard{}))
	if err != nil {
		t.Fatalf("Check: %s", err)
	}
	want := "CAN NOT WRITE: BLK " + strconv.Itoa(int(blk))
	if !hasDiagnostic(report.Diagnostics, want) {
		t.Fatalf("expected %q diagnostic, got:\n%s", want, joinLines(report.Diagnostics))
	}
}
