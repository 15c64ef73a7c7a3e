package u6fs_test

import (
	"bytes"
	"testing"

	"github.com/sergevak/u6fs"
)

func TestAddFileThenExtractFileRoundTrip(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	want := bytes.Repeat([]byte("hello world\n"), 50) // spans multiple blocks
	inum, err := u6fs.AddFile(img, u6fs.RootIno, "greeting", bytes.NewReader(want), u6fs.ModeFREG)
	if err != nil {
		t.Fatalf("AddFile: %s", err)
	}

	got, ok := u6fs.FindDirEntry(img, mustRoot(t, img), "greeting")
	if !ok || got != inum {
		t.Fatalf("FindDirEntry(greeting) = (%d, %v), want (%d, true)", got, ok, inum)
	}

	var buf bytes.Buffer
	if err := u6fs.ExtractFile(img, inum, &buf); err != nil {
		t.Fatalf("ExtractFile: %s", err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("extracted %d bytes, want %d bytes matching the original", buf.Len(), len(want))
	}
}

func TestAddFileRejectsReadOnlyImage(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, false)
	defer img.Close()

	_, err := u6fs.AddFile(img, u6fs.RootIno, "x", bytes.NewReader(nil), u6fs.ModeFREG)
	if err != u6fs.ErrReadOnly {
		t.Fatalf("AddFile on read-only image: err = %v, want ErrReadOnly", err)
	}
}

func TestExtractFileRejectsDevice(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	inum, err := u6fs.AddFile(img, u6fs.RootIno, "dev", bytes.NewReader(nil), u6fs.ModeFCHR|u6fs.ModeAlloc)
	if err != nil {
		t.Fatalf("AddFile(device): %s", err)
	}
	var buf bytes.Buffer
	if err := u6fs.ExtractFile(img, inum, &buf); err != u6fs.ErrNotFound {
		t.Fatalf("ExtractFile(device): err = %v, want ErrNotFound", err)
	}
}

func mustRoot(t *testing.T, img *u6fs.Image) *u6fs.Inode {
	t.Helper()
	root, err := img.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	return root
}
