package u6fs_test

import (
	"bytes"
	"testing"

	"github.com/sergevak/u6fs"
)

func TestReadFileRangeAcrossBlocks(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	content := make([]byte, 3*u6fs.BlockSize-10)
	for i := range content {
		content[i] = byte(i % 251)
	}
	inum, err := u6fs.AddFile(img, u6fs.RootIno, "big", bytes.NewReader(content), u6fs.ModeFREG)
	if err != nil {
		t.Fatalf("AddFile: %s", err)
	}
	ino, err := img.InodeGet(inum)
	if err != nil {
		t.Fatalf("InodeGet: %s", err)
	}

	got, err := u6fs.ReadFileRange(img, ino, u6fs.BlockSize-5, 20)
	if err != nil {
		t.Fatalf("ReadFileRange: %s", err)
	}
	want := content[u6fs.BlockSize-5 : u6fs.BlockSize-5+20]
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadFileRange crossing a block boundary returned wrong bytes")
	}
}

func TestReadFileRangePastEOF(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	inum, err := u6fs.AddFile(img, u6fs.RootIno, "small", bytes.NewReader([]byte("hi")), u6fs.ModeFREG)
	if err != nil {
		t.Fatalf("AddFile: %s", err)
	}
	ino, err := img.InodeGet(inum)
	if err != nil {
		t.Fatalf("InodeGet: %s", err)
	}

	got, err := u6fs.ReadFileRange(img, ino, 100, 10)
	if err != nil {
		t.Fatalf("ReadFileRange: %s", err)
	}
	if len(got) != 0 {
		t.Fatalf("ReadFileRange past EOF returned %d bytes, want 0", len(got))
	}
}

func TestListDirEntriesSkipsFreeSlots(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	root, err := img.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	entries := u6fs.ListDirEntries(img, root)
	for _, e := range entries {
		if e.Ino == 0 {
			t.Fatalf("ListDirEntries returned a free slot: %+v", e)
		}
	}
	if len(entries) != 3 { // ".", "..", "lost+found"
		t.Fatalf("root has %d live entries, want 3", len(entries))
	}
}
