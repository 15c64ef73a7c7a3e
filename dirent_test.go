package u6fs_test

import (
	"testing"

	"github.com/sergevak/u6fs"
)

func TestDirentPackUnpack(t *testing.T) {
	d := u6fs.Dirent{Ino: 42, Name: "foo.txt"}
	buf := u6fs.DirentPack(d)
	if len(buf) != u6fs.DirentSize {
		t.Fatalf("packed length = %d, want %d", len(buf), u6fs.DirentSize)
	}
	got := u6fs.DirentUnpack(buf)
	if got != d {
		t.Fatalf("round trip = %+v, want %+v", got, d)
	}
}

func TestDirentPackTruncatesLongNames(t *testing.T) {
	d := u6fs.Dirent{Ino: 7, Name: "a-name-that-is-far-too-long-for-v6"}
	buf := u6fs.DirentPack(d)
	got := u6fs.DirentUnpack(buf)
	if len(got.Name) != u6fs.MaxNameLen {
		t.Fatalf("unpacked name length = %d, want %d", len(got.Name), u6fs.MaxNameLen)
	}
}

func TestDirentFreeSlotHasZeroIno(t *testing.T) {
	buf := make([]byte, u6fs.DirentSize)
	got := u6fs.DirentUnpack(buf)
	if got.Ino != 0 {
		t.Fatalf("zeroed entry Ino = %d, want 0", got.Ino)
	}
}
