package u6fs_test

import (
	"bytes"
	"testing"

	"github.com/sergevak/u6fs"
)

func TestSnapshotGZipRoundTrip(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, false)
	defer img.Close()

	var snap bytes.Buffer
	if err := u6fs.SnapshotImage(img, &snap, u6fs.SnapGZip); err != nil {
		t.Fatalf("SnapshotImage: %s", err)
	}

	restored, err := u6fs.RestoreSnapshot(&snap, u6fs.SnapGZip, false)
	if err != nil {
		t.Fatalf("RestoreSnapshot: %s", err)
	}
	defer restored.Close()

	if restored.Super.Fsize != img.Super.Fsize || restored.Super.Isize != img.Super.Isize {
		t.Fatalf("restored geometry %d/%d, want %d/%d",
			restored.Super.Fsize, restored.Super.Isize, img.Super.Fsize, img.Super.Isize)
	}

	root, err := restored.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root) on restored image: %s", err)
	}
	if !root.IsDir() {
		t.Fatalf("restored root is not a directory")
	}
}

func TestSnapshotUnregisteredCodec(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, false)
	defer img.Close()

	var buf bytes.Buffer
	if err := u6fs.SnapshotImage(img, &buf, u6fs.SnapZSTD); err == nil {
		t.Fatalf("SnapshotImage with unregistered codec: want error, got nil")
	}
}
