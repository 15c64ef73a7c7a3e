package u6fs_test

import (
	"bytes"
	"testing"

	"github.com/sergevak/u6fs"
)

func TestCheckRejectsImpossibleGeometry(t *testing.T) {
	ws := &memWriteSeeker{}
	if _, err := u6fs.Create(ws, 200, 4); err != nil {
		t.Fatalf("Create: %s", err)
	}
	dev := &memRWDevice{data: ws.data}
	img, err := u6fs.NewImage(dev, false)
	if err != nil {
		t.Fatalf("NewImage: %s", err)
	}
	defer img.Close()

	img.Super.Isize = img.Super.Fsize - 1 // force isize+2 >= fsize
	if _, err := u6fs.Check(img); err != u6fs.ErrBadSize {
		t.Fatalf("Check with bad geometry: err = %v, want ErrBadSize", err)
	}
}

func TestCheckFatalsOnUnallocatedRoot(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	root, err := img.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	img.InodeClear(root)
	if err := img.InodeSave(root, true); err != nil {
		t.Fatalf("InodeSave: %s", err)
	}

	if _, err := u6fs.Check(img, u6fs.WithOutput(discard{})); err != u6fs.ErrRootUnallocated {
		t.Fatalf("Check with unallocated root: err = %v, want ErrRootUnallocated", err)
	}
}

func TestCheckWithOutputWritesDiagnostics(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, false)
	defer img.Close()

	var buf bytes.Buffer
	if _, err := u6fs.Check(img, u6fs.WithOutput(&buf)); err != nil {
		t.Fatalf("Check: %s", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("WithOutput writer received no output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("Phase 1")) {
		t.Fatalf("output missing phase banner: %q", buf.String())
	}
}
