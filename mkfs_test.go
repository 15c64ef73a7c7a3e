package u6fs_test

import (
	"testing"

	"github.com/sergevak/u6fs"
)

func TestCreateProducesCleanImage(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, false)
	defer img.Close()

	root, err := img.InodeGet(u6fs.RootIno)
	if err != nil {
		t.Fatalf("InodeGet(root): %s", err)
	}
	if !root.IsDir() {
		t.Fatalf("root is not a directory: mode=%o", root.Mode)
	}
	if root.NLink != 3 { // ".", "..", and lost+found's ".."
		t.Fatalf("root nlink = %d, want 3", root.NLink)
	}

	report, err := u6fs.Check(img, u6fs.WithOutput(discard{}))
	if err != nil {
		t.Fatalf("Check: %s", err)
	}
	if report.Modified {
		t.Fatalf("freshly created image reported modified:\n%s", joinLines(report.Diagnostics))
	}
	if report.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2 (root + lost+found)", report.TotalFiles)
	}
}

func TestCreateRejectsImpossibleGeometry(t *testing.T) {
	ws := &memWriteSeeker{}
	_, err := u6fs.Create(ws, 4, 4)
	if err != u6fs.ErrBadSize {
		t.Fatalf("Create with isize+2>=fsize: err = %v, want ErrBadSize", err)
	}
}

func TestCreateThreadsFreeList(t *testing.T) {
	dev := newFixtureImage(t, 200, 4)
	img := reopen(t, dev, true)
	defer img.Close()

	if img.Super.Nfree == 0 {
		t.Fatalf("Super.Nfree = 0, want a threaded free list")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func joinLines(lines []string) string {
	s := ""
	for _, l := range lines {
		s += l + "\n"
	}
	return s
}
