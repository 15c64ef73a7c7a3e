package u6fs

import (
	bitmap "github.com/boljen/go-bitmap"
)

// blockBitmap is a 1-bit-per-block allocation map, backed by
// github.com/boljen/go-bitmap the way dargueta/disko's unixv1 driver
// represents its free-block bitmap, instead of the original's hand
// shifted `char *block_map`.
//
// The checker keeps two of these live at different times (spec.md §3,
// §5): the primary map tracks blocks claimed by inodes across phases
// 1/1b/4; the secondary map is a phase-5-only scratch copy used to
// detect corruption in the on-disk free list without disturbing the
// primary map's bookkeeping.
type blockBitmap struct {
	bm   bitmap.Bitmap
	size int
}

func newBlockBitmap(nblocks uint32) *blockBitmap {
	return &blockBitmap{bm: bitmap.NewSlice(int(nblocks)), size: int(nblocks)}
}

func (b *blockBitmap) isBusy(blk uint32) bool {
	if int(blk) >= b.size {
		return false
	}
	return b.bm.Get(int(blk))
}

func (b *blockBitmap) markBusy(blk uint32) {
	if int(blk) < b.size {
		b.bm.Set(int(blk), true)
	}
}

func (b *blockBitmap) markFree(blk uint32) {
	if int(blk) < b.size {
		b.bm.Set(int(blk), false)
	}
}

// clone copies the bitmap's contents, used at the top of phase 5 to seed
// the secondary map from the primary one.
func (b *blockBitmap) clone() *blockBitmap {
	n := &blockBitmap{bm: bitmap.NewSlice(b.size), size: b.size}
	copy(n.bm, b.bm)
	return n
}
