package u6fs

// blockCursor is the single-slot write-back cache for directory data
// described in spec.md §4.1, mirroring check.c's static buf_data/
// buf_bno/buf_dirty trio, reshaped per spec.md §9 into a field of the
// owning session rather than process-wide storage.
type blockCursor struct {
	img    *Image
	block  uint32
	buf    [BlockSize]byte
	valid  bool // block/buf hold a successfully read block
	dirty  bool
}

func newBlockCursor(img *Image) *blockCursor {
	return &blockCursor{img: img}
}

// load brings block b into the cursor, flushing any pending write
// first. On read failure the cursor is left invalid and the error is
// returned; callers treat this the way scan_directory treats a failed
// buf_get (skip the affected subtree).
func (c *blockCursor) load(b uint32) error {
	if c.valid && c.block == b {
		return nil
	}
	if err := c.flush(); err != nil {
		return err
	}
	if err := c.img.ReadBlock(b, c.buf[:]); err != nil {
		c.valid = false
		return err
	}
	c.block = b
	c.valid = true
	return nil
}

// flush writes the buffer back if dirty and the image is writable.
func (c *blockCursor) flush() error {
	if !c.dirty {
		return nil
	}
	c.dirty = false
	if !c.img.Writable {
		return nil
	}
	return c.img.WriteBlock(c.block, c.buf[:])
}

// markDirty records that the buffer has been edited in place and must
// be flushed before the cursor moves to another block.
func (c *blockCursor) markDirty() { c.dirty = true }
