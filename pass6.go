package u6fs

// phase6 implements spec.md §4.10 (make_free_list): rebuild the
// superblock's free-block list from scratch using the primary bitmap as
// the sole source of truth, since the on-disk list itself was found
// corrupted in phase 5.
func (c *Checker) phase6() {
	c.diagf("** Phase 6 - Salvage Free List")

	sb := c.img.Super
	sb.Nfree = 0
	sb.Flock = false
	sb.Fmod = false
	sb.Ilock = false
	sb.Ronly = false
	sb.Dirty = true

	var free uint32
	c.img.BlockFree(0)
	for b := sb.Fsize - 1; b >= sb.Isize+2; b-- {
		if c.blockMap.isBusy(b) {
			continue
		}
		free++
		if err := c.img.BlockFree(uint16(b)); err != nil {
			break
		}
	}
	c.freeBlocks = free
}
