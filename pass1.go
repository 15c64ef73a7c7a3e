package u6fs

// phase1 implements spec.md §4.4: walk every inode in the image table,
// record link counts, classify state, and walk each allocated inode's
// blocks with pass1 to build the primary block bitmap and populate the
// duplicate table.
func (c *Checker) phase1() error {
	c.diagf("** Phase 1 - Check Blocks and Sizes")

	maxInode := c.img.Super.Isize * InodesPerBlock
	for inum := uint16(1); uint32(inum) <= maxInode; inum++ {
		ino, err := c.img.InodeGet(inum)
		if err != nil {
			continue
		}
		if ino.IsAllocated() {
			c.lastAllocatedInode = inum
			c.totalFiles++
			c.links.set(inum, ino.NLink)
			if ino.NLink <= 0 {
				if !c.badLink.add(inum) {
					c.diagf("LINK COUNT TABLE OVERFLOW")
				}
			}

			state := FState
			if ino.IsDir() {
				state = DState
			}
			c.states.set(inum, state)

			c.badBlocksThisInode = 0
			c.dupBlocksThisInode = 0
			scanInode(c.img, ino, ScanAddr, c.pass1Visit, &c.usedBlocks)

			st := c.states.get(inum)
			if (st == DState || st == FState) && ino.IsDir() && ino.Size%DirentSize != 0 {
				c.diagf("DIRECTORY MISALIGNED I=%d", ino.Number)
			}
		} else if ino.Mode != 0 {
			c.diagf("PARTIALLY ALLOCATED INODE I=%d", inum)
			if c.img.Writable {
				c.img.InodeClear(ino)
			}
		}
		c.img.InodeSave(ino, false)
	}
	return nil
}

// pass1Visit is the pass1 block visitor from spec.md §4.4: mark blocks
// busy in the primary bitmap, partition duplicates into the dup table,
// and mark the owning inode CLEAR on any defect.
func (c *Checker) pass1Visit(ino *Inode, blk uint32, arg any) ScanResult {
	if !inRange(c.img.Super.Isize, c.img.Super.Fsize, blk) {
		c.diagf("%d BAD I=%d", blk, ino.Number)
		c.states.set(ino.Number, CState)
		c.badBlocksThisInode++
		if c.badBlocksThisInode >= maxBadBlocks {
			c.diagf("EXCESSIVE BAD BLKS I=%d", ino.Number)
			return ScanStop
		}
		return ScanSkip
	}

	if c.blockMap.isBusy(blk) {
		c.diagf("%d DUP I=%d", blk, ino.Number)
		c.states.set(ino.Number, CState)
		c.dupBlocksThisInode++
		if c.dupBlocksThisInode >= maxDupBlocks {
			c.diagf("EXCESSIVE DUP BLKS I=%d", ino.Number)
			return ScanStop
		}
		if c.dup.full() {
			c.diagf("DUP TABLE OVERFLOW.")
			return ScanStop
		}
		c.dup.add(uint16(blk))
		return ScanKeep
	}

	c.blockMap.markBusy(blk)
	if counter, ok := arg.(*uint32); ok && counter != nil {
		*counter++
	}
	return ScanKeep
}

// phase1b implements spec.md §4.5: if phase 1 found any duplicates,
// re-walk every allocated inode looking for additional claimants of the
// multiply-duplicated blocks.
func (c *Checker) phase1b() {
	if c.dup.end == 0 {
		return
	}
	c.diagf("** Phase 1b - Rescan For More DUPS")
	for inum := uint16(1); inum <= c.lastAllocatedInode; inum++ {
		if c.states.get(inum) == UState {
			continue
		}
		ino, err := c.img.InodeGet(inum)
		if err != nil {
			continue
		}
		if scanInode(c.img, ino, ScanAddr, c.pass1bVisit, nil).IsStop() {
			break
		}
	}
}

// pass1bVisit finds additional claimants of an already-multiply-claimed
// block, per spec.md §4.5.
func (c *Checker) pass1bVisit(ino *Inode, blk uint32, arg any) ScanResult {
	if !inRange(c.img.Super.Isize, c.img.Super.Fsize, blk) {
		return ScanSkip
	}
	prefix := c.dup.prefix()
	for i, b := range prefix {
		if uint32(b) == blk {
			c.diagf("%d DUP I=%d", blk, ino.Number)
			c.states.set(ino.Number, CState)
			c.dup.removeFromPrefix(i)
			if c.dup.multi == 0 {
				return ScanStop
			}
			return ScanKeep
		}
	}
	return ScanKeep
}
