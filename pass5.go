package u6fs

// phase5 implements spec.md §4.9: validate the free-inode cache, then
// walk the on-disk free-block list into a secondary bitmap, checking it
// against the primary bitmap phases 1/1b/4 built.
func (c *Checker) phase5() {
	c.diagf("** Phase 5 - Check Free List")

	c.links = nil
	c.checkFreeInodeList()
	c.states = nil

	c.freeMap = c.blockMap.clone()
	badBlocks, dupBlocks, freeBlocks := c.checkFreeList()

	if badBlocks > 0 {
		c.diagf("%d BAD BLKS IN FREE LIST", badBlocks)
	}
	if dupBlocks > 0 {
		c.diagf("%d DUP BLKS IN FREE LIST", dupBlocks)
	}

	total := c.img.Super.Fsize - c.img.Super.Isize - 2
	if !c.freeListCorrupted && c.usedBlocks+freeBlocks != total {
		c.diagf("%d BLK(S) MISSING", total-c.usedBlocks-freeBlocks)
		c.freeListCorrupted = true
	}
	c.freeBlocks = freeBlocks

	if c.freeListCorrupted {
		c.diagf("BAD FREE LIST")
		if !c.img.Writable {
			c.freeListCorrupted = false
		}
	}
}

// checkFreeInodeList implements check_free_inode_list: every cached
// free-inode slot must actually reference a USTATE inode. A hit truncates
// the in-core cache to the last good prefix (Open Question: the original
// computes "i - 1", which underflows to 65535 when the first slot is
// already bad; this implementation clamps at 0 instead of reproducing
// that underflow).
func (c *Checker) checkFreeInodeList() {
	sb := c.img.Super
	for i := 0; i < int(sb.Ninode); i++ {
		inum := sb.Inode[i]
		if c.states.get(inum) != UState {
			c.diagf("ALLOCATED INODE(S) IN IFREE LIST")
			if c.img.Writable {
				n := i - 1
				if n < 0 {
					n = 0
				}
				sb.Ninode = uint16(n)
				for j := n; j < MaxInode; j++ {
					sb.Inode[j] = 0
				}
				sb.Dirty = true
			}
			return
		}
	}
}

// freeListWalkState names the stages of the explicit state machine
// checkFreeList drives over the on-disk free-block chain, per the
// REDESIGN FLAGS guidance to make the chain-pointer/terminator reading
// explicit rather than relying on the source's `*ap == 0` fallthrough.
type freeListWalkState int

const (
	flReadCount freeListWalkState = iota
	flProcessSlots
	flFollowChain
	flTerminate
)

// checkFreeList implements check_free_list + pass5's per-block callback,
// returning the bad-block count, dup-block count, and total free blocks
// found. The list head lives in the superblock; 100-entry chain blocks
// continue it via slot 0 as the next chain pointer, terminated by 0.
func (c *Checker) checkFreeList() (badBlocks, dupBlocks int, freeBlocks uint32) {
	sb := c.img.Super
	if sb.Nfree == 0 {
		return 0, 0, 0
	}

	nfree := sb.Nfree
	base := sb.Free
	state := flReadCount

	for {
		switch state {
		case flReadCount:
			if nfree == 0 || nfree > MaxFree {
				c.diagf("BAD FREEBLK COUNT")
				c.freeListCorrupted = true
				return badBlocks, dupBlocks, freeBlocks
			}
			state = flProcessSlots

		case flProcessSlots:
			// Slots [1:nfree) are ordinary free blocks; slot 0 is the
			// chain pointer to the next block (or the terminator).
			stop := false
			for i := int(nfree) - 1; i >= 1; i-- {
				res := c.pass5Visit(base[i], &badBlocks, &dupBlocks, &freeBlocks)
				if res == ScanStop {
					stop = true
					break
				}
			}
			if stop {
				return badBlocks, dupBlocks, freeBlocks
			}
			state = flFollowChain

		case flFollowChain:
			chain := base[0]
			if chain == 0 {
				state = flTerminate
				break
			}
			res := c.pass5Visit(chain, &badBlocks, &dupBlocks, &freeBlocks)
			if res != ScanKeep {
				state = flTerminate
				break
			}
			var buf [BlockSize]byte
			if err := c.img.ReadBlock(uint32(chain), buf[:]); err != nil {
				state = flTerminate
				break
			}
			n, list := decodeFreeChain(buf[:])
			nfree = n
			base = list
			state = flReadCount

		case flTerminate:
			return badBlocks, dupBlocks, freeBlocks
		}
	}
}

// pass5Visit classifies one free-list block number against the
// secondary bitmap, per spec.md §4.9.
func (c *Checker) pass5Visit(blk uint16, badBlocks, dupBlocks *int, freeBlocks *uint32) ScanResult {
	b := uint32(blk)
	if !inRange(c.img.Super.Isize, c.img.Super.Fsize, b) {
		c.freeListCorrupted = true
		*badBlocks++
		if *badBlocks >= maxFreeBad {
			c.diagf("EXCESSIVE BAD BLKS IN FREE LIST.")
			return ScanStop
		}
		return ScanSkip
	}
	if c.freeMap.isBusy(b) {
		c.freeListCorrupted = true
		*dupBlocks++
		if *dupBlocks >= maxFreeDup {
			c.diagf("EXCESSIVE DUP BLKS IN FREE LIST.")
			return ScanStop
		}
		return ScanKeep
	}
	*freeBlocks++
	c.freeMap.markBusy(b)
	return ScanKeep
}
