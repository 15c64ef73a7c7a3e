package u6fs

import "fmt"

// phase4 implements spec.md §4.8: resolve every inode's final state,
// reconnecting over- and under-referenced files and clearing whatever
// could not be salvaged.
func (c *Checker) phase4() {
	c.diagf("** Phase 4 - Check Reference Counts")

	for inum := uint16(RootIno); inum <= c.lastAllocatedInode; inum++ {
		switch c.states.get(inum) {
		case FState:
			n := c.links.get(inum)
			if n != 0 {
				c.adjustLinkCount(inum, n)
			} else if c.badLink.contains(inum) {
				c.clearInode(inum, "UNREF")
			}
		case DState:
			c.clearInode(inum, "UNREF")
		case CState:
			c.clearInode(inum, "BAD/DUP")
		}
	}
}

// adjustLinkCount implements adjust_link_count: leftover is the stored
// nlink minus however many directory references phase 2 actually found
// (link_count[inum] is the running remainder, not a delta).
func (c *Checker) adjustLinkCount(inum uint16, leftover int16) {
	ino, err := c.img.InodeGet(inum)
	if err != nil {
		return
	}
	if ino.NLink == leftover {
		if err := c.moveToLostFound(ino); err != nil {
			c.clearInode(inum, "")
		}
		return
	}

	label := ino.kindName()
	if c.lostFoundInode != 0 && inum == c.lostFoundInode {
		label = LostFoundName
	}
	c.diagf("LINK COUNT %s%s COUNT %d SHOULD BE %d", label, ino.String(), ino.NLink, ino.NLink-leftover)
	if c.img.Writable {
		ino.NLink -= leftover
		c.img.InodeSave(ino, true)
	}
}

// clearInode implements clear_inode: free every block the inode still
// owns back into the primary bitmap (removing dup-table claimants
// instead, since another inode still references them) and zero the
// inode on disk.
func (c *Checker) clearInode(inum uint16, msg string) {
	ino, err := c.img.InodeGet(inum)
	if err != nil {
		return
	}
	if msg != "" {
		c.diagf("%s %s%s", msg, ino.kindName(), ino.String())
	}
	if !c.img.Writable {
		return
	}
	c.totalFiles--
	scanInode(c.img, ino, ScanAddr, c.pass4Visit, nil)
	c.img.InodeClear(ino)
	c.img.InodeSave(ino, true)
}

// pass4Visit frees each block ino still claims, per spec.md §4.8: a
// block still recorded in the dup table belongs to another inode too,
// so it is only removed from the table rather than freed.
func (c *Checker) pass4Visit(ino *Inode, blk uint32, arg any) ScanResult {
	if !inRange(c.img.Super.Isize, c.img.Super.Fsize, blk) {
		return ScanSkip
	}
	if !c.blockMap.isBusy(blk) {
		return ScanKeep
	}

	for i, b := range c.dup.live() {
		if uint32(b) == blk {
			c.dup.removeLive(i)
			return ScanKeep
		}
	}
	c.blockMap.markFree(blk)
	c.usedBlocks--
	return ScanKeep
}

// findLostFound locates the lost+found entry directly under root and
// returns its inode number, or 0 if none (find_lost_found); the caller
// caches the result in c.lostFoundInode.
func (c *Checker) findLostFound() uint16 {
	root, err := c.img.InodeGet(RootIno)
	if err != nil {
		return 0
	}
	inum, _ := findEntryByName(c.img, c.cursor, root, LostFoundName)
	return inum
}

// moveToLostFound implements move_to_lost_found: reconnect an orphaned
// inode under lost+found, fixing up its ".." entry and lost+found's own
// link count when the orphan is itself a directory.
func (c *Checker) moveToLostFound(ino *Inode) error {
	c.diagf("UNREF %s%s", ino.kindName(), ino.String())
	if !c.img.Writable {
		return ErrReadOnly
	}

	if c.lostFoundInode == 0 {
		c.lostFoundInode = c.findLostFound()
		if c.lostFoundInode == 0 {
			c.diagf("SORRY. NO lost+found DIRECTORY")
			return ErrNoLostFound
		}
	}

	lf, err := c.img.InodeGet(c.lostFoundInode)
	if err != nil || !lf.IsDir() || c.states.get(c.lostFoundInode) != FState {
		c.diagf("SORRY. NO lost+found DIRECTORY")
		return ErrNoLostFound
	}

	if lf.Size%BlockSize != 0 {
		lf.Size = (lf.Size + BlockSize - 1) / BlockSize * BlockSize
		if err := c.img.InodeSave(lf, true); err != nil {
			c.diagf("SORRY. ERROR WRITING lost+found I-NODE")
			return err
		}
	}

	target := ino.Number
	planted := false
	var filesize uint32
	scanDirectories(c.img, c.cursor, &filesize, lf, func(_ *Image, d Dirent) (Dirent, ScanResult) {
		if d.Ino != 0 {
			return d, ScanKeep
		}
		d.Ino = target
		d.Name = fmt.Sprintf("#%05d", target)
		planted = true
		return d, ScanStop.Altered()
	})
	if !planted {
		c.diagf("SORRY. NO SPACE IN lost+found DIRECTORY")
		return ErrNoSpace
	}
	c.links.dec(target)

	if ino.IsDir() {
		var dsize uint32
		scanDirectories(c.img, c.cursor, &dsize, ino, func(_ *Image, d Dirent) (Dirent, ScanResult) {
			if d.Name == ".." {
				d.Ino = c.lostFoundInode
				return d, ScanStop.Altered()
			}
			return d, ScanKeep
		})
		if lf2, err := c.img.InodeGet(c.lostFoundInode); err == nil {
			lf2.NLink++
			c.links.inc(lf2.Number)
			if err := c.img.InodeSave(lf2, true); err != nil {
				c.diagf("SORRY. ERROR WRITING lost+found I-NODE")
				return err
			}
		}
		c.diagf("DIR I=%d CONNECTED.", target)
	}
	return nil
}
