package u6fs

// phase2 implements spec.md §4.6: starting from the root inode, walk
// every reachable directory, decrementing link_count for each entry
// found and recursing into subdirectories.
func (c *Checker) phase2() error {
	c.diagf("** Phase 2 - Check Pathnames")

	switch c.states.get(RootIno) {
	case UState:
		c.diagf("ROOT INODE UNALLOCATED. TERMINATING.")
		return ErrRootUnallocated
	case FState:
		c.diagf("ROOT INODE NOT DIRECTORY")
		if !c.img.Writable {
			return ErrRootUnallocated
		}
		root, err := c.img.InodeGet(RootIno)
		if err != nil {
			return ErrRootUnallocated
		}
		root.Mode = (root.Mode &^ ModeFMT) | ModeFDIR
		c.img.InodeSave(root, true)
		c.states.set(RootIno, DState)
	case CState:
		c.diagf("DUPS/BAD IN ROOT INODE")
		c.states.set(RootIno, DState)
	}

	c.path = c.path[:0]
	c.scanPass2(RootIno)
	return nil
}

// scanPass2 walks one directory's entries, per spec.md §4.6. It saves and
// restores the shared filesize accumulator around its own scan, since
// scanDirectories overwrites c.filesize with this directory's size; the
// path push/pop below mirrors the "save and restore the name
// accumulator" requirement.
func (c *Checker) scanPass2(inum uint16) {
	c.states.set(inum, FState)
	ino, err := c.img.InodeGet(inum)
	if err != nil {
		return
	}

	c.pushPath("/")
	savedFilesize := c.filesize
	scanDirectories(c.img, c.cursor, &c.filesize, ino, c.pass2Visit)
	c.filesize = savedFilesize
	c.popPath()
}

// pass2Visit is the pass2 directory-entry visitor from spec.md §4.6.
func (c *Checker) pass2Visit(img *Image, d Dirent) (Dirent, ScanResult) {
	return c.pass2VisitDepth(img, d, 0)
}

// pass2VisitDepth mirrors check.c's pass2: the entry's own name is copied
// onto the path accumulator once, kept pushed across the entire switch
// (including a recursive re-dispatch on a freshly-resolved CState, and the
// recursive scan_pass2 descent into a subdirectory), and popped exactly
// once just before returning — so a diagnostic fired from anywhere below,
// however deep, sees the full accumulated path.
func (c *Checker) pass2VisitDepth(img *Image, d Dirent, depth int) (Dirent, ScanResult) {
	if d.Ino == 0 {
		return d, ScanKeep
	}

	if depth == 0 {
		c.pushPath(d.Name)
		defer c.popPath()
	}

	maxInode := img.Super.Isize * InodesPerBlock
	if d.Ino < RootIno || uint32(d.Ino) > maxInode {
		c.diagf("I OUT OF RANGE I=%d NAME=%s", d.Ino, c.pathString())
		return d, ScanKeep
	}

	switch c.states.get(d.Ino) {
	case UState:
		c.diagf("UNALLOCATED I=%d NAME=%s", d.Ino, c.pathString())
		if img.Writable {
			d.Ino = 0
			return d, ScanKeep.Altered()
		}
		return d, ScanKeep

	case CState:
		c.diagf("DUP/BAD I=%d NAME=%s", d.Ino, c.pathString())
		if img.Writable {
			d.Ino = 0
			return d, ScanKeep.Altered()
		}
		if depth >= 1 {
			// Bound the re-dispatch depth at 1 (REDESIGN FLAGS): an
			// inode whose demoted state is itself CLEAR again is left
			// alone rather than re-entering indefinitely.
			return d, ScanKeep
		}
		target, err := img.InodeGet(d.Ino)
		if err != nil {
			return d, ScanKeep
		}
		if target.IsDir() {
			c.states.set(d.Ino, DState)
		} else {
			c.states.set(d.Ino, FState)
		}
		return c.pass2VisitDepth(img, d, depth+1)

	case FState:
		c.links.dec(d.Ino)
		return d, ScanKeep

	case DState:
		c.links.dec(d.Ino)
		c.scanPass2(d.Ino)
		return d, ScanKeep
	}

	return d, ScanKeep
}
