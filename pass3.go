package u6fs

// phase3 implements spec.md §4.7: for every directory phase 2 never
// reached, walk ".." pointers up toward the root. A broken or cyclic
// chain means the subtree is detached; reconnect it under lost+found.
func (c *Checker) phase3() {
	c.diagf("** Phase 3 - Check Connectivity")

	for inum := uint16(RootIno); inum <= c.lastAllocatedInode; inum++ {
		if c.states.get(inum) != DState {
			continue
		}

		ino := inum
		visited := map[uint16]bool{}
		for {
			if visited[ino] {
				// A ".." chain that revisits an inode cannot reach the
				// root; treat it the same as a missing entry (spec.md
				// §8 scenario D: a self-referential ".." is unreachable).
				c.reconnectDetached(ino)
				break
			}
			visited[ino] = true

			dir, err := c.img.InodeGet(ino)
			if err != nil {
				break
			}
			parent, found := findEntryByName(c.img, c.cursor, dir, "..")
			if !found {
				c.reconnectDetached(ino)
				break
			}
			ino = parent
			if c.states.get(ino) != DState {
				break
			}
		}
	}
}

// reconnectDetached moves the detached directory ino into lost+found and,
// on success, re-walks it with scan_pass2 so its own children are no
// longer considered unreachable.
func (c *Checker) reconnectDetached(ino uint16) {
	dir, err := c.img.InodeGet(ino)
	if err != nil {
		return
	}
	if err := c.moveToLostFound(dir); err == nil {
		c.path = []string{"?"}
		c.scanPass2(ino)
	}
}
