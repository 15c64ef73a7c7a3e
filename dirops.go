package u6fs

// findEntryByName scans dir's directory blocks for the first live entry
// named name, returning its inode number. Used by phase 3 to resolve ".."
// and by phase 4's lost+found machinery. Mirrors check.c's find_inode: a
// name match only counts when the entry's inode number falls within
// [RootIno, isize*InodesPerBlock] — a match outside that range stops the
// scan (the name was found) but is not reported as a resolved inode.
func findEntryByName(img *Image, cursor *blockCursor, dir *Inode, name string) (uint16, bool) {
	maxInode := img.Super.Isize * InodesPerBlock
	var filesize uint32
	var found uint16
	var ok bool
	scanDirectories(img, cursor, &filesize, dir, func(_ *Image, d Dirent) (Dirent, ScanResult) {
		if d.Ino == 0 || d.Name != name {
			return d, ScanKeep
		}
		if d.Ino >= RootIno && uint32(d.Ino) <= maxInode {
			found = d.Ino
			ok = true
		}
		return d, ScanStop
	})
	return found, ok
}
