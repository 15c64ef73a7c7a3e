package u6fs

// dirEntryVisitor is called once per directory entry by the directory
// scanner (spec.md §4.3). It returns the (possibly modified) entry and
// a ScanResult; when the result is Altered, the scanner writes the
// returned entry back through the block cursor.
type dirEntryVisitor func(img *Image, d Dirent) (Dirent, ScanResult)

// scanDirectories walks every data block of dir (a directory inode) in
// DATA mode, feeding each block through scanDirectoryBlock. filesize is
// shared, mutable scan state: scanDirectories sets *filesize = dir.Size
// on entry, so callers that share it across a recursive re-entry must
// save/restore it themselves (spec.md §4.6 requires this of scan_pass2).
func scanDirectories(img *Image, cursor *blockCursor, filesize *uint32, dir *Inode, visit dirEntryVisitor) ScanResult {
	*filesize = dir.Size
	return scanInode(img, dir, ScanData, func(ino *Inode, blk uint32, arg any) ScanResult {
		return scanDirectoryBlock(img, cursor, filesize, blk, visit)
	}, nil)
}

// scanDirectoryBlock walks the up-to-32 entries in one directory data
// block, bounded by *filesize, per spec.md §4.3.
func scanDirectoryBlock(img *Image, cursor *blockCursor, filesize *uint32, blk uint32, visit dirEntryVisitor) ScanResult {
	if !inRange(img.Super.Isize, img.Super.Fsize, blk) {
		deductFilesize(filesize, BlockSize)
		return ScanSkip
	}

	for pos := 0; pos < BlockSize && *filesize > 0; pos += DirentSize {
		if err := cursor.load(blk); err != nil {
			deductFilesize(filesize, uint32(BlockSize-pos))
			return ScanSkip
		}
		d := DirentUnpack(cursor.buf[pos : pos+DirentSize])

		res := callVisit(img, d, visit, cursor, filesize, blk, pos)
		if res.IsStop() {
			return res
		}
		deductFilesize(filesize, DirentSize)
	}

	if *filesize > 0 {
		return ScanKeep
	}
	return ScanStop
}

// callVisit invokes visit and, if the entry was altered, re-fetches the
// block through the cursor (which may have moved during a recursive
// visitor call, e.g. phase 2 descending into a subdirectory) and writes
// the edited entry back. A re-fetch failure drops the edit silently,
// per spec.md §4.3.
func callVisit(img *Image, d Dirent, visit dirEntryVisitor, cursor *blockCursor, filesize *uint32, blk uint32, pos int) ScanResult {
	newD, res := visit(img, d)
	if res.IsAltered() {
		if err := cursor.load(blk); err == nil {
			copy(cursor.buf[pos:pos+DirentSize], DirentPack(newD))
			cursor.markDirty()
		} else {
			res.altered = false
		}
	}
	return res
}

func deductFilesize(filesize *uint32, n uint32) {
	if *filesize < n {
		*filesize = 0
		return
	}
	*filesize -= n
}
