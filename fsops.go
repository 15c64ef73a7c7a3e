package u6fs

// FindDirEntry resolves name within dir, for external consumers (the
// FUSE bridge) that only need a one-shot lookup rather than a full
// directory walk.
func FindDirEntry(img *Image, dir *Inode, name string) (uint16, bool) {
	cursor := newBlockCursor(img)
	return findEntryByName(img, cursor, dir, name)
}

// ListDirEntries returns every live (Ino != 0) entry in dir, in on-disk
// order, for the FUSE bridge's Readdir.
func ListDirEntries(img *Image, dir *Inode) []Dirent {
	cursor := newBlockCursor(img)
	var out []Dirent
	var filesize uint32
	scanDirectories(img, cursor, &filesize, dir, func(_ *Image, d Dirent) (Dirent, ScanResult) {
		if d.Ino != 0 {
			out = append(out, d)
		}
		return d, ScanKeep
	})
	return out
}

// ReadFileRange reads up to n bytes of ino's data starting
// at byte offset off, for the FUSE bridge's Read and for any other
// random-access consumer that doesn't want the full sequential
// ExtractFile stream.
func ReadFileRange(img *Image, ino *Inode, off int64, n int) ([]byte, error) {
	if off < 0 || uint64(off) >= uint64(ino.Size) {
		return nil, nil
	}
	end := off + int64(n)
	if end > int64(ino.Size) {
		end = int64(ino.Size)
	}

	out := make([]byte, 0, end-off)
	startBlock := off / BlockSize
	endBlock := (end - 1) / BlockSize

	idx := int64(-1)
	var readErr error
	scanInode(img, ino, ScanData, func(_ *Inode, blk uint32, _ any) ScanResult {
		idx++
		if idx < startBlock || idx > endBlock {
			if idx > endBlock {
				return ScanStop
			}
			return ScanKeep
		}
		var buf [BlockSize]byte
		if blk != 0 {
			if err := img.ReadBlock(blk, buf[:]); err != nil {
				readErr = err
				return ScanStop
			}
		}
		lo := int64(0)
		if idx == startBlock {
			lo = off % BlockSize
		}
		hi := int64(BlockSize)
		if idx == endBlock {
			hi = ((end - 1) % BlockSize) + 1
		}
		out = append(out, buf[lo:hi]...)
		return ScanKeep
	}, nil)
	if readErr != nil {
		return nil, readErr
	}
	return out, nil
}
