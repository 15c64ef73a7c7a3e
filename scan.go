package u6fs

// blockVisitor is called once per block reachable from an inode (spec.md
// §4.2). arg is an opaque, visitor-specific accumulator (a block
// counter, the dup table, …), mirroring scan_inode's `void *arg`.
type blockVisitor func(ino *Inode, blk uint32, arg any) ScanResult

// scanInode walks the blocks reachable from ino, invoking visit for
// each one. Device inodes own no data blocks and are skipped entirely.
// flg selects ADDR mode (visit both data and indirect-container blocks)
// or DATA mode (visit only data blocks; indirect blocks are read
// transparently). Returns the terminating ScanResult (Stop if the
// visitor aborted the walk, Keep otherwise).
func scanInode(img *Image, ino *Inode, flg ScanFlag, visit blockVisitor, arg any) ScanResult {
	if ino.IsDevice() {
		return ScanKeep
	}

	if !ino.IsLarge() {
		for _, a := range ino.Addr {
			if a == 0 {
				continue
			}
			r := visit(ino, uint32(a), arg)
			if r.IsStop() {
				return r
			}
		}
		return ScanKeep
	}

	for i := 0; i < 7; i++ {
		a := ino.Addr[i]
		if a == 0 {
			continue
		}
		r := scanIndirect(img, ino, uint32(a), false, flg, visit, arg)
		if r.IsStop() {
			return r
		}
	}
	if ino.Addr[7] != 0 {
		r := scanIndirect(img, ino, uint32(ino.Addr[7]), true, flg, visit, arg)
		if r.IsStop() {
			return r
		}
	}
	return ScanKeep
}

// scanIndirect recursively walks one (possibly double) indirect block,
// calling visit for every non-zero block number found, per spec.md
// §4.2's description of the indirect decode (256 little-endian 16-bit
// block numbers per block). An out-of-range indirect block is skipped
// without descent, protecting the walk from a corrupt address.
func scanIndirect(img *Image, ino *Inode, blk uint32, double bool, flg ScanFlag, visit blockVisitor, arg any) ScanResult {
	if flg == ScanAddr {
		r := visit(ino, blk, arg)
		if r.IsStop() {
			return r
		}
		if r.IsSkip() {
			// Visitor declined to continue into this block's
			// children; propagate up without reading/descending.
			return r
		}
	}

	if !inRange(img.Super.Isize, img.Super.Fsize, blk) {
		return ScanSkip
	}

	var buf [BlockSize]byte
	if err := img.ReadBlock(blk, buf[:]); err != nil {
		return ScanSkip
	}
	nums := decodeIndirect(buf[:])
	for _, nb := range nums {
		if nb == 0 {
			continue
		}
		var r ScanResult
		if double {
			r = scanIndirect(img, ino, uint32(nb), false, flg, visit, arg)
		} else {
			r = visit(ino, uint32(nb), arg)
		}
		if r.IsStop() {
			return r
		}
	}
	return ScanKeep
}
