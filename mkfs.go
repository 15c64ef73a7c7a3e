package u6fs

import "io"

// CreateOption configures Create, mirroring the teacher's
// Option func(sb *Superblock) error pattern.
type CreateOption func(*createConfig)

type createConfig struct {
	ninode uint16
}

// WithInodeCount overrides the default free-inode cache population
// (capped at MaxInode, the superblock's cache size).
func WithInodeCount(n uint16) CreateOption {
	return func(c *createConfig) { c.ninode = n }
}

// memDevice is a fully in-memory blockDevice, the scratch backing store
// Create builds a fresh image against before copying it out to the
// caller's io.WriteSeeker in one pass.
type memDevice struct {
	data []byte
}

func newMemDevice(fsize uint32) *memDevice {
	return &memDevice{data: make([]byte, int(fsize)*BlockSize)}
}

func (d *memDevice) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, d.data[off:])
	return n, nil
}

func (d *memDevice) WriteAt(p []byte, off int64) (int, error) {
	n := copy(d.data[off:], p)
	return n, nil
}

// Create lays out a minimal valid V6 image on w: a zeroed inode table,
// an allocated root directory containing "." and "..", a lost+found
// directory one level under root, and a free list threading every
// remaining block. Grounded on fsutil.c's add_directory image-bootstrap
// path, simplified since V6 carries no compression or fragment tables.
func Create(w io.WriteSeeker, fsize, isize uint32, opts ...CreateOption) (*Image, error) {
	if isize+2 >= fsize {
		return nil, ErrBadSize
	}
	cfg := &createConfig{ninode: MaxInode}
	for _, opt := range opts {
		opt(cfg)
	}

	dev := newMemDevice(fsize)
	sb := &Superblock{Fsize: fsize, Isize: isize, Dirty: true}
	img := &Image{dev: dev, Super: sb, Writable: true}

	lostFound := uint16(RootIno + 1)
	rootBlock := isize + 2
	lfBlock := isize + 3
	if lfBlock >= fsize {
		return nil, ErrNoSpace
	}

	root := &Inode{Number: RootIno, Mode: ModeAlloc | ModeFDIR, NLink: 3, Size: 2 * DirentSize, Addr: [NAddr]uint16{uint16(rootBlock)}}
	lf := &Inode{Number: lostFound, Mode: ModeAlloc | ModeFDIR, NLink: 2, Size: 2 * DirentSize, Addr: [NAddr]uint16{uint16(lfBlock)}}

	if err := writeDirBlock(img, rootBlock, []Dirent{{Ino: RootIno, Name: "."}, {Ino: RootIno, Name: ".."}}); err != nil {
		return nil, err
	}
	if err := writeDirBlock(img, lfBlock, []Dirent{{Ino: lostFound, Name: "."}, {Ino: RootIno, Name: ".."}}); err != nil {
		return nil, err
	}
	if err := img.InodeSave(root, true); err != nil {
		return nil, err
	}
	if err := img.InodeSave(lf, true); err != nil {
		return nil, err
	}
	// The root block already has 30 unused, zeroed slots; grow root's
	// logical size by one entry so addDirEntry's scan reaches the slot
	// the lost+found entry will occupy.
	root.Size += DirentSize
	if err := img.InodeSave(root, true); err != nil {
		return nil, err
	}
	if err := addDirEntry(img, root, lostFound, LostFoundName); err != nil {
		return nil, err
	}

	used := newBlockBitmap(fsize)
	used.markBusy(rootBlock)
	used.markBusy(lfBlock)

	// Block 0 goes in first as the end-of-chain sentinel, as phase 6 does.
	if err := img.BlockFree(0); err != nil {
		return nil, err
	}
	for b := fsize - 1; b >= isize+2; b-- {
		if used.isBusy(b) {
			continue
		}
		if err := img.BlockFree(uint16(b)); err != nil {
			return nil, err
		}
	}

	// Populate the superblock's free-inode cache the way classic mkfs
	// seeds it: every inode above lost+found is free, cached up to the
	// cache's own capacity. AddFile's allocInode pops from this cache
	// before falling back to a linear scan.
	maxInodeNum := isize * InodesPerBlock
	firstFree := uint32(lostFound) + 1
	n := cfg.ninode
	if n > MaxInode {
		n = MaxInode
	}
	if avail := maxInodeNum - firstFree + 1; uint32(n) > avail {
		n = uint16(avail)
	}
	for i := uint16(0); i < n; i++ {
		sb.Inode[i] = uint16(firstFree) + i
	}
	sb.Ninode = n
	if err := img.Sync(false); err != nil {
		return nil, err
	}

	if err := copyMemDeviceTo(dev, w); err != nil {
		return nil, err
	}
	return img, nil
}

func copyMemDeviceTo(dev *memDevice, w io.WriteSeeker) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := w.Write(dev.data)
	return err
}

func writeDirBlock(img *Image, blk uint32, entries []Dirent) error {
	buf := make([]byte, BlockSize)
	for i, d := range entries {
		copy(buf[i*DirentSize:(i+1)*DirentSize], DirentPack(d))
	}
	return img.WriteBlock(blk, buf)
}

// addDirEntry appends {inum, name} to dir's first free slot. When no slot
// within dir.Size is free and the last data block still has room, dir is
// grown by one entry (and saved) to make one. Shared by Create and
// [XFR]'s AddFile.
func addDirEntry(img *Image, dir *Inode, inum uint16, name string) error {
	cursor := newBlockCursor(img)
	planted := false
	var filesize uint32
	scanDirectories(img, cursor, &filesize, dir, func(_ *Image, d Dirent) (Dirent, ScanResult) {
		if d.Ino != 0 {
			return d, ScanKeep
		}
		d.Ino = inum
		d.Name = name
		planted = true
		return d, ScanStop.Altered()
	})
	if err := cursor.flush(); err != nil {
		return err
	}
	if planted {
		return nil
	}
	if dir.Size%BlockSize != 0 {
		dir.Size += DirentSize
		if err := img.InodeSave(dir, true); err != nil {
			return err
		}
		return addDirEntry(img, dir, inum, name)
	}
	return ErrNoSpace
}
