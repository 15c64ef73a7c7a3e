package u6fs

import (
	"encoding/binary"
	"io"
	"log"
	"os"
)

// blockDevice is the minimal random-access surface the Image needs from
// its backing storage, mirroring the teacher's preference for
// io.ReaderAt over a plain io.Reader so block reads never disturb a
// shared file offset.
type blockDevice interface {
	io.ReaderAt
	io.WriterAt
}

// Image is the access-layer handle the checker consumes: it decodes the
// on-disk V6 Superblock and provides block-oriented read/write, inode
// get/save/clear, directory entry pack/unpack (see dirent.go), and
// free-list manipulation. This is the concrete realization of the
// "external collaborator" spec.md describes abstractly.
type Image struct {
	dev blockDevice
	closer io.Closer

	Super    *Superblock
	Writable bool
	Modified bool

	// diag, when non-nil, is invoked once per failed block read with a
	// "CAN NOT READ: BLK n" style message, mirroring check.c's buf_get
	// and scan_indirect_block both calling print_io_error on a failed
	// u6fs_read_block. Check wires this to its own diagf for the
	// duration of a run; nil elsewhere means no diagnostic sink exists.
	diag func(format string, args ...any)
}

// Open reads the superblock from path and returns a ready Image. When
// writable is false, WriteBlock, InodeSave and BlockFree return
// ErrReadOnly, and Sync writes nothing and returns nil.
func Open(path string, writable bool) (*Image, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	img, err := NewImage(f, writable)
	if err != nil {
		f.Close()
		return nil, err
	}
	img.closer = f
	return img, nil
}

// NewImage wraps an already-open random-access device (typically an
// in-memory byte-slice device in tests, or an *os.File) and
// decodes its superblock.
func NewImage(dev blockDevice, writable bool) (*Image, error) {
	img := &Image{dev: dev, Writable: writable}
	buf := make([]byte, BlockSize)
	if err := img.readRaw(superblockBlock, buf); err != nil {
		return nil, err
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		return nil, err
	}
	if sb.Isize+2 >= sb.Fsize {
		return nil, ErrBadSize
	}
	img.Super = sb
	return img, nil
}

// Close releases the underlying file, if Image owns one (i.e. it was
// created through Open rather than NewImage).
func (img *Image) Close() error {
	if img.closer != nil {
		return img.closer.Close()
	}
	return nil
}

func (img *Image) readRaw(b uint32, buf []byte) error {
	_, err := img.dev.ReadAt(buf, int64(b)*BlockSize)
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ReadBlock reads exactly BlockSize bytes from block b into buf. A
// failed underlying read is reported through the diag hook (if any)
// before the error is returned, so every caller down the scan/cursor
// chain gets the diagnostic for free.
func (img *Image) ReadBlock(b uint32, buf []byte) error {
	if len(buf) != BlockSize {
		return ErrInvalidBlock
	}
	if b >= img.Super.Fsize {
		return ErrInvalidBlock
	}
	if err := img.readRaw(b, buf); err != nil {
		if img.diag != nil {
			img.diag("CAN NOT READ: BLK %d", b)
		}
		return err
	}
	return nil
}

// WriteBlock writes exactly BlockSize bytes from buf to block b. It is a
// no-op error if the image was opened read-only.
func (img *Image) WriteBlock(b uint32, buf []byte) error {
	if !img.Writable {
		return ErrReadOnly
	}
	if len(buf) != BlockSize {
		return ErrInvalidBlock
	}
	if b >= img.Super.Fsize {
		return ErrInvalidBlock
	}
	_, err := img.dev.WriteAt(buf, int64(b)*BlockSize)
	if err != nil {
		return err
	}
	img.Modified = true
	return nil
}

// inodeBlockAndOffset locates the on-disk block and byte offset of inum.
func inodeBlockAndOffset(inum uint16) (block uint32, offset int) {
	zero := int(inum) - 1
	block = uint32(zero/InodesPerBlock) + 2
	offset = (zero % InodesPerBlock) * InodeSize
	return
}

// InodeGet materializes inode inum from disk.
func (img *Image) InodeGet(inum uint16) (*Inode, error) {
	if inum == 0 || uint32(inum) > img.Super.Isize*InodesPerBlock {
		return nil, ErrInvalidBlock
	}
	block, offset := inodeBlockAndOffset(inum)
	buf := make([]byte, BlockSize)
	if err := img.ReadBlock(block, buf); err != nil {
		return nil, err
	}
	return decodeInode(inum, buf[offset:offset+InodeSize])
}

// InodeSave persists ino. When full is false, only the fields phase 1
// touches (mode and link count) are guaranteed to be written; this
// implementation always writes the whole record since V6 inodes are
// tiny and there is no partial-write optimization worth the complexity.
func (img *Image) InodeSave(ino *Inode, full bool) error {
	_ = full
	if !img.Writable {
		return ErrReadOnly
	}
	block, offset := inodeBlockAndOffset(ino.Number)
	buf := make([]byte, BlockSize)
	if err := img.ReadBlock(block, buf); err != nil {
		return err
	}
	encodeInode(ino, buf[offset:offset+InodeSize])
	return img.WriteBlock(block, buf)
}

// InodeClear zeroes mode, link count, size, and addresses in memory; the
// caller is responsible for calling InodeSave to persist the change.
func (img *Image) InodeClear(ino *Inode) {
	ino.Clear()
}

// BlockFree pushes block b onto the superblock's free list, chaining a
// new free-list block when the in-core head is full (Nfree == MaxFree),
// per the access-layer contract in spec.md §6. Mirrors the classic V6
// free(): when the head is full, b itself becomes the on-disk chain
// block holding the old 100-entry list, and the in-core list is reset to
// hold just b (which also doubles as the pointer to that chain block).
func (img *Image) BlockFree(b uint16) error {
	if !img.Writable {
		return ErrReadOnly
	}
	sb := img.Super
	if sb.Nfree >= MaxFree {
		chain := make([]byte, BlockSize)
		encodeFreeChain(chain, sb.Nfree, &sb.Free)
		if err := img.WriteBlock(uint32(b), chain); err != nil {
			return ErrFreeListFull
		}
		sb.Nfree = 0
	}
	sb.Free[sb.Nfree] = b
	sb.Nfree++
	sb.Fmod = true
	sb.Dirty = true
	return nil
}

// encodeFreeChain packs a free-list chain block: count followed by 100
// little-endian 16-bit block numbers, per spec.md §4.9/§6.
func encodeFreeChain(buf []byte, n uint16, list *[MaxFree]uint16) {
	binary.LittleEndian.PutUint16(buf[0:2], n)
	for i, v := range list {
		binary.LittleEndian.PutUint16(buf[2+i*2:4+i*2], v)
	}
}

func decodeFreeChain(buf []byte) (n uint16, list [MaxFree]uint16) {
	n = binary.LittleEndian.Uint16(buf[0:2])
	for i := range list {
		list[i] = binary.LittleEndian.Uint16(buf[2+i*2 : 4+i*2])
	}
	return
}

// Sync persists the superblock. flag is kept for signature parity with
// the access-layer contract (u6fs_sync(fs, flag)); this implementation
// always writes when the image is writable and Dirty is set.
func (img *Image) Sync(flag bool) error {
	_ = flag
	if !img.Writable {
		return nil
	}
	if !img.Super.Dirty {
		return nil
	}
	buf := encodeSuperblock(img.Super)
	if _, err := img.dev.WriteAt(buf, superblockBlock*BlockSize); err != nil {
		return err
	}
	img.Super.Dirty = false
	log.Printf("u6fs: superblock synced")
	return nil
}
