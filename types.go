// Package u6fs reads, writes, and repairs Unix Version 6 filesystem images:
// 512-byte blocks, 16-byte directory entries, 16 inodes per inode-table
// block, and 16-bit block/inode numbers throughout.
package u6fs

// On-disk geometry constants, mirroring the original LSXFS_* defines.
const (
	// BlockSize is the size in bytes of every block in a V6 image.
	BlockSize = 512

	// InodesPerBlock is the number of 32-byte on-disk inodes packed into
	// one inode-table block.
	InodesPerBlock = 16

	// InodeSize is the on-disk size, in bytes, of one packed inode.
	InodeSize = 32

	// RootIno is the inode number of the filesystem root directory.
	RootIno = 1

	// DirentSize is the size in bytes of one directory entry: a 16-bit
	// inode number followed by a 14-byte NUL-padded name.
	DirentSize = 16

	// MaxNameLen is the maximum number of bytes in a directory entry name.
	MaxNameLen = 14

	// NAddr is the number of block-address slots in an inode.
	NAddr = 8

	// NIndirect is the number of 16-bit block numbers packed into one
	// indirect block (512 / 2).
	NIndirect = BlockSize / 2

	// MaxFree is the number of block-number slots in the superblock's
	// free-list head and in every free-list chain block.
	MaxFree = 100

	// MaxInode is the number of cached free-inode numbers kept in the
	// superblock.
	MaxInode = 100

	// LostFoundName is the name of the directory under root used to
	// reconnect orphaned files and directories.
	LostFoundName = "lost+found"
)

// Mode bits for Inode.Mode. FMT occupies the low 2 bits and selects the
// file type; ALLOC and LARG are independent flags in the high bits.
const (
	ModeFMT  = 0003 // mask for the type subfield
	ModeFREG = 0000 // regular file
	ModeFDIR = 0001 // directory
	ModeFCHR = 0002 // character device
	ModeFBLK = 0003 // block device

	ModeLarge = 0010 // large file: addr[] holds (in)direct block pointers
	ModeAlloc = 0020 // inode is allocated
)

// ScanFlag selects how the inode block scanner walks an inode's address
// tree: over both data and indirect-container blocks, or data only.
type ScanFlag int

const (
	// ScanAddr invokes the visitor for both data blocks and the indirect
	// blocks that point at them.
	ScanAddr ScanFlag = iota
	// ScanData invokes the visitor only for data blocks; indirect blocks
	// are read transparently by the scanner.
	ScanData
)

// ScanResult is the value a block or directory visitor returns, modeled
// as a tagged variant of the original bitmask {STOP, SKIP, KEEPON,
// ALTERD}. Stop and Altered compose orthogonally; Skip only suppresses
// descent into the current block's children.
type ScanResult struct {
	stop    bool
	skip    bool
	altered bool
}

var (
	// ScanKeep continues the walk normally.
	ScanKeep = ScanResult{}
	// ScanSkip avoids descending into the current block's children but
	// continues the walk at the caller's level.
	ScanSkip = ScanResult{skip: true}
	// ScanStop aborts the entire walk immediately.
	ScanStop = ScanResult{stop: true}
)

// Altered returns r with the Altered bit set, meaning the visitor's
// directory entry was modified and should be written back.
func (r ScanResult) Altered() ScanResult {
	r.altered = true
	return r
}

// IsStop reports whether the walk should abort entirely.
func (r ScanResult) IsStop() bool { return r.stop }

// IsSkip reports whether descent into the current block's children
// should be suppressed.
func (r ScanResult) IsSkip() bool { return r.skip }

// IsAltered reports whether the visited entry was modified in place.
func (r ScanResult) IsAltered() bool { return r.altered }

// inRange reports whether block b is addressable data/indirect storage:
// isize+2 <= b < fsize. Blocks 0 and 1 are reserved (boot sector and
// superblock); blocks 2..isize+1 hold the inode table.
func inRange(isize, fsize, b uint32) bool {
	return b >= isize+2 && b < fsize
}
