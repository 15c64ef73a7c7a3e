package u6fs

import "errors"

// Package-specific error variables that can be used with errors.Is() for
// error handling, the way the teacher reports reusable sentinels.
var (
	// ErrNotV6Image is returned when a block fails to decode as a V6
	// superblock.
	ErrNotV6Image = errors.New("u6fs: not a unix v6 filesystem image")

	// ErrBadSize is returned when a filesystem's geometry is impossible
	// (isize+2 >= fsize, leaving no room for data blocks).
	ErrBadSize = errors.New("u6fs: bad filesystem size: isize+2 >= fsize")

	// ErrRootUnallocated is returned when the root inode (number 1) is
	// not allocated; the image cannot be checked or mounted.
	ErrRootUnallocated = errors.New("u6fs: root inode unallocated")

	// ErrReadOnly is returned when a mutating operation is attempted on
	// an image opened without write access.
	ErrReadOnly = errors.New("u6fs: image is not writable")

	// ErrNoLostFound is returned when an orphan needs reconnecting but no
	// lost+found directory exists directly under root.
	ErrNoLostFound = errors.New("u6fs: no lost+found directory")

	// ErrNoSpace is returned when lost+found has no free directory slot
	// left for a reconnected orphan.
	ErrNoSpace = errors.New("u6fs: no space in lost+found directory")

	// ErrNotDirectory is returned when a directory operation targets a
	// non-directory inode.
	ErrNotDirectory = errors.New("u6fs: not a directory")

	// ErrNotFound is returned when a named directory entry does not
	// exist, and by ExtractFile for a device inode, which has no data.
	ErrNotFound = errors.New("u6fs: no such file or directory")

	// ErrInvalidBlock is returned by ReadBlock/WriteBlock when the block
	// number is out of the image's total size.
	ErrInvalidBlock = errors.New("u6fs: block number out of range")

	// ErrFreeListFull is returned when BlockFree cannot allocate a new
	// chain block for the superblock's free list.
	ErrFreeListFull = errors.New("u6fs: free list chain block allocation failed")
)
