package u6fs

import (
	"encoding/binary"
	"fmt"
)

// Inode is the in-memory form of one V6 inode, decoded from its 32-byte
// on-disk representation by decodeInode.
type Inode struct {
	Number uint16 // inode number, 1-based; 0 is invalid

	Mode  uint16
	NLink int16
	Uid   uint16
	Size  uint32
	Mtime uint32

	// Addr holds, for a small file, up to 8 direct data block numbers.
	// For a large file (Mode&ModeLarge), addr[0:7] are singly-indirect
	// block numbers and addr[7] is doubly-indirect. For a character or
	// block device, addr[0] packs the device identifier and the inode
	// owns no data blocks.
	Addr [NAddr]uint16
}

// IsAllocated reports whether the inode is in use.
func (ino *Inode) IsAllocated() bool { return ino.Mode&ModeAlloc != 0 }

// Type returns the FMT subfield of Mode.
func (ino *Inode) Type() uint16 { return ino.Mode & ModeFMT }

// IsDir reports whether the inode's type is directory; the allocated
// flag is not checked.
func (ino *Inode) IsDir() bool { return ino.Type() == ModeFDIR }

// IsDevice reports whether the inode is a character or block device,
// which owns no data blocks.
func (ino *Inode) IsDevice() bool {
	t := ino.Type()
	return t == ModeFCHR || t == ModeFBLK
}

// IsLarge reports whether addr[] holds (in)direct block pointers rather
// than direct data block numbers.
func (ino *Inode) IsLarge() bool { return ino.Mode&ModeLarge != 0 }

func (ino *Inode) kindName() string {
	if ino.IsDir() {
		return "DIR"
	}
	return "FILE"
}

// String renders the inode the way the original checker's print_inode
// does, for diagnostic output.
func (ino *Inode) String() string {
	return fmt.Sprintf(" I=%d  OWNER=%d MODE=%o\nSIZE=%d",
		ino.Number, ino.Uid, ino.Mode, ino.Size)
}

// decodeInode unpacks a 32-byte on-disk inode record.
func decodeInode(number uint16, buf []byte) (*Inode, error) {
	if len(buf) < InodeSize {
		return nil, fmt.Errorf("u6fs: short inode buffer: %d bytes", len(buf))
	}
	ino := &Inode{Number: number}
	ino.Mode = binary.LittleEndian.Uint16(buf[0:2])
	ino.NLink = int16(binary.LittleEndian.Uint16(buf[2:4]))
	ino.Uid = binary.LittleEndian.Uint16(buf[4:6])
	ino.Size = binary.LittleEndian.Uint32(buf[6:10])
	ino.Mtime = binary.LittleEndian.Uint32(buf[10:14])
	for i := 0; i < NAddr; i++ {
		off := 14 + i*2
		ino.Addr[i] = binary.LittleEndian.Uint16(buf[off : off+2])
	}
	return ino, nil
}

// encodeInode packs ino into a 32-byte on-disk record.
func encodeInode(ino *Inode, buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], ino.Mode)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(ino.NLink))
	binary.LittleEndian.PutUint16(buf[4:6], ino.Uid)
	binary.LittleEndian.PutUint32(buf[6:10], ino.Size)
	binary.LittleEndian.PutUint32(buf[10:14], ino.Mtime)
	for i := 0; i < NAddr; i++ {
		off := 14 + i*2
		binary.LittleEndian.PutUint16(buf[off:off+2], ino.Addr[i])
	}
}

// Clear zeroes the inode's mode, link count, size, and block addresses,
// matching u6fs_inode_clear's in-memory reset. The inode number itself
// is left intact; callers persist the cleared inode with InodeSave.
func (ino *Inode) Clear() {
	ino.Mode = 0
	ino.NLink = 0
	ino.Uid = 0
	ino.Size = 0
	ino.Mtime = 0
	for i := range ino.Addr {
		ino.Addr[i] = 0
	}
}

// decodeIndirect unpacks a 512-byte indirect block into 256 16-bit
// block numbers, little-endian, per spec.md's byte-exact format.
func decodeIndirect(buf []byte) [NIndirect]uint16 {
	var out [NIndirect]uint16
	for i := 0; i < NIndirect; i++ {
		out[i] = binary.LittleEndian.Uint16(buf[i*2 : i*2+2])
	}
	return out
}

// encodeIndirect packs 256 16-bit block numbers into a 512-byte block.
func encodeIndirect(nums [NIndirect]uint16) []byte {
	buf := make([]byte, BlockSize)
	for i, n := range nums {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], n)
	}
	return buf
}
