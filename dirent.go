package u6fs

import "encoding/binary"

// Dirent is one 16-byte V6 directory entry: a little-endian 16-bit inode
// number followed by a 14-byte NUL-padded name. An entry with Ino == 0
// is free.
type Dirent struct {
	Ino  uint16
	Name string
}

// DirentUnpack decodes one 16-byte directory entry.
func DirentUnpack(buf []byte) Dirent {
	ino := binary.LittleEndian.Uint16(buf[0:2])
	name := buf[2:DirentSize]
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return Dirent{Ino: ino, Name: string(name[:n])}
}

// DirentPack encodes d into a 16-byte buffer.
func DirentPack(d Dirent) []byte {
	buf := make([]byte, DirentSize)
	binary.LittleEndian.PutUint16(buf[0:2], d.Ino)
	name := d.Name
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	copy(buf[2:], name)
	return buf
}
