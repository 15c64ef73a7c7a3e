//go:build fuse

// Package u6fsfuse bridges a checked, read-only u6fs.Image into the
// host filesystem, grounded on the teacher's inode_fuse.go bridging of
// an in-memory Inode to the go-fuse library (Lookup/Open/OpenDir/
// ReadDir, a FillAttr-style attribute fill-in). Reshaped onto the
// higher-level fs.InodeEmbedder API since u6fs has no equivalent of
// squashfs's shared-index-across-mounts inode renumbering problem the
// teacher's raw fuse.RawFileSystem approach exists to solve.
package u6fsfuse

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sergevak/u6fs"
)

// node is one fs.InodeEmbedder wrapping a single V6 inode number.
type node struct {
	fs.Inode
	img  *u6fs.Image
	inum uint16
}

var _ fs.NodeLookuper = (*node)(nil)
var _ fs.NodeReaddirer = (*node)(nil)
var _ fs.NodeOpener = (*node)(nil)
var _ fs.NodeGetattrer = (*node)(nil)
var _ fs.NodeReader = (*node)(nil)

func (n *node) ino() (*u6fs.Inode, error) { return n.img.InodeGet(n.inum) }

// Getattr fills size, mode, and link count from the underlying V6
// inode, the same handful of fields the teacher's FillAttr/fillEntry
// pair populates.
func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	ino, err := n.ino()
	if err != nil {
		return syscall.EIO
	}
	out.Size = uint64(ino.Size)
	out.Nlink = uint32(ino.NLink)
	out.Mode = modeToUnix(ino)
	out.SetTimeout(time.Second)
	return 0
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	dir, err := n.ino()
	if err != nil {
		return nil, syscall.EIO
	}
	target, ok := u6fs.FindDirEntry(n.img, dir, name)
	if !ok {
		return nil, syscall.ENOENT
	}
	child := &node{img: n.img, inum: target}
	ti, err := child.ino()
	if err != nil {
		return nil, syscall.EIO
	}
	out.Attr.Size = uint64(ti.Size)
	out.Attr.Nlink = uint32(ti.NLink)
	out.Attr.Mode = modeToUnix(ti)
	out.SetEntryTimeout(time.Second)
	out.SetAttrTimeout(time.Second)
	mode := uint32(0o40000)
	if !ti.IsDir() {
		mode = uint32(0o100000)
	}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: mode, Ino: uint64(target)}), 0
}

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	dir, err := n.ino()
	if err != nil {
		return nil, syscall.EIO
	}
	var list []fuse.DirEntry
	for _, d := range u6fs.ListDirEntries(n.img, dir) {
		ti, err := n.img.InodeGet(d.Ino)
		if err != nil {
			continue
		}
		mode := uint32(0o100000)
		if ti.IsDir() {
			mode = 0o40000
		}
		list = append(list, fuse.DirEntry{Ino: uint64(d.Ino), Mode: mode, Name: d.Name})
	}
	return fs.NewListDirStream(list), 0
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	ino, err := n.ino()
	if err != nil {
		return nil, syscall.EIO
	}
	data, err := u6fs.ReadFileRange(n.img, ino, off, len(dest))
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(data), 0
}

func modeToUnix(ino *u6fs.Inode) uint32 {
	m := uint32(0o644)
	if ino.IsDir() {
		m |= 0o40000 | 0o111
	} else {
		m |= 0o100000
	}
	return m
}

// Mount exposes img read-only at mountpoint. It refuses to run against a
// writable handle: checking and mounting are mutually exclusive phases
// of the same image's life, never concurrent, per the Non-goal ruling
// out live/mounted concurrent checking.
func Mount(img *u6fs.Image, mountpoint string) (*fuse.Server, error) {
	if img.Writable {
		return nil, errors.New("u6fsfuse: refusing to mount a writable image")
	}
	root := &node{img: img, inum: u6fs.RootIno}
	return fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{Name: "u6fs", ReadOnly: true},
	})
}
