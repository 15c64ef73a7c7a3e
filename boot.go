package u6fs

import "io"

// InstallBoot copies primary into block 0 (the boot sector) and, if
// secondary is non-nil, into the first data block past the inode table
// (isize+2). Byte copy only — no V6 boot program is interpreted or
// validated, matching fsutil.c's -b/-B CLI flags, which are equally
// byte-blind; fsutil.c calls through to u6fs_install_boot /
// u6fs_install_single_boot, whose bodies aren't part of the retrieved
// source, so the secondary sector's placement is this implementation's
// own decision rather than a traced one: block 1 is the superblock in
// this layout, so a second boot block can never land there without
// corrupting it, and isize+2 is the first block guaranteed free before
// any files exist.
func InstallBoot(img *Image, primary, secondary io.Reader) error {
	if !img.Writable {
		return ErrReadOnly
	}
	if err := installBootBlock(img, 0, primary); err != nil {
		return err
	}
	if secondary == nil {
		return nil
	}
	return installBootBlock(img, img.Super.Isize+2, secondary)
}

func installBootBlock(img *Image, blk uint32, r io.Reader) error {
	buf := make([]byte, BlockSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	_ = n
	return img.WriteBlock(blk, buf)
}
