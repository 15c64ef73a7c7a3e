package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sergevak/u6fs"
)

const usage = `u6fsck - Unix V6 filesystem image toolkit

Usage:
  u6fsck check [-fix] <image>                     Check (and optionally repair) an image
  u6fsck mkfs -size <N> -inodes <N> <image>       Create a new image
  u6fsck extract <image> <inode> <outfile>        Extract a file by inode number
  u6fsck add <image> <name> <infile>              Add a file under the root directory
  u6fsck installboot <image> <boot.bin> [boot2.bin]  Install boot sector(s)
  u6fsck snapshot [-codec gzip|zstd|xz] <image> <out>  Write a compressed snapshot
  u6fsck mount <image> <mountpoint>               Mount an image read-only via FUSE (build with -tags fuse)
  u6fsck help                                     Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "check":
		err = runCheck(os.Args[2:])
	case "mkfs":
		err = runMkfs(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "installboot":
		err = runInstallBoot(os.Args[2:])
	case "snapshot":
		err = runSnapshot(os.Args[2:])
	case "mount":
		err = runMount(os.Args[2:])
	case "help":
		fmt.Println(usage)
		return
	default:
		fmt.Printf("Error: Unknown command %q\n", os.Args[1])
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runCheck(args []string) error {
	fix := false
	var path string
	for _, a := range args {
		if a == "-fix" {
			fix = true
			continue
		}
		path = a
	}
	if path == "" {
		return fmt.Errorf("missing image path")
	}

	img, err := u6fs.Open(path, fix)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer img.Close()

	if _, err := u6fs.Check(img); err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	return nil
}

func runMkfs(args []string) error {
	var size, inodes uint64
	var path string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-size":
			i++
			size, _ = strconv.ParseUint(args[i], 10, 32)
		case "-inodes":
			i++
			inodes, _ = strconv.ParseUint(args[i], 10, 32)
		default:
			path = args[i]
		}
	}
	if path == "" || size == 0 {
		return fmt.Errorf("usage: mkfs -size N -inodes N <image>")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	isize := uint32(inodes/u6fs.InodesPerBlock) + 1
	_, err = u6fs.Create(f, uint32(size), isize)
	if err != nil {
		return fmt.Errorf("mkfs %s: %w", path, err)
	}
	return nil
}

func runExtract(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: extract <image> <inode> <outfile>")
	}
	img, err := u6fs.Open(args[0], false)
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer img.Close()

	inum, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("bad inode number %q: %w", args[1], err)
	}

	out, err := os.Create(args[2])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[2], err)
	}
	defer out.Close()

	if err := u6fs.ExtractFile(img, uint16(inum), out); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}

func runAdd(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: add <image> <name> <infile>")
	}
	img, err := u6fs.Open(args[0], true)
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer img.Close()

	in, err := os.Open(args[2])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[2], err)
	}
	defer in.Close()

	inum, err := u6fs.AddFile(img, u6fs.RootIno, args[1], in, u6fs.ModeFREG)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	fmt.Printf("added I=%d\n", inum)
	return img.Sync(false)
}

func runInstallBoot(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: installboot <image> <boot.bin> [boot2.bin]")
	}
	img, err := u6fs.Open(args[0], true)
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer img.Close()

	primary, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[1], err)
	}
	defer primary.Close()

	var secondary *os.File
	if len(args) > 2 {
		secondary, err = os.Open(args[2])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[2], err)
		}
		defer secondary.Close()
	}

	var secondaryReader = io.Reader(nil)
	if secondary != nil {
		secondaryReader = secondary
	}
	if err := u6fs.InstallBoot(img, primary, secondaryReader); err != nil {
		return fmt.Errorf("installboot: %w", err)
	}
	return img.Sync(false)
}

func runSnapshot(args []string) error {
	codec := u6fs.SnapGZip
	var path, out string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-codec":
			i++
			switch args[i] {
			case "gzip":
				codec = u6fs.SnapGZip
			case "zstd":
				codec = u6fs.SnapZSTD
			case "xz":
				codec = u6fs.SnapXZ
			default:
				return fmt.Errorf("unknown codec %q", args[i])
			}
		default:
			if path == "" {
				path = args[i]
			} else {
				out = args[i]
			}
		}
	}
	if path == "" || out == "" {
		return fmt.Errorf("usage: snapshot [-codec gzip|zstd|xz] <image> <out>")
	}

	img, err := u6fs.Open(path, false)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer img.Close()

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := u6fs.SnapshotImage(img, f, codec); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
