//go:build fuse

package main

import (
	"fmt"

	"github.com/sergevak/u6fs"
	"github.com/sergevak/u6fs/u6fsfuse"
)

func runMount(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: mount <image> <mountpoint>")
	}
	img, err := u6fs.Open(args[0], false)
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer img.Close()

	server, err := u6fsfuse.Mount(img, args[1])
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	server.Wait()
	return nil
}
