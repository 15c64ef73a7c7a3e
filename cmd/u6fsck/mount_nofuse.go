//go:build !fuse

package main

import "fmt"

func runMount(args []string) error {
	return fmt.Errorf("mount: rebuild with -tags fuse to enable FUSE support")
}
