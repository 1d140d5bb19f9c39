package local

import (
	"context"
	"os"

	"golang.org/x/sys/unix"

	"gitlab.com/gitlab-org/fileroute/internal/vfs"
)

// VFS opens files from the local disk.
type VFS struct {
	followSymlinks bool
}

// New returns a local VFS. When followSymlinks is false, opening a path
// whose last element is a symlink fails instead of serving the target.
func New(followSymlinks bool) *VFS {
	return &VFS{followSymlinks: followSymlinks}
}

func (localFs *VFS) Name() string {
	return "local"
}

func (localFs *VFS) Open(ctx context.Context, name string) (vfs.File, error) {
	flags := os.O_RDONLY
	if !localFs.followSymlinks {
		flags |= unix.O_NOFOLLOW
	}

	f, err := os.OpenFile(name, flags, 0)
	if err != nil {
		return nil, err
	}

	return f, nil
}
