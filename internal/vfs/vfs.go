package vfs

import (
	"context"
	"io"
	"io/fs"
	"strconv"

	"gitlab.com/gitlab-org/fileroute/metrics"
)

// FS abstracts the things needed to serve a resolved file path.
type FS interface {
	Open(ctx context.Context, name string) (File, error)
}

// File represents an open file, which will typically be streamed as a
// response body.
type File interface {
	io.Reader
	io.Closer
	Stat() (fs.FileInfo, error)
}

func Instrumented(fs FS, name string) FS {
	return &InstrumentedFS{fs: fs, name: name}
}

type InstrumentedFS struct {
	fs   FS
	name string
}

func increment(name, operation string, err error) {
	metrics.VFSOperations.WithLabelValues(name, operation, strconv.FormatBool(err == nil)).Inc()
}

func (i *InstrumentedFS) Open(ctx context.Context, name string) (File, error) {
	f, err := i.fs.Open(ctx, name)
	increment(i.name, "Open", err)
	if err != nil {
		return nil, err
	}

	return &InstrumentedFile{File: f, name: i.name}, nil
}

type InstrumentedFile struct {
	File
	name string
}

func (i *InstrumentedFile) Stat() (fs.FileInfo, error) {
	fi, err := i.File.Stat()
	increment(i.name, "Stat", err)
	return fi, err
}
