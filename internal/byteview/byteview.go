// Package byteview supplies a read-only, contiguous byte view of an
// input file via mmap, avoiding a full-size heap copy of large logs.
package byteview

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// View is a read-only memory-mapped view of a file's contents.
type View struct {
	Path string
	data []byte
}

// Open maps path read-only and returns a View over its contents.
// An empty file yields a zero-length, non-nil View.
func Open(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("byteview: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("byteview: stat %s: %w", path, err)
	}

	size := info.Size()
	if size == 0 {
		return &View{Path: path, data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("byteview: mmap %s: %w", path, err)
	}

	return &View{Path: path, data: data}, nil
}

// Bytes returns the mapped contents. The slice is read-only in
// practice: writes to it would corrupt the page cache backing it.
func (v *View) Bytes() []byte {
	return v.data
}

// Len returns the number of mapped bytes.
func (v *View) Len() int {
	return len(v.data)
}

// Close unmaps the view. It is a no-op for an empty file.
func (v *View) Close() error {
	if len(v.data) == 0 {
		return nil
	}
	if err := unix.Munmap(v.data); err != nil {
		return fmt.Errorf("byteview: munmap %s: %w", v.Path, err)
	}
	return nil
}
