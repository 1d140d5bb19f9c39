package route

import "strings"

// Cursor tracks how much of a request path has been consumed by matchers.
// It belongs to a single request and must not be shared between goroutines.
type Cursor struct {
	path   string
	offset int
}

// NewCursor returns a Cursor positioned at the first segment of path. A
// leading slash is not part of any segment.
func NewCursor(path string) *Cursor {
	c := &Cursor{path: path}
	if strings.HasPrefix(path, "/") {
		c.offset = 1
	}

	return c
}

// Unmatched returns the part of the path no matcher has consumed yet.
func (c *Cursor) Unmatched() string {
	return c.path[c.offset:]
}

// Offset is the byte offset of the unmatched suffix.
func (c *Cursor) Offset() int {
	return c.offset
}

// Consumed reports whether the whole path has been matched.
func (c *Cursor) Consumed() bool {
	return c.offset == len(c.path)
}

// advance moves past n bytes of the unmatched path and the separator
// following them, if any.
func (c *Cursor) advance(n int) {
	idx := c.offset + n
	if idx < len(c.path) && c.path[idx] == '/' {
		idx++
	}

	c.offset = idx
}

func (c *Cursor) finish() {
	c.offset = len(c.path)
}

func (c *Cursor) reset(offset int) {
	c.offset = offset
}
