package route

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// File is a filesystem path resolved by a route. It is immutable once built.
type File struct {
	Path string
}

// FileAt always matches and extracts the fixed file path.
func FileAt(path string) Matcher {
	f := File{Path: path}

	return MatcherFunc(func(_ *Cursor, vals *Values) error {
		log.WithField("path", f.Path).Trace("file")
		*vals = append(*vals, f)
		return nil
	})
}

// Dir consumes the whole unmatched path and extracts it as a File below
// base. Every segment is appended verbatim, empty ones included. A segment
// starting with ".." rejects the path with BadRequest before anything is
// joined.
func Dir(base string) Matcher {
	const sep = string(os.PathSeparator)

	root := base
	if len(root) > 1 {
		root = strings.TrimSuffix(root, sep)
	} else if root == sep {
		root = ""
	}

	return MatcherFunc(func(c *Cursor, vals *Values) error {
		p := c.Unmatched()
		log.WithFields(log.Fields{"base": base, "path": p}).Trace("dir?")

		segments := strings.Split(p, "/")
		for _, seg := range segments {
			if strings.HasPrefix(seg, "..") {
				log.WithField("segment", seg).Debug("dir: rejecting segment starting with '..'")
				return badRequest(seg)
			}
		}

		var b strings.Builder
		b.Grow(len(root) + len(p) + 1)
		b.WriteString(root)
		for _, seg := range segments {
			b.WriteString(sep)
			b.WriteString(seg)
		}

		c.finish()
		*vals = append(*vals, File{Path: b.String()})
		return nil
	})
}
