package route

import (
	"encoding"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// MatchSegment applies predicate to the current path segment, the unmatched
// path up to the next slash. The cursor only advances when predicate
// succeeds.
func MatchSegment[T any](c *Cursor, predicate func(segment string) (T, error)) (T, error) {
	seg := c.Unmatched()
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}

	v, err := predicate(seg)
	if err != nil {
		return v, err
	}

	c.advance(len(seg))
	return v, nil
}

// Exact matches a segment equal to literal. It panics if literal is empty or
// contains a slash.
func Exact(literal string) Matcher {
	if literal == "" {
		panic("route: exact path segments should not be empty")
	}
	if strings.Contains(literal, "/") {
		panic("route: exact path segments should not contain a slash: " + strconv.Quote(literal))
	}

	return MatcherFunc(func(c *Cursor, _ *Values) error {
		_, err := MatchSegment(c, func(seg string) (struct{}, error) {
			log.WithFields(log.Fields{"literal": literal, "segment": seg}).Trace("exact?")
			if seg != literal {
				return struct{}{}, notFound(seg)
			}

			return struct{}{}, nil
		})

		return err
	})
}

// Index matches only when the whole path has already been consumed.
func Index() Matcher {
	return MatcherFunc(func(c *Cursor, _ *Values) error {
		if !c.Consumed() {
			return notFound(c.Unmatched())
		}

		return nil
	})
}

// Param parses the current segment with parse and extracts the result. Any
// parse failure is a NotFound rejection.
func Param[T any](parse func(string) (T, error)) Matcher {
	return MatcherFunc(func(c *Cursor, vals *Values) error {
		v, err := MatchSegment(c, func(seg string) (T, error) {
			log.WithField("segment", seg).Trace("param?")
			v, err := parse(seg)
			if err != nil {
				return v, notFound(seg)
			}

			return v, nil
		})
		if err != nil {
			return err
		}

		*vals = append(*vals, v)
		return nil
	})
}

// TextParam extracts any type that knows how to unmarshal itself from text.
func TextParam[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}]() Matcher {
	return Param(func(s string) (T, error) {
		var v T
		err := PT(&v).UnmarshalText([]byte(s))
		return v, err
	})
}

// ParseString accepts any segment, including an empty one.
func ParseString(s string) (string, error) {
	return s, nil
}

// ParseInt parses a base 10 int.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseInt64 parses a base 10 int64.
func ParseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ParseUint32 parses a base 10 uint32.
func ParseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// ParseUint64 parses a base 10 uint64.
func ParseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
