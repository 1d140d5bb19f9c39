package route

// Values holds the values extracted by matchers, in the order the matchers
// ran.
type Values []interface{}

// Get returns the i-th extracted value if it has type T.
func Get[T any](vals Values, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(vals) {
		return zero, false
	}

	v, ok := vals[i].(T)
	return v, ok
}

// Last returns the most recently extracted value of type T.
func Last[T any](vals Values) (T, bool) {
	for i := len(vals) - 1; i >= 0; i-- {
		if v, ok := vals[i].(T); ok {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// Matcher consumes part of the cursor. On success it may append extracted
// values to vals. On failure it returns a *Error and leaves both the cursor
// and vals untouched.
type Matcher interface {
	Match(c *Cursor, vals *Values) error
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(c *Cursor, vals *Values) error

// Match calls f(c, vals).
func (f MatcherFunc) Match(c *Cursor, vals *Values) error {
	return f(c, vals)
}

// And runs matchers in order and stops at the first failure. A failed
// composition rolls back everything its earlier matchers consumed and
// extracted.
func And(matchers ...Matcher) Matcher {
	return MatcherFunc(func(c *Cursor, vals *Values) error {
		offset, n := c.Offset(), len(*vals)

		for _, m := range matchers {
			if err := m.Match(c, vals); err != nil {
				c.reset(offset)
				*vals = (*vals)[:n]
				return err
			}
		}

		return nil
	})
}
