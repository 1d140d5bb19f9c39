package route

import (
	"fmt"
	"strings"
)

var paramParsers = map[string]func() Matcher{
	"string": func() Matcher { return Param(ParseString) },
	"int":    func() Matcher { return Param(ParseInt) },
	"int64":  func() Matcher { return Param(ParseInt64) },
	"uint32": func() Matcher { return Param(ParseUint32) },
	"uint64": func() Matcher { return Param(ParseUint64) },
}

// Pattern compiles a slash separated route prefix such as
// "/users/{uint32}/files" into a sequence of Exact and Param matchers.
// Supported parameter types are string, int, int64, uint32 and uint64.
// "/" and "" compile to a matcher that consumes nothing.
func Pattern(pattern string) (Matcher, error) {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return And(), nil
	}

	parts := strings.Split(trimmed, "/")
	matchers := make([]Matcher, 0, len(parts))

	for _, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("pattern %q: empty segment", pattern)
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			typ := part[1 : len(part)-1]
			newParam, ok := paramParsers[typ]
			if !ok {
				return nil, fmt.Errorf("pattern %q: unsupported parameter type %q", pattern, typ)
			}
			matchers = append(matchers, newParam())
		default:
			matchers = append(matchers, Exact(part))
		}
	}

	return And(matchers...), nil
}
