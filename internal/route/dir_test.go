package route

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirResolvesPath(t *testing.T) {
	tests := map[string]struct {
		base         string
		path         string
		expectedPath string
	}{
		"single file": {
			base:         "/srv/public",
			path:         "/hello.txt",
			expectedPath: "/srv/public/hello.txt",
		},
		"nested file": {
			base:         "/srv/public",
			path:         "/css/site/main.css",
			expectedPath: "/srv/public/css/site/main.css",
		},
		"doubled slashes are kept": {
			base:         "/srv/public",
			path:         "/a//b",
			expectedPath: "/srv/public/a//b",
		},
		"trailing slash is kept": {
			base:         "/srv/public",
			path:         "/a/",
			expectedPath: "/srv/public/a/",
		},
		"empty remainder": {
			base:         "/srv/public",
			path:         "/",
			expectedPath: "/srv/public/",
		},
		"base with trailing slash": {
			base:         "/srv/public/",
			path:         "/hello.txt",
			expectedPath: "/srv/public/hello.txt",
		},
		"root base": {
			base:         "/",
			path:         "/hello.txt",
			expectedPath: "/hello.txt",
		},
		"relative base": {
			base:         "public",
			path:         "/hello.txt",
			expectedPath: "public/hello.txt",
		},
		"dot files are allowed": {
			base:         "/srv/public",
			path:         "/.well-known/a..b",
			expectedPath: "/srv/public/.well-known/a..b",
		},
		"single dot is not a traversal": {
			base:         "/srv/public",
			path:         "/./a",
			expectedPath: "/srv/public/./a",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewCursor(tt.path)
			var vals Values

			require.NoError(t, Dir(tt.base).Match(c, &vals))
			require.True(t, c.Consumed())

			f, ok := Last[File](vals)
			require.True(t, ok)
			require.Equal(t, tt.expectedPath, f.Path)
		})
	}
}

func TestDirRejectsTraversal(t *testing.T) {
	paths := []string{
		"/..",
		"/../etc/passwd",
		"/a/../b",
		"/a/b/..",
		"/a/..foo",
		"/..%2f",
		"/a//../b",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			c := NewCursor(path)
			var vals Values

			err := Dir("/srv/public").Match(c, &vals)
			require.ErrorIs(t, err, ErrBadRequest)
			require.True(t, IsBadRequest(err))
			require.Equal(t, path[1:], c.Unmatched())
			require.Empty(t, vals)
		})
	}
}

func TestDirAfterPrefix(t *testing.T) {
	static := And(Exact("static"), Dir("/srv/public"))

	t.Run("traversal after prefix", func(t *testing.T) {
		c := NewCursor("/static/../secret")
		var vals Values

		require.ErrorIs(t, static.Match(c, &vals), ErrBadRequest)
		require.Equal(t, "static/../secret", c.Unmatched())
		require.Empty(t, vals)
	})

	t.Run("file below prefix", func(t *testing.T) {
		c := NewCursor("/static/img/logo.png")
		var vals Values

		require.NoError(t, static.Match(c, &vals))
		require.Equal(t, Values{File{Path: "/srv/public/img/logo.png"}}, vals)
	})
}

func TestFileAt(t *testing.T) {
	c := NewCursor("/favicon.ico")
	var vals Values

	require.NoError(t, And(Exact("favicon.ico"), Index(), FileAt("/srv/icons/favicon.ico")).Match(c, &vals))
	require.Equal(t, Values{File{Path: "/srv/icons/favicon.ico"}}, vals)
}
