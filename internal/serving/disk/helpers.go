package disk

import (
	"mime"
	"path/filepath"

	"gitlab.com/gitlab-org/go-mimedb"
	"gitlab.com/gitlab-org/labkit/log"
)

var extraMIMETypes = map[string]string{
	".avif": "image/avif",
	".wasm": "application/wasm",
}

// LoadMIMETypes extends the mime package's extension table with the GitLab
// MIME database. It is called once during startup.
func LoadMIMETypes() error {
	if err := mimedb.LoadTypes(); err != nil {
		return err
	}

	for ext, mimeType := range extraMIMETypes {
		if err := mime.AddExtensionType(ext, mimeType); err != nil {
			log.WithError(err).Errorf("failed to add extension: %q with MIME type: %q", ext, mimeType)
		}
	}

	return nil
}

// Detect file's content-type by extension. Unlike http.ServeContent this
// never sniffs the file, since that would need an extra read.
func detectContentType(path string) string {
	return mime.TypeByExtension(filepath.Ext(path))
}
