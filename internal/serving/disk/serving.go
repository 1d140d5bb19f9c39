package disk

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"

	"gitlab.com/gitlab-org/fileroute/internal/errortracking"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
	"gitlab.com/gitlab-org/fileroute/internal/reply"
	"gitlab.com/gitlab-org/fileroute/internal/route"
	"gitlab.com/gitlab-org/fileroute/internal/vfs"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

// DefaultBufferChunks is the number of chunks a file body may hold before
// the copy loop waits for the client.
const DefaultBufferChunks = 1

var tracer = otel.Tracer("gitlab.com/gitlab-org/fileroute/internal/serving/disk")

// Open failures caused by the shape of the requested path rather than by
// the server. Any client can trigger these.
var requestPathErrnos = []error{unix.EINVAL, unix.ENOTDIR, unix.ENAMETOOLONG, unix.ELOOP}

func isRequestPathError(err error) bool {
	for _, errno := range requestPathErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}

// New returns a Reader streaming files opened through fs. bufferChunks bounds
// how far disk reads may run ahead of the client.
func New(fs vfs.FS, bufferChunks int) *Reader {
	if bufferChunks < 1 {
		bufferChunks = DefaultBufferChunks
	}

	return &Reader{
		fs:             fs,
		bufferChunks:   bufferChunks,
		fileSizeMetric: metrics.FileSize,
	}
}

// ServeFile replies with the last file extracted by the matched route.
func (reader *Reader) ServeFile(r *http.Request, vals route.Values) *reply.Reply {
	f, ok := route.Last[route.File](vals)
	if !ok {
		logging.LogRequest(r).Error("route did not extract a file to serve")
		return reply.Empty(http.StatusInternalServerError)
	}

	// The span covers open and stat only; streaming outlives it.
	ctx, span := tracer.Start(r.Context(), "disk.ServeFile",
		trace.WithAttributes(attribute.String("file.path", f.Path)))
	defer span.End()

	rep, err := reader.reply(ctx, f.Path)
	span.SetAttributes(attribute.Int("http.status_code", rep.Status))
	if err != nil {
		span.RecordError(err)
	}

	if err != nil && rep.Status == http.StatusInternalServerError {
		span.SetStatus(codes.Error, "could not serve file")
		entry := logging.LogRequest(r).WithError(err).WithField("file", f.Path)

		if isRequestPathError(err) {
			entry.Warn("could not open requested path")
			return rep
		}

		entry.Error("could not serve file")
		errortracking.CaptureErrWithReqAndStackTrace(err, r, errortracking.WithField("file", f.Path))
	}

	return rep
}
