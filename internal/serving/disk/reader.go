package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/fileroute/internal/body"
	"gitlab.com/gitlab-org/fileroute/internal/reply"
	"gitlab.com/gitlab-org/fileroute/internal/vfs"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

// Reader is a disk access driver
type Reader struct {
	fs             vfs.FS
	bufferChunks   int
	fileSizeMetric prometheus.Histogram
}

// reply opens the file at path and returns a response streaming its
// contents. Headers are final when reply returns; the body is filled by a
// separate goroutine as the client consumes it. Open and stat failures are
// answered with an empty 404 or 500 response and the cause.
func (reader *Reader) reply(ctx context.Context, path string) (*reply.Reply, error) {
	file, err := reader.fs.Open(ctx, path)
	if err != nil {
		log.WithError(err).WithField("file", path).Debug("file open error")

		if errors.Is(err, fs.ErrNotExist) {
			return emptyReply(http.StatusNotFound), err
		}

		return emptyReply(http.StatusInternalServerError), err
	}

	fi, err := file.Stat()
	if err != nil {
		log.WithError(err).WithField("file", path).Trace("file metadata error")
		file.Close()

		return emptyReply(http.StatusInternalServerError), err
	}

	// Directories and devices have no meaningful content length.
	if !fi.Mode().IsRegular() {
		file.Close()

		return emptyReply(http.StatusNotFound), fmt.Errorf("%s: is not a regular file", path)
	}

	size := fi.Size()
	reader.fileSizeMetric.Observe(float64(size))

	tx, b := body.Channel(ctx, reader.bufferChunks)
	metrics.StreamsActive.Inc()
	go copyToBody(file, tx, size)

	rep := &reply.Reply{
		Status: http.StatusOK,
		Header: make(http.Header),
		Body:   b,
	}
	rep.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	if contentType := detectContentType(path); contentType != "" {
		rep.Header.Set("Content-Type", contentType)
	}

	metrics.FileReplies.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()

	return rep, nil
}

func emptyReply(status int) *reply.Reply {
	metrics.FileReplies.WithLabelValues(strconv.Itoa(status)).Inc()

	return reply.Empty(status)
}
