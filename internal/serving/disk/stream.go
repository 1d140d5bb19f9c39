package disk

import (
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/fileroute/internal/body"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

const (
	// minReserve is the free buffer space required before each disk read.
	minReserve = 4096
	// reserveSize is the size of a freshly allocated read buffer.
	reserveSize = 4 * minReserve
)

const (
	outcomeComplete     = "complete"
	outcomeShortRead    = "short_read"
	outcomeDisconnected = "disconnected"
	outcomeReadError    = "read_error"
)

// copyToBody streams up to size bytes of f into tx. A disk read only happens
// once tx is ready to take the resulting chunk. Every termination is silent:
// the response headers are already committed and there is nobody left to
// report to. f and tx are closed on return.
func copyToBody(f io.ReadCloser, tx *body.Sender, size int64) {
	outcome := streamFile(f, tx, size)

	f.Close()
	tx.Close()

	metrics.StreamsActive.Dec()
	metrics.StreamsFinished.WithLabelValues(outcome).Inc()
}

func streamFile(r io.Reader, tx *body.Sender, remaining int64) string {
	var buf []byte

	for remaining > 0 {
		if err := tx.Ready(); err != nil {
			log.WithError(err).Trace("body channel error while writing file")
			return outcomeDisconnected
		}

		if cap(buf)-len(buf) < minReserve {
			buf = make([]byte, 0, reserveSize)
		}

		start := len(buf)
		n, err := r.Read(buf[start:cap(buf)])
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return outcomeShortRead
			}

			log.WithError(err).Trace("file read error")
			return outcomeReadError
		}

		// Chunks are disjoint slices of buf, so later reads never touch a
		// chunk that was already handed to the body.
		buf = buf[:start+n]
		chunk := buf[start : start+n : start+n]

		if int64(n) > remaining {
			chunk = chunk[:remaining]
			remaining = 0
		} else {
			remaining -= int64(n)
		}

		if err := tx.Send(chunk); err != nil {
			log.WithError(err).Trace("body channel error, rejected send")
			return outcomeDisconnected
		}
		metrics.StreamedBytes.Add(float64(len(chunk)))

		if err != nil && !errors.Is(err, io.EOF) {
			log.WithError(err).Trace("file read error")
			return outcomeReadError
		}
	}

	return outcomeComplete
}
