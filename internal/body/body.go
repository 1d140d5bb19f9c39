// Package body provides a bounded, flow-controlled channel that connects a
// producer goroutine to an HTTP response body.
package body

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// ErrClosed is returned to the sender once the receiving Body has been
// closed, or its context is done.
var ErrClosed = errors.New("body: channel closed")

// Channel creates a connected Sender and Body. At most capacity chunks can be
// in flight between them; Sender.Ready blocks until the Body has room for
// one more. The channel is also closed when ctx is done.
func Channel(ctx context.Context, capacity int) (*Sender, *Body) {
	if capacity < 1 {
		capacity = 1
	}

	chunks := make(chan []byte, capacity)
	slots := make(chan struct{}, capacity)
	for i := 0; i < capacity; i++ {
		slots <- struct{}{}
	}

	b := &Body{
		chunks: chunks,
		slots:  slots,
		done:   make(chan struct{}),
	}

	s := &Sender{
		ctx:    ctx,
		chunks: chunks,
		slots:  slots,
		done:   b.done,
	}

	return s, b
}

// Sender is the producing end of a body channel. It must only be used by a
// single goroutine.
type Sender struct {
	ctx    context.Context
	chunks chan<- []byte
	slots  <-chan struct{}
	done   <-chan struct{}
	ready  bool
	closed bool
}

// Ready blocks until the Body can accept another chunk. It returns ErrClosed
// when the Body was closed, or the context error when ctx is done.
func (s *Sender) Ready() error {
	if s.ready {
		return nil
	}

	select {
	case <-s.done:
		return ErrClosed
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case <-s.done:
		return ErrClosed
	case <-s.ctx.Done():
		return s.ctx.Err()
	case <-s.slots:
		s.ready = true
		return nil
	}
}

// Send hands a chunk to the Body, waiting for readiness first if Ready was
// not called. The chunk must not be modified afterwards.
func (s *Sender) Send(chunk []byte) error {
	if err := s.Ready(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.ready = false
	s.chunks <- chunk
	return nil
}

// Close signals the end of the body. The Body reports io.EOF after all sent
// chunks have been read.
func (s *Sender) Close() {
	if s.closed {
		return
	}

	s.closed = true
	close(s.chunks)
}

// Body is the consuming end of a body channel.
type Body struct {
	chunks    <-chan []byte
	slots     chan<- struct{}
	done      chan struct{}
	closeOnce sync.Once
	pending   []byte
}

func (b *Body) next() ([]byte, error) {
	select {
	case <-b.done:
		return nil, ErrClosed
	default:
	}

	select {
	case <-b.done:
		return nil, ErrClosed
	case chunk, ok := <-b.chunks:
		if !ok {
			return nil, io.EOF
		}

		b.slots <- struct{}{}
		return chunk, nil
	}
}

// Read implements io.Reader.
func (b *Body) Read(p []byte) (int, error) {
	for len(b.pending) == 0 {
		chunk, err := b.next()
		if err != nil {
			return 0, err
		}

		b.pending = chunk
	}

	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

// WriteTo writes every chunk to w as it arrives, flushing after each one when
// w is an http.Flusher. It implements io.WriterTo so io.Copy can forward
// chunks without an intermediate buffer.
func (b *Body) WriteTo(w io.Writer) (int64, error) {
	flusher, _ := w.(http.Flusher)

	var written int64
	for {
		chunk := b.pending
		b.pending = nil

		if len(chunk) == 0 {
			var err error
			chunk, err = b.next()
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			if err != nil {
				return written, err
			}
		}

		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}

		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Close releases the Body. A blocked or future Sender.Ready or Sender.Send
// returns ErrClosed.
func (b *Body) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})

	return nil
}
