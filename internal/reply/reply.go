package reply

import (
	"context"
	"io"
	"net/http"
)

// Reply is a response produced by a route handler. A nil Body means an empty
// body.
type Reply struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// Empty returns a Reply with the given status and no body.
func Empty(status int) *Reply {
	return &Reply{
		Status: status,
		Header: make(http.Header),
	}
}

// Send writes the reply to w. The body is closed when Send returns or when
// the request context is done, whichever happens first, so that a producer
// feeding it stops promptly. The returned error is the first body copy
// failure, after headers were already committed.
func (rep *Reply) Send(w http.ResponseWriter, r *http.Request) error {
	header := w.Header()
	for k, v := range rep.Header {
		header[k] = v
	}

	if rep.Body == nil {
		w.WriteHeader(rep.Status)
		return nil
	}

	defer rep.Body.Close()
	stop := context.AfterFunc(r.Context(), func() {
		rep.Body.Close()
	})
	defer stop()

	w.WriteHeader(rep.Status)

	if r.Method == http.MethodHead {
		return nil
	}

	_, err := io.Copy(w, rep.Body)
	return err
}
