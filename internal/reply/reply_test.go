package reply

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestSendEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/missing.txt", nil)

	require.NoError(t, Empty(http.StatusNotFound).Send(w, r))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Body.String())
}

func TestSendBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("hello world!")}
	rep := &Reply{
		Status: http.StatusOK,
		Header: http.Header{"Content-Length": []string{"12"}},
		Body:   body,
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)

	require.NoError(t, rep.Send(w, r))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "12", w.Header().Get("Content-Length"))
	require.Equal(t, "hello world!", w.Body.String())
	require.True(t, body.closed)
}

func TestSendHeadSkipsBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("hello world!")}
	rep := &Reply{Status: http.StatusOK, Header: make(http.Header), Body: body}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodHead, "/hello.txt", nil)

	require.NoError(t, rep.Send(w, r))
	require.Empty(t, w.Body.String())
	require.True(t, body.closed)
}

type blockingBody struct {
	once   sync.Once
	closed chan struct{}
}

func (b *blockingBody) Read([]byte) (int, error) {
	<-b.closed
	return 0, errors.New("closed")
}

func (b *blockingBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func TestSendClosesBodyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	body := &blockingBody{closed: make(chan struct{})}
	rep := &Reply{Status: http.StatusOK, Header: make(http.Header), Body: body}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/hello.txt", nil).WithContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- rep.Send(w, r)
	}()

	cancel()
	require.Error(t, <-errCh)
}
