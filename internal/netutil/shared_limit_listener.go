package netutil

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/gitlab-org/fileroute/metrics"
)

var errKeepaliveNotSupported = errors.New("keepalive not supported")

// Limiter is a pool of connection slots that may be shared by several
// listeners. A nil *Limiter imposes no limit.
type Limiter struct {
	sem        chan struct{}
	concurrent prometheus.Gauge
	waiting    prometheus.Gauge
}

// NewLimiter creates a Limiter allowing n simultaneous connections and
// reporting through the listener gauges in the metrics package. It returns
// nil when n is not positive.
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		return nil
	}

	return NewLimiterWithMetrics(n, metrics.LimitListenerMaxConns,
		metrics.LimitListenerConcurrentConns, metrics.LimitListenerWaitingConns)
}

// NewLimiterWithMetrics creates a Limiter with explicit gauges
func NewLimiterWithMetrics(n int, maxConns, concurrent, waiting prometheus.Gauge) *Limiter {
	maxConns.Set(float64(n))

	return &Limiter{
		sem:        make(chan struct{}, n),
		concurrent: concurrent,
		waiting:    waiting,
	}
}

// Wrap returns a listener that only accepts a connection once a slot of the
// limiter is free. The slot is given back when the connection is closed.
func (lim *Limiter) Wrap(listener net.Listener) net.Listener {
	if lim == nil {
		return listener
	}

	return &limitListener{
		Listener: listener,
		limiter:  lim,
		done:     make(chan struct{}),
	}
}

type limitListener struct {
	net.Listener
	limiter   *Limiter
	closeOnce sync.Once
	done      chan struct{} // closed by Close
}

// acquire returns false if the listener was closed before a slot was free
func (l *limitListener) acquire() bool {
	l.limiter.waiting.Inc()
	defer l.limiter.waiting.Dec()

	select {
	case <-l.done:
		return false
	case l.limiter.sem <- struct{}{}:
		l.limiter.concurrent.Inc()
		return true
	}
}

func (l *limitListener) release() {
	<-l.limiter.sem
	l.limiter.concurrent.Dec()
}

func (l *limitListener) Accept() (net.Conn, error) {
	acquired := l.acquire()

	// A closed listener fails Accept right away.
	c, err := l.Listener.Accept()
	if err != nil {
		if acquired {
			l.release()
		}
		return nil, err
	}

	tcpConn, _ := c.(*net.TCPConn)

	return &limitConn{
		Conn:    c,
		tcpConn: tcpConn,
		release: l.release,
	}, nil
}

func (l *limitListener) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.done) })
	return err
}

type limitConn struct {
	net.Conn
	tcpConn     *net.TCPConn
	releaseOnce sync.Once
	release     func()
}

func (c *limitConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}

// SetKeepAlive lets http.Server enable TCP keepalives through the wrapper
func (c *limitConn) SetKeepAlive(enabled bool) error {
	if c.tcpConn == nil {
		return errKeepaliveNotSupported
	}

	return c.tcpConn.SetKeepAlive(enabled)
}

func (c *limitConn) SetKeepAlivePeriod(period time.Duration) error {
	if c.tcpConn == nil {
		return errKeepaliveNotSupported
	}

	return c.tcpConn.SetKeepAlivePeriod(period)
}
