package cluster

import (
	"context"
	"net"
	"time"

	"go.uber.org/atomic"
)

// TCPNode is a peer whose liveness is probed by opening a TCP connection.
type TCPNode struct {
	addr    string
	timeout time.Duration
	alive   atomic.Bool
}

// NewTCPNode creates a node assumed alive until the first failed Ping.
func NewTCPNode(addr string, timeout time.Duration) *TCPNode {
	n := &TCPNode{addr: addr, timeout: timeout}
	n.alive.Store(true)
	return n
}

func (n *TCPNode) Address() string { return n.addr }

func (n *TCPNode) Alive() bool { return n.alive.Load() }

func (n *TCPNode) Ping(ctx context.Context) error {
	d := net.Dialer{Timeout: n.timeout}
	conn, err := d.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		n.alive.Store(false)
		return err
	}
	n.alive.Store(true)
	return conn.Close()
}
