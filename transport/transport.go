// Package transport provides the byte-stream collaborators a Client dials
// into: plain TCP, TLS, and WebSocket. Each Dial function returns a
// net.Conn, and the TCPDialer, TLSDialer and WebSocketDialer adapters make
// them usable with mq.WithDialer, keeping the transport concern out of the
// protocol engine itself.
package transport

import (
	"context"
	"crypto/tls"
	"net"
)

// DialTCP dials a plain TCP connection to addr.
func DialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// DialTLS dials a TLS connection to addr. If config is nil, the server name
// for SNI is derived from addr.
func DialTLS(ctx context.Context, addr string, config *tls.Config) (net.Conn, error) {
	if config == nil {
		host, _, _ := net.SplitHostPort(addr)
		config = &tls.Config{ServerName: host}
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	tlsConn := tls.Client(conn, config)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// TCPDialer adapts DialTCP to mq's ContextDialer interface
// (DialContext(ctx, network, addr) (net.Conn, error)).
type TCPDialer struct{}

func (TCPDialer) DialContext(ctx context.Context, _, addr string) (net.Conn, error) {
	return DialTCP(ctx, addr)
}

// TLSDialer adapts DialTLS to mq's ContextDialer interface.
type TLSDialer struct {
	Config *tls.Config
}

func (d TLSDialer) DialContext(ctx context.Context, _, addr string) (net.Conn, error) {
	return DialTLS(ctx, addr, d.Config)
}
