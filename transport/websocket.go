package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// DialWebSocket dials an MQTT-over-WebSocket connection ("ws://" or
// "wss://" URLs, optionally with a path such as "/mqtt") and returns it as
// a net.Conn carrying binary WebSocket frames, matching the read/write
// contract the engine expects from any other transport.
func DialWebSocket(ctx context.Context, rawURL string, tlsConfig *tls.Config) (net.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = "/mqtt"
	}

	dialer := websocket.Dialer{
		Subprotocols:    []string{"mqtt"},
		TLSClientConfig: tlsConfig,
	}

	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	return websocket.NetConn(ctx, ws, websocket.BinaryMessage), nil
}

// WebSocketDialer adapts DialWebSocket to mq's ContextDialer interface. The
// network argument passed by the engine is ignored; scheme (ws/wss) comes
// from the server URL itself.
type WebSocketDialer struct {
	TLSConfig *tls.Config
}

func (d WebSocketDialer) DialContext(ctx context.Context, _, addr string) (net.Conn, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	return DialWebSocket(ctx, addr, d.TLSConfig)
}
