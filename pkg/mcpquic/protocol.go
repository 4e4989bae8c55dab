// CLAUDE:SUMMARY Wire protocol of MCP over QUIC: ALPN, stream preamble, message limit, transport tuning and error codes.
package mcpquic

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/quic-go/quic-go"
)

// A session is one client-opened bidirectional stream per connection. The
// client writes Preamble first, then both sides exchange newline-delimited
// JSON-RPC messages of at most MaxMessageSize bytes.
const (
	ALPNProtocolMCP = "socialconnect-mcp-v1"
	Preamble        = "MCP1"
	MaxMessageSize  = 1 << 20
)

const (
	handshakeTimeout = 10 * time.Second
	idleTimeout      = 5 * time.Minute
	keepAlive        = 30 * time.Second
)

// Stream error codes.
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// Connection error codes.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
)

var (
	ErrBadPreamble      = errors.New("stream does not start with " + Preamble)
	ErrUnsupportedALPN  = errors.New("peer did not select " + ALPNProtocolMCP)
	ErrConnectionClosed = errors.New("QUIC connection closed")
)

// ConnectionError carries the application error code a connection was
// closed with.
type ConnectionError struct {
	RemoteAddr string
	Code       quic.ApplicationErrorCode
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s error code 0x%02x: %v", e.RemoteAddr, e.Code, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QUICConfig is the transport configuration shared by the client, the
// standalone listener and the chassis.
func QUICConfig() *quic.Config {
	return &quic.Config{
		HandshakeIdleTimeout:       handshakeTimeout,
		MaxIdleTimeout:             idleTimeout,
		KeepAlivePeriod:            keepAlive,
		MaxStreamReceiveWindow:     4 * MaxMessageSize,
		MaxConnectionReceiveWindow: 16 * MaxMessageSize,
	}
}

// WritePreamble opens a session stream.
func WritePreamble(w io.Writer) error {
	if _, err := io.WriteString(w, Preamble); err != nil {
		return fmt.Errorf("write preamble: %w", err)
	}
	return nil
}

// ReadPreamble consumes the session preamble and rejects streams that open
// with anything else, such as an HTTP/3 peer that negotiated the wrong ALPN.
func ReadPreamble(r io.Reader) error {
	var got [len(Preamble)]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return fmt.Errorf("read preamble: %w", err)
	}
	if string(got[:]) != Preamble {
		return fmt.Errorf("%w: got %q", ErrBadPreamble, got[:])
	}
	return nil
}
