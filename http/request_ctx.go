package http

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
)

// ConnCtx is the per-connection state owned by exactly one handler.
type ConnCtx struct {
	ID         uuid.UUID
	Conn       net.Conn
	ConnWriter *bufio.Writer

	Buffer [RequestBufferSize]byte
	N      int
}

func newConnCtx() *ConnCtx {
	return &ConnCtx{
		ConnWriter: bufio.NewWriterSize(nil, DefaultWriteBufferSize),
	}
}

func (connCtx *ConnCtx) Reset(conn net.Conn) {
	connCtx.ID = uuid.New()
	connCtx.Conn = conn
	connCtx.ConnWriter.Reset(conn)
	connCtx.N = 0
}

// ReadRequest performs the single read of a connection. Input beyond the
// buffer capacity is left unread. A peer that closes without sending data
// yields an empty request, not an error.
func (connCtx *ConnCtx) ReadRequest() error {
	n, err := connCtx.Conn.Read(connCtx.Buffer[:])
	connCtx.N = n
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (connCtx *ConnCtx) Request() []byte {
	return connCtx.Buffer[:connCtx.N]
}

func (connCtx *ConnCtx) release() {
	connCtx.Conn = nil
	connCtx.ConnWriter.Reset(nil)
	connCtx.N = 0
}
