package http

import (
	"bufio"
)

// FixedResponse is sent, unchanged, for every successful request read.
var FixedResponse = NewResponse(StatusOK, []byte(FixedBody))

// Response is a pre-encoded status line, Content-Length header and body.
// No trailing CRLF follows the body.
type Response struct {
	Status uint16
	Body   []byte

	raw []byte
}

func NewResponse(status uint16, body []byte) *Response {
	res := &Response{
		Status: status,
		Body:   body,
	}
	res.raw = res.AppendTo(make([]byte, 0, 64+len(body)))
	return res
}

func (res *Response) AppendTo(dst []byte) []byte {
	var num [20]byte

	dst = append(dst, protocolHttp11...)
	dst = append(dst, ' ')
	n := writeIntToBuffer(int(res.Status), num[:])
	dst = append(dst, num[:n]...)
	dst = append(dst, ' ')
	dst = append(dst, StatusText(res.Status)...)
	dst = append(dst, crlf...)

	dst = append(dst, contentLengthPrefix...)
	n = writeIntToBuffer(len(res.Body), num[:])
	dst = append(dst, num[:n]...)
	dst = append(dst, crlf...)

	dst = append(dst, crlf...)
	dst = append(dst, res.Body...)

	return dst
}

// Bytes returns the encoded response. The slice is shared and must not be modified.
func (res *Response) Bytes() []byte {
	return res.raw
}

// Write sends the whole response and flushes bw.
func (res *Response) Write(bw *bufio.Writer) error {
	if _, err := bw.Write(res.raw); err != nil {
		return err
	}
	return bw.Flush()
}
