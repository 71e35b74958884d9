package http

const (
	RequestBufferSize      = 1024
	DefaultWriteBufferSize = 4096
	ConnCtxPoolSize        = 1024 // must be power of 2
	FixedBody              = "<h1>Hello from your Go server!</h1>"
)

const StatusOK uint16 = 200

var (
	protocolHttp11      = []byte("HTTP/1.1")
	contentLengthPrefix = []byte("Content-Length: ")
	crlf                = []byte("\r\n")
)

var statusText = map[uint16]string{
	StatusOK: "OK",
}

func StatusText(code uint16) string {
	return statusText[code]
}
