package http

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/freekieb7/hello/test"
)

func TestWriteIntToBuffer(t *testing.T) {
	var buf [20]byte

	for _, n := range []int{0, 7, 10, 200, 1024, 9876543210} {
		l := writeIntToBuffer(n, buf[:])
		if got := string(buf[:l]); got != strconv.Itoa(n) {
			t.Errorf("writeIntToBuffer(%d) = %s", n, got)
		}
	}
}

func TestDecodeLossyValid(t *testing.T) {
	in := "GET / HTTP/1.1\r\nHost: localhost\r\n\r\nhéllo"
	test.AssertEqual(t, in, DecodeLossy([]byte(in)))
	test.AssertEqual(t, "", DecodeLossy(nil))
}

func TestDecodeLossyInvalid(t *testing.T) {
	inputs := [][]byte{
		{0xff},
		{'a', 0xc3},
		{0xed, 0xa0, 0x80},
		{'h', 0xfe, 'i', 0x80},
	}

	for _, in := range inputs {
		out := DecodeLossy(in)
		if !utf8.ValidString(out) {
			t.Errorf("DecodeLossy(%x) returned invalid UTF-8", in)
		}
		if !strings.ContainsRune(out, utf8.RuneError) {
			t.Errorf("DecodeLossy(%x) = %q, expected replacement character", in, out)
		}
	}

	test.AssertContains(t, DecodeLossy([]byte{'h', 0xfe, 'i'}), "h")
}
