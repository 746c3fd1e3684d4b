// Test utils

package httpparse

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

// randomize case in a string; used for header names and the handful of
// header values the parser itself compares case-insensitively.
func randCase(s string) string {
	r := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch rand.Intn(3) {
		case 0:
			r[i] = bytescase.ByteToLower(b)
		case 1:
			r[i] = bytescase.ByteToUpper(b)
		default:
			r[i] = b
		}
	}
	return string(r)
}

// feedByByte runs p.Run one byte at a time and returns the total number
// of bytes consumed, stopping at the first Run call that reports an
// error and returning that error.
func feedByByte(p *Parser, hooks *Hooks, data []byte) (consumed int, err ErrorKind) {
	for len(data) > 0 {
		n := p.Run(hooks, data[:1])
		if p.Error() != ErrNone {
			return consumed, p.Error()
		}
		consumed += n
		data = data[n:]
	}
	return consumed, ErrNone
}
