package httpparse

import "github.com/intuitivelabs/bytescase"

// headerNameEntry pairs a framing header name with its HeaderEval.
// headerNameByLen buckets the entries by the byte length of the bare
// name (without the trailing colon), so classification is a length
// lookup followed by a handful of case-insensitive compares instead of
// a full hash table.
type headerNameEntry struct {
	name  []byte
	heval HeaderEval
}

var framingHeaderNames = []headerNameEntry{
	{[]byte("host"), HevalHostname},
	{[]byte("connection"), HevalConnection},
	{[]byte("content-type"), HevalContentType},
	{[]byte("content-length"), HevalContentLength},
	{[]byte("proxy-connection"), HevalProxyConnection},
	{[]byte("transfer-encoding"), HevalTransferEncoding},
}

var headerNameByLen [18][]headerNameEntry

func init() {
	for _, e := range framingHeaderNames {
		n := len(e.name)
		headerNameByLen[n] = append(headerNameByLen[n], e)
	}
}

// classifyHeaderName returns which framing header key matches name
// (case-insensitive), or HevalNone if it is not one of the six the
// parser tracks.
func classifyHeaderName(name []byte) HeaderEval {
	if len(name) >= len(headerNameByLen) {
		return HevalNone
	}
	for _, e := range headerNameByLen[len(name)] {
		if bytescase.CmpEq(name, e.name) {
			return e.heval
		}
	}
	return HevalNone
}
