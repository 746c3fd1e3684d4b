package httpparse

import "bytes"

// Method is the recognized HTTP request method. Unrecognized tokens are
// reported to the Method hook verbatim but leave the Parser's method
// field at whatever it was previously rather than forcing Unknown.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodMkcol
	MethodCopy
	MethodMove
	MethodOptions
	MethodPropfind
	MethodProppatch
	MethodLock
	MethodUnlock
	MethodTrace
	methodMax
)

var method2Name = [methodMax][]byte{
	MethodUnknown:   []byte("UNKNOWN"),
	MethodGet:       []byte("GET"),
	MethodHead:      []byte("HEAD"),
	MethodPost:      []byte("POST"),
	MethodPut:       []byte("PUT"),
	MethodDelete:    []byte("DELETE"),
	MethodMkcol:     []byte("MKCOL"),
	MethodCopy:      []byte("COPY"),
	MethodMove:      []byte("MOVE"),
	MethodOptions:   []byte("OPTIONS"),
	MethodPropfind:  []byte("PROPFIND"),
	MethodProppatch: []byte("PROPPATCH"),
	MethodLock:      []byte("LOCK"),
	MethodUnlock:    []byte("UNLOCK"),
	MethodTrace:     []byte("TRACE"),
}

// Name returns the canonical wire spelling of m.
func (m Method) Name() []byte {
	if int(m) < len(method2Name) {
		return method2Name[m]
	}
	return method2Name[MethodUnknown]
}

func (m Method) String() string { return string(m.Name()) }

// methodLookup buckets the recognized methods by token length, mirroring
// the original parser's fixed-length literal comparisons
// (_str3cmp/_str4cmp/...) instead of a general string-keyed map.
var methodLookup [12][]Method

func init() {
	for m := MethodGet; m < methodMax; m++ {
		n := len(method2Name[m])
		if n < len(methodLookup) {
			methodLookup[n] = append(methodLookup[n], m)
		}
	}
}

// classifyMethod matches tok (already known to be all uppercase letters
// or '_') against the fixed method vocabulary by exact length-bucketed
// comparison. ok is false when nothing matches; callers must then leave
// the previous method value untouched per the parser's documented quirk.
func classifyMethod(tok []byte) (m Method, ok bool) {
	if len(tok) <= 0 || len(tok) >= len(methodLookup) {
		return MethodUnknown, false
	}
	for _, cand := range methodLookup[len(tok)] {
		if bytes.Equal(tok, method2Name[cand]) {
			return cand, true
		}
	}
	return MethodUnknown, false
}
