package httpparse

import (
	"bytes"
	"testing"
)

// hookLog records hook invocations in order, copying every byte slice
// handed to a data hook since the parser only guarantees those slices
// are valid for the duration of the call.
type hookLog struct {
	events []string
}

func (l *hookLog) event(name string) int {
	l.events = append(l.events, name)
	return 0
}

func (l *hookLog) data(name string) DataHook {
	return func(p *Parser, b []byte) int {
		l.events = append(l.events, name+"("+string(append([]byte(nil), b...))+")")
		return 0
	}
}

func (l *hookLog) hooks() *Hooks {
	return &Hooks{
		MsgBegin:       func(p *Parser) int { return l.event("MsgBegin") },
		HdrsBegin:      func(p *Parser) int { return l.event("HdrsBegin") },
		HdrsComplete:   func(p *Parser) int { return l.event("HdrsComplete") },
		NewChunk:       func(p *Parser) int { return l.event("NewChunk") },
		ChunkComplete:  func(p *Parser) int { return l.event("ChunkComplete") },
		ChunksComplete: func(p *Parser) int { return l.event("ChunksComplete") },
		MsgComplete:    func(p *Parser) int { return l.event("MsgComplete") },
		Method:         l.data("Method"),
		Scheme:         l.data("Scheme"),
		Host:           l.data("Host"),
		Port:           l.data("Port"),
		Path:           l.data("Path"),
		Args:           l.data("Args"),
		Uri:            l.data("Uri"),
		HdrKey:         l.data("HdrKey"),
		HdrVal:         l.data("HdrVal"),
		Body:           l.data("Body"),
		Hostname:       l.data("Hostname"),
	}
}

func (l *hookLog) count(name string) int {
	n := 0
	for _, e := range l.events {
		if e == name {
			n++
		}
	}
	return n
}

func (l *hookLog) contains(name string) bool {
	for _, e := range l.events {
		if e == name {
			return true
		}
	}
	return false
}

// scenario A: minimal GET.
func TestScenarioMinimalGet(t *testing.T) {
	in := []byte("GET / HTTP/1.0\r\n\r\n")
	p := New(Request)
	log := &hookLog{}
	n := p.Run(log.hooks(), in)

	if p.Error() != ErrNone {
		t.Fatalf("unexpected error %v", p.Error())
	}
	if n != len(in) {
		t.Fatalf("consumed %d, want %d", n, len(in))
	}
	want := []string{"MsgBegin", "Method(GET)", "Path(/)", "Uri(/)", "HdrsBegin", "HdrsComplete", "MsgComplete"}
	if !equalStrings(log.events, want) {
		t.Fatalf("hooks = %v, want %v", log.events, want)
	}
	if p.Method() != MethodGet {
		t.Errorf("method = %v, want GET", p.Method())
	}
	if p.Major() != 1 || p.Minor() != 0 {
		t.Errorf("version = %d.%d, want 1.0", p.Major(), p.Minor())
	}
	if p.ContentLength() != 0 {
		t.Errorf("content length = %d, want 0", p.ContentLength())
	}
	if p.ShouldKeepAlive() {
		t.Errorf("should-keep-alive = true, want false for HTTP/1.0 with no Connection header")
	}
}

// scenario B: POST with an explicit body.
func TestScenarioPostWithBody(t *testing.T) {
	in := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	p := New(Request)
	log := &hookLog{}
	n := p.Run(log.hooks(), in)

	if p.Error() != ErrNone {
		t.Fatalf("unexpected error %v", p.Error())
	}
	if n != len(in) {
		t.Fatalf("consumed %d, want %d", n, len(in))
	}
	for _, want := range []string{"HdrKey(Content-Length)", "HdrVal(5)", "Body(hello)", "MsgComplete"} {
		if !log.contains(want) {
			t.Errorf("missing hook %q in %v", want, log.events)
		}
	}
	if p.ContentLength() != 0 {
		t.Errorf("content length = %d, want 0", p.ContentLength())
	}
	if !p.ShouldKeepAlive() {
		t.Errorf("should-keep-alive = false, want true for HTTP/1.1 with no Connection: close")
	}
}

// scenario C: chunked transfer.
func TestScenarioChunkedTransfer(t *testing.T) {
	in := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n")
	p := New(Request)
	log := &hookLog{}
	n := p.Run(log.hooks(), in)

	if p.Error() != ErrNone {
		t.Fatalf("unexpected error %v", p.Error())
	}
	if n != len(in) {
		t.Fatalf("consumed %d, want %d", n, len(in))
	}
	for _, want := range []string{"NewChunk", "Body(hello)", "ChunkComplete", "ChunksComplete", "MsgComplete"} {
		if !log.contains(want) {
			t.Errorf("missing hook %q in %v", want, log.events)
		}
	}
}

// scenario D: a 100-continue informational response is discarded, and
// only the genuine 200 response produces a complete message cycle.
func TestScenarioInformationalResponseDiscarded(t *testing.T) {
	in := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
	p := New(Response)
	log := &hookLog{}
	n := p.Run(log.hooks(), in)

	if p.Error() != ErrNone {
		t.Fatalf("unexpected error %v", p.Error())
	}
	if n != len(in) {
		t.Fatalf("consumed %d, want %d", n, len(in))
	}
	if log.count("MsgComplete") != 1 {
		t.Errorf("MsgComplete fired %d times, want 1", log.count("MsgComplete"))
	}
	if log.count("HdrsBegin") != 1 {
		t.Errorf("HdrsBegin fired %d times, want 1 (the 100 response has no headers block)", log.count("HdrsBegin"))
	}
	if p.Status() != 200 {
		t.Errorf("status = %d, want 200", p.Status())
	}
}

// scenario E: an obs-fold continuation line is merged into the previous
// header's value without a second HdrKey firing.
func TestScenarioFoldedHeader(t *testing.T) {
	in := []byte("GET / HTTP/1.1\r\nX: a\r\n\tb\r\n\r\n")
	p := New(Request)
	log := &hookLog{}
	n := p.Run(log.hooks(), in)

	if p.Error() != ErrNone {
		t.Fatalf("unexpected error %v", p.Error())
	}
	if n != len(in) {
		t.Fatalf("consumed %d, want %d", n, len(in))
	}
	if log.count("HdrKey(X)") != 1 {
		t.Errorf("HdrKey(X) fired %d times, want 1", log.count("HdrKey(X)"))
	}
	hdrValCount := 0
	found := false
	for _, e := range log.events {
		if len(e) > 7 && e[:7] == "HdrVal(" {
			hdrValCount++
			val := e[7 : len(e)-1]
			if !bytes.Contains([]byte(val), []byte("a")) || !bytes.Contains([]byte(val), []byte("\tb")) {
				t.Errorf("HdrVal = %q, want it to contain both \"a\" and \"\\tb\"", val)
			}
			found = true
		}
	}
	if hdrValCount != 1 {
		t.Fatalf("HdrVal fired %d times, want 1, events=%v", hdrValCount, log.events)
	}
	if !found {
		t.Fatalf("no HdrVal event found, events=%v", log.events)
	}
}

// scenario F: a lowercase method is rejected immediately.
func TestScenarioMalformedMethod(t *testing.T) {
	in := []byte("get / HTTP/1.0\r\n\r\n")
	p := New(Request)
	n := p.Run(nil, in)
	if n != 1 {
		t.Errorf("consumed = %d, want 1", n)
	}
	if p.Error() != ErrInvalReqLine {
		t.Errorf("error = %v, want ErrInvalReqLine", p.Error())
	}
}

// property 1: feeding a buffer whole or one byte at a time produces the
// same hook sequence and the same final parser state. The Body hook
// fires once per Run call with the bytes that call carries, so adjacent
// Body events are merged before the two sequences are compared.
func TestByteByByteEquivalence(t *testing.T) {
	inputs := [][]byte{
		[]byte("GET / HTTP/1.0\r\n\r\n"),
		[]byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"),
		[]byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"),
		[]byte("GET / HTTP/1.1\r\nX: a\r\n\tb\r\n\r\n"),
	}
	for _, in := range inputs {
		whole := New(Request)
		wholeLog := &hookLog{}
		whole.Run(wholeLog.hooks(), in)

		split := New(Request)
		splitLog := &hookLog{}
		for i := range in {
			split.Run(splitLog.hooks(), in[i:i+1])
			if split.Error() != ErrNone {
				t.Fatalf("%q: byte-by-byte run failed at %d: %v", in, i, split.Error())
			}
		}

		wholeEvents, splitEvents := mergeBodyEvents(wholeLog.events), mergeBodyEvents(splitLog.events)
		if !equalStrings(wholeEvents, splitEvents) {
			t.Fatalf("%q: whole=%v split=%v", in, wholeEvents, splitEvents)
		}
		if whole.state != split.state {
			t.Errorf("%q: final state whole=%v split=%v", in, whole.state, split.state)
		}
	}
}

// property 3: scratch never exceeds its fixed capacity; an oversized
// token aborts with TooBig instead of growing the buffer.
func TestScratchOverflowAbortsWithTooBig(t *testing.T) {
	huge := bytes.Repeat([]byte("a"), scratchCap+10)
	in := append([]byte("GET /"), huge...)
	in = append(in, []byte(" HTTP/1.0\r\n\r\n")...)

	p := New(Request)
	p.Run(nil, in)
	if p.Error() != ErrTooBig {
		t.Fatalf("error = %v, want ErrTooBig", p.Error())
	}
}

// mergeBodyEvents joins runs of adjacent "Body(...)" events into one
// event carrying the concatenated bytes.
func mergeBodyEvents(events []string) []string {
	var out []string
	for _, e := range events {
		if n := len(out); n > 0 && len(e) > 5 && e[:5] == "Body(" && len(out[n-1]) > 5 && out[n-1][:5] == "Body(" {
			prev := out[n-1]
			out[n-1] = prev[:len(prev)-1] + e[5:]
			continue
		}
		out = append(out, e)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
