package httpparse

import (
	"bytes"

	"github.com/intuitivelabs/bytescase"
)

// Parser is an incremental HTTP/1.x message parser. The zero value is
// not usable; construct with New. A Parser instance must never be used
// from more than one goroutine and must never be re-entered from inside
// one of its own hook callbacks.
type Parser struct {
	typ   MsgType
	state State
	flags Flags
	heval HeaderEval

	scheme Scheme
	method Method
	major  uint8
	minor  uint8

	status      uint16
	statusCount uint8

	contentLen     int64 // -1 means "not yet known"
	bytesRead      int
	totalBytesRead int64
	multipart      bool

	scr scratch

	schemeOffset int
	hostOffset   int
	portOffset   int
	pathOffset   int
	argsOffset   int

	userdata interface{}
	err      ErrorKind
	hdrSeen  bool

	// pendingReset is set by finishMessage and cleared by Start once the
	// next message's first real byte arrives. While set, status/flags/
	// heval/contentLen still report the message that just completed, so
	// the inspector API stays valid for a caller reading it right after
	// Run returns.
	pendingReset bool

	hooks *Hooks
}

var zeroHooks = &Hooks{}

// New constructs a Parser fixed to decode requests or responses.
func New(t MsgType) *Parser {
	p := &Parser{typ: t}
	p.resetMessage()
	return p
}

// Reset restores a Parser as if newly constructed, including the
// lifetime byte counter. The end-of-message reset that preserves
// TotalBytesRead is finishMessage (internal).
func (p *Parser) Reset() {
	t := p.typ
	*p = Parser{}
	p.typ = t
	p.resetMessage()
}

// resetMessage establishes the "no message parsed yet" defaults
// immediately. Used by New/Reset, where there is no prior message's
// data an inspector could be reading.
func (p *Parser) resetMessage() {
	p.state = Start
	p.flags = 0
	p.heval = HevalNone
	p.contentLen = -1
	p.status = 0
	p.statusCount = 0
	p.schemeOffset = -1
	p.hostOffset = -1
	p.portOffset = -1
	p.pathOffset = -1
	p.argsOffset = -1
	p.scr.reset()
	p.hdrSeen = false
	p.pendingReset = false
	// method, major, minor, multipart and scheme are deliberately left
	// untouched here: nothing in the data model lists them as reset at
	// a message boundary, and a pipelined connection is expected to
	// carry the previous message's method forward until a new one is
	// recognized.
}

// finishMessage prepares the parser to read the next message's first
// line. Unlike resetMessage, it leaves status/flags/heval/contentLen
// in place so Status/ContentLength/ShouldKeepAlive still report the
// message that just completed; those fields are cleared lazily by
// Start once the next message's first real byte arrives.
func (p *Parser) finishMessage() {
	p.state = Start
	p.schemeOffset = -1
	p.hostOffset = -1
	p.portOffset = -1
	p.pathOffset = -1
	p.argsOffset = -1
	p.scr.reset()
	p.hdrSeen = false
	p.pendingReset = true
}

// Run drives the state machine over data, returning the number of bytes
// consumed. Feeding the same bytes one at a time or all at once produces
// identical hook call sequences, except that the Body hook fires once
// per Run call with the body bytes available in that call, so body data
// may arrive split into more, smaller slices.
func (p *Parser) Run(hooks *Hooks, data []byte) (consumed int) {
	if hooks == nil {
		hooks = zeroHooks
	}
	p.hooks = hooks
	p.bytesRead = 0
	p.err = ErrNone
	defer func() {
		p.bytesRead = consumed
		p.totalBytesRead += int64(consumed)
	}()

	for i := 0; i < len(data); i++ {
		if p.scr.full() {
			p.err = ErrTooBig
			return i + 1
		}
		ch := data[i]

		switch p.state {

		case Start:
			if ch == '\r' || ch == '\n' {
				continue
			}
			if p.pendingReset {
				p.flags = 0
				p.heval = HevalNone
				p.contentLen = -1
				p.status = 0
				p.statusCount = 0
				p.pendingReset = false
			}
			if p.fireEvent(hooks.MsgBegin) {
				p.err = ErrUser
				return i + 1
			}
			switch {
			case p.typ == Request && (isUpperAlpha(ch) || ch == '_'):
				p.scr.put(ch)
				p.state = StMethod
			case p.typ == Response && ch == 'H':
				p.scr.put(ch)
				p.state = HttpH
			default:
				p.err = ErrInvalReqLine
				return i + 1
			}

		case StMethod:
			switch {
			case ch == ' ':
				tok := p.scr.bytes()
				if m, ok := classifyMethod(tok); ok {
					p.method = m
				}
				if p.fireData(hooks.Method, tok) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.reset()
				p.state = SpacesBeforeUri
			case isUpperAlpha(ch) || ch == '_':
				p.scr.put(ch)
			default:
				p.err = ErrInvalMethod
				return i + 1
			}

		case SpacesBeforeUri:
			switch {
			case ch == ' ':
			case ch == '/':
				p.pathOffset = p.scr.idx
				p.scr.put(ch)
				p.state = AfterSlashInUri
			case lowerCh(ch) >= 'a' && lowerCh(ch) <= 'z':
				p.schemeOffset = p.scr.idx
				p.scr.put(ch)
				p.state = Schema
			default:
				p.err = ErrInvalReqLine
				return i + 1
			}

		case Schema:
			switch {
			case ch == ':':
				tok := p.scr.slice(p.schemeOffset)
				p.scheme = classifySchemeTok(tok)
				if p.fireData(hooks.Scheme, tok) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.put(ch)
				p.state = SchemaSlash
			case isAlpha(ch):
				p.scr.put(ch)
			default:
				p.err = ErrInvalSchema
				return i + 1
			}

		case SchemaSlash:
			if ch != '/' {
				p.err = ErrInvalSchema
				return i + 1
			}
			p.scr.put(ch)
			p.state = SchemaSlashSlash

		case SchemaSlashSlash:
			if ch != '/' {
				p.err = ErrInvalSchema
				return i + 1
			}
			p.scr.put(ch)
			p.hostOffset = p.scr.idx
			p.state = Host

		case Host:
			switch {
			case isAlpha(ch) || isDigit(ch) || ch == '.' || ch == '-':
				p.scr.put(ch)
			case ch == ':':
				if p.fireData(hooks.Host, p.scr.slice(p.hostOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.put(ch)
				p.portOffset = p.scr.idx
				p.state = Port
			case ch == ' ':
				if p.fireData(hooks.Host, p.scr.slice(p.hostOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.pathOffset = p.scr.idx
				p.state = AfterSlashInUri
				i--
			case ch == '/':
				if p.fireData(hooks.Host, p.scr.slice(p.hostOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.pathOffset = p.scr.idx
				p.scr.put(ch)
				p.state = AfterSlashInUri
			default:
				p.err = ErrInvalReqLine
				return i + 1
			}

		case Port:
			switch {
			case isDigit(ch):
				p.scr.put(ch)
			case ch == '/':
				if p.fireData(hooks.Port, p.scr.slice(p.portOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.pathOffset = p.scr.idx
				p.scr.put(ch)
				p.state = AfterSlashInUri
			case ch == ' ':
				if p.fireData(hooks.Port, p.scr.slice(p.portOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.reset()
				p.state = Http09
			default:
				p.err = ErrInvalReqLine
				return i + 1
			}

		case AfterSlashInUri:
			switch {
			case ch == ' ':
				if p.fireURIEnd() {
					p.err = ErrUser
					return i + 1
				}
				p.scr.reset()
				p.state = Http09
			case ch == '\r':
				p.minor = 9
				p.state = AlmostDone
			case ch == '\n':
				p.minor = 9
				p.state = HdrlineStart
			case ch == '.' || ch == '%' || ch == '/' || ch == '#':
				p.scr.put(ch)
				p.state = Uri
			case ch == '?':
				if p.fireData(hooks.Path, p.scr.slice(p.pathOffset)) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.put(ch)
				p.argsOffset = p.scr.idx
				p.state = Uri
			case isURIChar(ch):
				p.scr.put(ch)
				p.state = CheckUri
			default:
				p.scr.put(ch)
				p.state = CheckUri
			}

		case CheckUri, Uri:
			switch {
			case ch == ' ':
				if p.fireURIEnd() {
					p.err = ErrUser
					return i + 1
				}
				p.scr.reset()
				p.state = Http09
			case ch == '\r':
				p.minor = 9
				p.state = AlmostDone
			case ch == '\n':
				p.minor = 9
				p.state = HdrlineStart
			case ch == '?':
				if p.argsOffset < 0 {
					if p.fireData(hooks.Path, p.scr.slice(p.pathOffset)) {
						p.err = ErrUser
						return i + 1
					}
					p.scr.put(ch)
					p.argsOffset = p.scr.idx
				} else {
					p.scr.put(ch)
				}
				p.state = Uri
			case ch == '/' && p.state == CheckUri:
				p.scr.put(ch)
			case isURIChar(ch) && p.state == CheckUri:
				p.scr.put(ch)
			default:
				p.scr.put(ch)
				p.state = Uri
			}

		case Http09:
			switch {
			case ch == ' ':
			case ch == 'H':
				p.state = HttpH
			case ch == '\r':
				p.minor = 9
				p.state = AlmostDone
			case ch == '\n':
				p.minor = 9
				p.state = HdrlineStart
			default:
				p.err = ErrInvalProto
				return i + 1
			}

		case HttpH:
			if ch != 'T' {
				p.err = ErrInvalProto
				return i + 1
			}
			p.state = HttpHT
		case HttpHT:
			if ch != 'T' {
				p.err = ErrInvalProto
				return i + 1
			}
			p.state = HttpHTT
		case HttpHTT:
			if ch != 'P' {
				p.err = ErrInvalProto
				return i + 1
			}
			p.state = HttpHTTP
		case HttpHTTP:
			if ch != '/' {
				p.err = ErrInvalProto
				return i + 1
			}
			p.state = FirstMajorDigit

		case FirstMajorDigit:
			if ch < '1' || ch > '9' {
				p.err = ErrInvalVer
				return i + 1
			}
			p.major = ch - '0'
			p.state = MajorDigit

		case MajorDigit:
			switch {
			case ch == '.':
				p.state = FirstMinorDigit
			case isDigit(ch):
				p.major = p.major*10 + (ch - '0')
			default:
				p.err = ErrInvalVer
				return i + 1
			}

		case FirstMinorDigit:
			if !isDigit(ch) {
				p.err = ErrInvalVer
				return i + 1
			}
			p.minor = ch - '0'
			p.state = MinorDigit

		case MinorDigit:
			switch {
			case ch == ' ':
				if p.typ == Request {
					p.state = SpacesAfterDigit
				} else {
					p.state = Status
				}
			case ch == '\r':
				p.state = AlmostDone
			case ch == '\n':
				p.err = ErrInvalReqLine
				return i + 1
			case isDigit(ch):
				p.minor = p.minor*10 + (ch - '0')
			default:
				p.err = ErrInvalVer
				return i + 1
			}

		case SpacesAfterDigit:
			switch {
			case ch == ' ':
			case ch == '\r':
				p.state = AlmostDone
			case ch == '\n':
				p.state = HdrlineStart
			default:
				p.err = ErrInvalVer
				return i + 1
			}

		case Status:
			switch {
			case ch == ' ' && p.status > 0:
				p.state = StatusText
			case isDigit(ch):
				p.status = p.status*10 + uint16(ch-'0')
				p.statusCount++
				if p.statusCount == 3 {
					p.state = SpaceAfterStatus
				}
			default:
				p.err = ErrInvalReqLine
				return i + 1
			}

		case SpaceAfterStatus:
			switch ch {
			case ' ':
				p.state = StatusText
			case '\r':
				p.state = AlmostDone
			case '\n':
				p.state = HdrlineStart
			default:
				p.state = StatusText
			}

		case StatusText:
			switch ch {
			case '\r':
				p.state = AlmostDone
			case '\n':
				p.state = HdrlineStart
			}

		case AlmostDone:
			if ch != '\n' {
				p.err = ErrInvalReqLine
				return i + 1
			}
			if p.typ == Response && p.status >= 100 && p.status < 200 {
				p.status = 0
				p.statusCount = 0
				p.state = Start
				continue
			}
			if p.fireEvent(hooks.HdrsBegin) {
				p.err = ErrUser
				return i + 1
			}
			p.state = Done

		case Done:
			switch ch {
			case '\r':
				// Same target HdrlineStart uses for a blank line. Scratch
				// is not reset here (a response line still holds its
				// leading 'H'); the blank-line path never reads it.
				p.state = HdrlineHdrAlmostDone
			case '\n':
				p.contentLen = 0
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			default:
				p.state = HdrlineStart
				i--
			}

		case HdrlineStart:
			p.scr.reset()
			switch ch {
			case '\r':
				p.state = HdrlineHdrAlmostDone
			case '\n':
				if !p.hdrSeen {
					next, complete, abort := p.finishHeaderBlock()
					if abort != ErrNone {
						p.err = abort
						return i + 1
					}
					if complete {
						return i + 1
					}
					p.state = next
				} else {
					p.state = HdrlineHdrDone
				}
			default:
				p.scr.put(ch)
				p.state = HdrlineHdrKey
			}

		case HdrlineHdrKey:
			switch ch {
			case ':':
				key := p.scr.bytes()
				if p.fireData(hooks.HdrKey, key) {
					p.err = ErrUser
					return i + 1
				}
				p.heval = classifyHeaderName(key)
				p.hdrSeen = true
				p.scr.reset()
				p.state = HdrlineHdrSpaceBeforeVal
			case '\r':
				p.state = HdrlineHdrAlmostDone
			case '\n':
				p.state = HdrlineHdrDone
			default:
				p.scr.put(ch)
			}

		case HdrlineHdrSpaceBeforeVal:
			switch {
			case ch == ' ':
			case ch == '\r':
				p.scr.put(' ')
				p.state = HdrlineHdrVal
				i--
			case ch == '\n':
				p.err = ErrInvalHdr
				return i + 1
			default:
				p.scr.put(ch)
				p.state = HdrlineHdrVal
			}

		case HdrlineHdrVal:
			switch ch {
			case '\r':
				if kind := p.interpretHeaderVal(); kind != ErrNone {
					p.err = kind
					return i + 1
				}
				p.state = HdrlineHdrAlmostDone
			case '\n':
				p.err = ErrInvalHdr
				return i + 1
			default:
				p.scr.put(ch)
			}

		case HdrlineHdrAlmostDone:
			if ch != '\n' {
				p.err = ErrInvalHdr
				return i + 1
			}
			if p.flags.Has(FlagTrailing) {
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			}
			if !p.hdrSeen {
				next, complete, abort := p.finishHeaderBlock()
				if abort != ErrNone {
					p.err = abort
					return i + 1
				}
				if complete {
					return i + 1
				}
				p.state = next
			} else {
				p.state = HdrlineHdrDone
			}

		case HdrlineHdrDone:
			switch ch {
			case '\r':
				if p.fireData(hooks.HdrVal, p.scr.bytes()) {
					p.err = ErrUser
					return i + 1
				}
				if p.fireEvent(hooks.HdrsComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.state = HdrlineAlmostDone
			case '\n':
				p.err = ErrInvalHdr
				return i + 1
			case '\t':
				p.scr.put(ch)
				p.state = HdrlineHdrVal
			default:
				if p.fireData(hooks.HdrVal, p.scr.bytes()) {
					p.err = ErrUser
					return i + 1
				}
				p.scr.reset()
				p.scr.put(ch)
				p.state = HdrlineHdrKey
			}

		case HdrlineAlmostDone:
			if ch != '\n' {
				p.err = ErrInvalHdr
				return i + 1
			}
			switch {
			case p.flags.Has(FlagTrailing):
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			case p.flags.Has(FlagChunked):
				p.state = ChunkSizeStart
			case p.contentLen > 0:
				p.state = BodyRead
			case p.contentLen == 0:
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			default:
				p.state = HdrlineDone
			}

		case HdrlineDone:
			i--
			switch {
			case p.flags.Has(FlagTrailing):
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			case p.flags.Has(FlagChunked):
				p.state = ChunkSizeStart
			case p.contentLen > 0:
				p.state = BodyRead
			default:
				p.contentLen = 0
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			}

		case BodyRead:
			remaining := len(data) - i
			toRead := remaining
			if int64(toRead) > p.contentLen {
				toRead = int(p.contentLen)
			}
			if toRead > 0 {
				if p.fireData(hooks.Body, data[i:i+toRead]) {
					p.err = ErrUser
					return i + toRead
				}
				p.contentLen -= int64(toRead)
				i += toRead - 1
			}
			if p.contentLen == 0 {
				if p.fireEvent(hooks.MsgComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.finishMessage()
				return i + 1
			}

		case ChunkSizeStart:
			if !isHexDigit(ch) {
				p.err = ErrInvalChunkSz
				return i + 1
			}
			p.contentLen = int64(hexVal[ch])
			p.state = ChunkSize

		case ChunkSize:
			switch {
			case isHexDigit(ch):
				p.contentLen = p.contentLen*16 + int64(hexVal[ch])
			case ch == '\r':
				p.state = ChunkSizeAlmostDone
			default:
				p.err = ErrInvalChunkSz
				return i + 1
			}

		case ChunkSizeAlmostDone:
			if ch != '\n' {
				p.err = ErrInvalChunkSz
				return i + 1
			}
			if p.contentLen == 0 {
				if p.fireEvent(hooks.ChunksComplete) {
					p.err = ErrUser
					return i + 1
				}
				p.flags.Set(FlagTrailing)
				p.state = HdrlineStart
			} else {
				if p.fireEvent(hooks.NewChunk) {
					p.err = ErrUser
					return i + 1
				}
				p.state = ChunkData
			}

		case ChunkData:
			remaining := len(data) - i
			toRead := remaining
			if int64(toRead) > p.contentLen {
				toRead = int(p.contentLen)
			}
			if toRead > 0 {
				if p.fireData(hooks.Body, data[i:i+toRead]) {
					p.err = ErrUser
					return i + toRead
				}
				p.contentLen -= int64(toRead)
				i += toRead - 1
			}
			if p.contentLen == 0 {
				p.state = ChunkDataAlmostDone
			}

		case ChunkDataAlmostDone:
			if ch != '\r' {
				p.err = ErrInvalChunk
				return i + 1
			}
			p.state = ChunkDataDone

		case ChunkDataDone:
			if ch != '\n' {
				p.err = ErrInvalChunk
				return i + 1
			}
			if p.fireEvent(hooks.ChunkComplete) {
				p.err = ErrUser
				return i + 1
			}
			p.state = ChunkSizeStart

		default:
			p.err = ErrInvalState
			return i + 1
		}
	}
	return len(data)
}

// finishHeaderBlock fires HdrsComplete for a header block that contained
// no header lines at all (the request/status line's terminator was
// immediately followed by the blank line) and applies the same
// chunked/content-length decision HdrlineAlmostDone uses for the normal
// case. There is no pending header value to report here, so HdrVal is
// not fired. complete is true when the call already issued the return
// the caller should perform (MsgComplete fired and the message reset).
func (p *Parser) finishHeaderBlock() (next State, complete bool, abort ErrorKind) {
	if p.fireEvent(p.hooks.HdrsComplete) {
		return Start, false, ErrUser
	}
	switch {
	case p.flags.Has(FlagChunked):
		return ChunkSizeStart, false, ErrNone
	case p.contentLen > 0:
		return BodyRead, false, ErrNone
	default:
		p.contentLen = 0
		if p.fireEvent(p.hooks.MsgComplete) {
			return Start, false, ErrUser
		}
		p.finishMessage()
		return Start, true, ErrNone
	}
}

// fireURIEnd emits the Path-or-Args hook followed by the Uri hook for
// the token accumulated since the last reset. Returns true if a hook
// aborted.
func (p *Parser) fireURIEnd() bool {
	if p.argsOffset >= 0 {
		if p.fireData(p.hooks.Args, p.scr.slice(p.argsOffset)) {
			return true
		}
	} else {
		if p.fireData(p.hooks.Path, p.scr.slice(p.pathOffset)) {
			return true
		}
	}
	return p.fireData(p.hooks.Uri, p.scr.bytes())
}

// interpretHeaderVal reacts to a fully accumulated header value
// according to p.heval. It returns ErrNone on success, or the
// ErrorKind that should terminate the Run call.
func (p *Parser) interpretHeaderVal() ErrorKind {
	val := p.scr.bytes()
	switch p.heval {
	case HevalHostname:
		if p.fireData(p.hooks.Hostname, val) {
			return ErrUser
		}
	case HevalContentLength:
		n, ok := parseContentLength(val)
		if !ok {
			return ErrTooBig
		}
		p.contentLen = n
	case HevalConnection:
		// Case-sensitive past the first letter per the documented quirk:
		// "Keep-Alive" matches, "keep-alive" does not.
		if len(val) >= 10 && (val[0] == 'K' || val[0] == 'k') && bytes.Equal(val[1:10], []byte("eep-Alive")) {
			p.flags.Set(FlagConnectionKeepAlive)
		} else if bytescase.CmpEq(val, []byte("close")) {
			p.flags.Set(FlagConnectionClose)
		}
	case HevalTransferEncoding:
		if bytescase.CmpEq(val, []byte("chunked")) {
			p.flags.Set(FlagChunked)
		}
	case HevalContentType:
		if len(val) >= 9 && (val[0] == 'm' || val[0] == 'M') && bytes.Equal(val[1:9], []byte("ultipart")) {
			p.multipart = true
		}
	}
	return ErrNone
}

func parseContentLength(val []byte) (int64, bool) {
	if len(val) == 0 || len(val) > 20 {
		return 0, false
	}
	var n uint64
	for _, c := range val {
		if !isDigit(c) {
			return 0, false
		}
		prev := n
		n = n*10 + uint64(c-'0')
		if n < prev {
			return 0, false
		}
	}
	if n > uint64(1)<<63-1 {
		return 0, false
	}
	return int64(n), true
}

func isAlpha(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func classifySchemeTok(tok []byte) Scheme {
	switch len(tok) {
	case 3:
		if bytescase.CmpEq(tok, []byte("ftp")) {
			return SchemeFTP
		}
		if bytescase.CmpEq(tok, []byte("nfs")) {
			return SchemeNFS
		}
	case 4:
		if bytescase.CmpEq(tok, []byte("http")) {
			return SchemeHTTP
		}
	case 5:
		if bytescase.CmpEq(tok, []byte("https")) {
			return SchemeHTTPS
		}
	}
	return SchemeUnknown
}
