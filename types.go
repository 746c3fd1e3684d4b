// Package httpparse implements an incremental, non-buffering HTTP/1.x
// message parser: a byte-driven state machine that consumes arbitrary
// chunks of a request or response stream and emits callbacks for the
// structural elements it recognizes. It never allocates per-message
// storage, never owns a transport, and only interprets as much header
// semantics as message framing requires.
package httpparse

// MsgType fixes whether a Parser decodes requests or responses. It is
// set once at construction and never changes.
type MsgType uint8

const (
	Request MsgType = iota
	Response
)

func (t MsgType) String() string {
	if t == Response {
		return "response"
	}
	return "request"
}

// Flags records framing-relevant bits accumulated while parsing headers.
type Flags uint8

const (
	FlagChunked Flags = 1 << iota
	FlagConnectionKeepAlive
	FlagConnectionClose
	FlagTrailing
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }
func (f *Flags) Set(bit Flags)     { *f |= bit }
func (f *Flags) Clear(bit Flags)   { *f &^= bit }

// HeaderEval names which framing header is being read while inside a
// header value state. Six header names are recognized; all but
// Proxy-Connection have their value acted on.
type HeaderEval uint8

const (
	HevalNone HeaderEval = iota
	HevalConnection
	HevalProxyConnection
	HevalContentLength
	HevalTransferEncoding
	HevalHostname
	HevalContentType
)

var hevalNames = [...]string{
	"none", "connection", "proxy-connection", "content-length",
	"transfer-encoding", "hostname", "content-type",
}

func (h HeaderEval) String() string {
	if int(h) < len(hevalNames) {
		return hevalNames[h]
	}
	return "unknown"
}

// Scheme is the URI scheme recognized in an absolute-form request target.
type Scheme uint8

const (
	SchemeUnknown Scheme = iota
	SchemeHTTP
	SchemeHTTPS
	SchemeFTP
	SchemeNFS
)

var schemeNames = [...]string{"unknown", "http", "https", "ftp", "nfs"}

func (s Scheme) String() string {
	if int(s) < len(schemeNames) {
		return schemeNames[s]
	}
	return "unknown"
}

// State enumerates every state the byte machine may occupy. Names follow
// the original C parser's state names so the two can be read side by
// side.
type State uint8

const (
	Start State = iota
	StMethod
	SpacesBeforeUri
	Schema
	SchemaSlash
	SchemaSlashSlash
	Host
	Port
	AfterSlashInUri
	CheckUri
	Uri
	Http09
	HttpH
	HttpHT
	HttpHTT
	HttpHTTP
	FirstMajorDigit
	MajorDigit
	FirstMinorDigit
	MinorDigit
	SpacesAfterDigit
	Status
	SpaceAfterStatus
	StatusText
	AlmostDone
	Done
	HdrlineStart
	HdrlineHdrKey
	HdrlineHdrSpaceBeforeVal
	HdrlineHdrVal
	HdrlineHdrAlmostDone
	HdrlineHdrDone
	HdrlineAlmostDone
	HdrlineDone
	BodyRead
	ChunkSizeStart
	ChunkSize
	ChunkSizeAlmostDone
	ChunkData
	ChunkDataAlmostDone
	ChunkDataDone
	numStates
)

var stateNames = [...]string{
	"Start", "Method", "SpacesBeforeUri", "Schema", "SchemaSlash",
	"SchemaSlashSlash", "Host", "Port", "AfterSlashInUri", "CheckUri",
	"Uri", "Http09", "HttpH", "HttpHT", "HttpHTT", "HttpHTTP",
	"FirstMajorDigit", "MajorDigit", "FirstMinorDigit", "MinorDigit",
	"SpacesAfterDigit", "Status", "SpaceAfterStatus", "StatusText",
	"AlmostDone", "Done", "HdrlineStart", "HdrlineHdrKey",
	"HdrlineHdrSpaceBeforeVal", "HdrlineHdrVal", "HdrlineHdrAlmostDone",
	"HdrlineHdrDone", "HdrlineAlmostDone", "HdrlineDone", "BodyRead",
	"ChunkSizeStart", "ChunkSize", "ChunkSizeAlmostDone", "ChunkData",
	"ChunkDataAlmostDone", "ChunkDataDone",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}
