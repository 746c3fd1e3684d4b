package httpparse

// Error returns the ErrorKind left by the most recent Run call.
func (p *Parser) Error() ErrorKind { return p.err }

// ErrorString is a convenience wrapper around Error().String().
func (p *Parser) ErrorString() string { return p.err.String() }

// Status returns the parsed response status code, or 0 for a request or
// an as-yet-unparsed response.
func (p *Parser) Status() uint16 { return p.status }

// Scheme returns the URI scheme most recently recognized in an
// absolute-form request target, or SchemeUnknown if none has been seen.
// It is not cleared at a message boundary, so an origin-form request
// after an absolute-form one still reports the earlier scheme.
func (p *Parser) Scheme() Scheme { return p.scheme }

// Method returns the last recognized request method, or MethodUnknown
// if none has been recognized yet. An unrecognized method token leaves
// the value from the previous message in place.
func (p *Parser) Method() Method { return p.method }

// MethodString returns the canonical spelling of Method().
func (p *Parser) MethodString() string { return p.method.String() }

// Major returns the parsed HTTP major version.
func (p *Parser) Major() uint8 { return p.major }

// Minor returns the parsed HTTP minor version. A value of 9 marks an
// HTTP/0.9 request line (no version token present at all).
func (p *Parser) Minor() uint8 { return p.minor }

// Multipart reports whether a Content-Type value beginning with
// "multipart" has been read. Only the first nine bytes of the value are
// inspected. The flag is not cleared at a message boundary or by a later
// Content-Type value; only Reset clears it.
func (p *Parser) Multipart() bool { return p.multipart }

// Userdata returns the opaque value set by SetUserdata.
func (p *Parser) Userdata() interface{} { return p.userdata }

// SetUserdata attaches an opaque value to the Parser for hooks to
// retrieve via Userdata.
func (p *Parser) SetUserdata(v interface{}) { p.userdata = v }

// ContentLength returns the Content-Length value read for the current
// or most recently completed message, -1 if none has been read yet, or
// 0 once a message with no framing header has completed (treated as
// the default zero-length body).
func (p *Parser) ContentLength() int64 { return p.contentLen }

// BytesRead returns the number of bytes consumed by the most recent
// Run call.
func (p *Parser) BytesRead() int { return p.bytesRead }

// TotalBytesRead returns the cumulative number of bytes consumed by
// this Parser across its entire lifetime (all Run calls, surviving
// Reset of individual messages via pipelining but not a call to Reset).
func (p *Parser) TotalBytesRead() int64 { return p.totalBytesRead }

// ShouldKeepAlive reports whether the connection that carried the most
// recently completed message should remain open, following the
// HTTP/1.1-defaults-to-keep-alive, HTTP/1.0-defaults-to-close rule:
// version 1.1 or newer keeps the connection open unless a Connection:
// close header was seen; anything older only stays open if a
// Connection: Keep-Alive header was seen.
func (p *Parser) ShouldKeepAlive() bool {
	if p.flags.Has(FlagConnectionClose) {
		return false
	}
	if p.major > 1 || (p.major == 1 && p.minor >= 1) {
		return true
	}
	return p.flags.Has(FlagConnectionKeepAlive)
}
