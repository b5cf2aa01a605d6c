package irc

import (
	"errors"
	"fmt"
)

// ParseErrorKind identifies the class of failure encountered while
// parsing a line of IRC text.
type ParseErrorKind int

const (
	// EmptyLine means the line contained no content after framing.
	EmptyLine ParseErrorKind = iota

	// MissingCommand means the line ended before a command was found, or
	// the command token was empty or neither alphabetic nor numeric.
	MissingCommand

	// BadTagKey means a message tag had an empty or invalid key, or the
	// tag section itself was present but empty.
	BadTagKey

	// BadNumeric means the command token was numeric but not exactly
	// three ASCII digits.
	BadNumeric

	// BadPrefix means the prefix token was empty or not a valid server
	// name or nick[!user][@host] form.
	BadPrefix

	// OversizeLine means a read line exceeded the accumulation budget,
	// or its tag section exceeded 8192 bytes or its non-tag portion 512
	// bytes. The offending bytes were discarded and the stream continues.
	OversizeLine

	// InvalidEscape is reported by the strict tag unescaper for unknown
	// escape sequences. The permissive unescaper never reports it.
	InvalidEscape

	// ModeArityMismatch means a modestring required an argument that was
	// not supplied, or arguments remained after all modes were consumed.
	ModeArityMismatch

	// BadParam means a parameter contained a byte the protocol forbids
	// (NUL, CR, or LF).
	BadParam
)

func (k ParseErrorKind) String() string {
	switch k {
	case EmptyLine:
		return "empty line"
	case MissingCommand:
		return "missing command"
	case BadTagKey:
		return "bad tag key"
	case BadNumeric:
		return "bad numeric"
	case BadPrefix:
		return "bad prefix"
	case OversizeLine:
		return "oversize line"
	case InvalidEscape:
		return "invalid escape"
	case ModeArityMismatch:
		return "mode arity mismatch"
	case BadParam:
		return "bad parameter"
	default:
		return "unknown"
	}
}

// ParseError is returned for any line that could not be parsed into a
// Message or MessageView. The connection is still usable after a
// ParseError; only the offending line is lost.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return "irc: " + e.Kind.String()
	}
	return fmt.Sprintf("irc: %s: %s", e.Kind, e.Detail)
}

// Is reports whether target is a *ParseError with the same kind,
// so callers can match with errors.Is(err, &ParseError{Kind: OversizeLine}).
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

func parseErrorf(kind ParseErrorKind, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ErrOversizeMessage is returned when serializing a message whose
// non-tag portion would exceed 512 bytes (including CRLF) or whose tag
// portion would exceed 8192 bytes. The message is not written.
var ErrOversizeMessage = errors.New("irc: message exceeds protocol length limits")

// ErrClosed is returned from reads after the underlying stream reported
// end of input. Conn.Close keeps no closed state of its own, so calls
// made after it report whatever the underlying stream then returns.
var ErrClosed = errors.New("irc: connection closed")
