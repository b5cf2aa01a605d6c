// The line scanner is built as a small state machine in the style Rob
// Pike demonstrated in his "Lexical Scanning in Go" talk: each state is
// a function that consumes input and returns the next state, and the
// scanned tokens stream out over a channel to the parser.

package irc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	delimParam    = ' ' // separates parameters (and the major sections)
	delimTag      = ';' // separates tags from each other
	delimTagValue = '=' // separates a tag key from its value
	startTags     = '@' // first byte of the tag section
	startPrefix   = ':' // first byte of the prefix
	startTrailing = ':' // first byte of the trailing parameter
)

// token is one scanned piece of a line.
type token struct {
	typ  tokenType
	kind ParseErrorKind // which ParseError to raise; set only for tokError
	val  string
}

// tokenType identifies what part of the line a token holds.
type tokenType int

const (
	tokError    tokenType = iota // scan failed; val holds the description
	tokTagKey                    // a message tag key
	tokTagValue                  // a tag value, still escaped; always follows tokTagKey
	tokPrefix                    // the whole prefix, e.g. "tmi.switch.tv" or "nick!user@host"
	tokCommand                   // the verb or numeric
	tokParam                     // one parameter
	tokEOF                       // the line is fully consumed
)

func (tt tokenType) String() string {
	switch tt {
	case tokTagKey:
		return "TagKey"
	case tokTagValue:
		return "TagValue"
	case tokPrefix:
		return "Source"
	case tokCommand:
		return "Command"
	case tokParam:
		return "Param"
	case tokError:
		return "Error"
	default:
		return ""
	}
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "EOF"
	case tokError:
		return t.val
	}
	return fmt.Sprintf("%s: %q", t.typ, t.val)
}

const eof = -1

// state is one step of the scanner; returning nil stops the machine.
type state func(*lexer) state

// lexer walks the input, emitting tokens as whole pieces are
// recognized. start..pos brackets the piece currently being scanned.
type lexer struct {
	input  string
	start  int
	pos    int
	width  int // size of the rune most recently consumed, for backup
	tokens chan token
}

// run drives the machine to completion on the lexing goroutine.
func (l *lexer) run() {
	for s := lexStart; s != nil; {
		s = s(l)
	}
	close(l.tokens)
}

// emit hands start..pos to the parser as a token of type tt.
func (l *lexer) emit(tt tokenType) {
	l.tokens <- token{typ: tt, val: l.input[l.start:l.pos]}
	l.start = l.pos
}

// ignore discards start..pos.
func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) ignoreRun(valid string) {
	l.acceptRun(valid)
	l.ignore()
}

// next consumes and returns one rune, or eof.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// peek looks at the next rune without consuming it.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup un-consumes the last rune. Valid once per next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// errorf emits a failure token carrying the ParseError kind and stops
// the machine by returning the nil state.
func (l *lexer) errorf(kind ParseErrorKind, format string, args ...interface{}) state {
	l.tokens <- token{typ: tokError, kind: kind, val: fmt.Sprintf(format, args...)}
	return nil
}

// acceptRun consumes as many runes from the valid set as appear.
func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func lex(input string) *lexer {
	l := &lexer{
		input:  input,
		tokens: make(chan token),
	}
	go l.run()
	return l
}

// nextToken blocks for the next token. Called from the parser's
// goroutine, never the lexing one.
func (l *lexer) nextToken() token {
	return <-l.tokens
}

// drain consumes whatever tokens remain so the lexing goroutine can
// exit. A parser that bails out before tokEOF must call this.
func (l *lexer) drain() {
	for range l.tokens {
	}
}

// lexStart dispatches on the first byte: '@' opens tags, ':' opens a
// prefix, anything else must be the command.
func lexStart(l *lexer) state {
	if l.peek() == startTags {
		return lexTagsStart
	}
	if l.peek() == startPrefix {
		return lexPrefixStart
	}
	return lexCommand
}

// lexTagsStart drops the '@' and rejects a tag section with nothing in
// it. Every delimiter in this grammar is a single ASCII byte, so
// advancing pos by one is always safe here.
func lexTagsStart(l *lexer) state {
	l.pos++
	l.ignore()
	switch l.peek() {
	case delimParam, eof:
		return l.errorf(BadTagKey, "tag section is empty")
	}
	return lexTagKey
}

// lexTagKey scans one tag key. A key must be non-empty and is always
// followed by a tokTagValue, possibly empty, so the parser can consume
// tokens in fixed pairs.
func lexTagKey(l *lexer) state {
	for {
		switch r := l.next(); {
		case r == delimTagValue:
			l.backup()
			if l.pos == l.start {
				return l.errorf(BadTagKey, "tag key is empty")
			}
			l.emit(tokTagKey)
			return lexTagValueStart
		case r == delimTag || r == delimParam:
			l.backup()
			if l.pos == l.start {
				return l.errorf(BadTagKey, "tag key is empty")
			}
			l.emit(tokTagKey)
			return lexTagValue
		case r == eof:
			return l.errorf(MissingCommand, "unexpected end of input while reading tag name")
		case invalidTagNameChar(r):
			return l.errorf(BadTagKey, "invalid character %q found while reading tag name", r)
		}
	}
}

// lexTagValueStart drops the '=' between key and value.
func lexTagValueStart(l *lexer) state {
	l.pos++
	l.ignore()
	return lexTagValue
}

// invalidTagNameChar rejects bytes outside the message-tags key
// grammar: letters, digits, and hyphens, plus the client prefix '+',
// the vendor separator '/', and '.' inside vendor names, which this
// scanner keeps as part of the key.
// https://ircv3.net/specs/extensions/message-tags.html
func invalidTagNameChar(r rune) bool {
	switch r {
	case '+', '/', '.':
		return false
	default:
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-')
	}
}

// lexTagValue scans a possibly-empty value up to the next ';' or the
// end of the tag section. The value is emitted still escaped; decoding
// escapes is the parser's decision, not the scanner's.
func lexTagValue(l *lexer) state {
	for {
		switch r := l.next(); {
		case r == delimTag:
			l.backup()
			l.emit(tokTagValue)
			return lexTagEnd
		case r == delimParam:
			l.backup()
			l.emit(tokTagValue)
			return lexAfterTags
		case r == eof:
			// emit the value anyway so the key/value pair stays whole
			// and the parser sees the error token next
			l.emit(tokTagValue)
			return l.errorf(MissingCommand, "unexpected end of input while reading tag value")
		}
	}
}

// lexTagEnd drops a ';' and decides whether another tag follows. A
// stray trailing semicolon right before the section ends is let
// through; real servers produce it.
func lexTagEnd(l *lexer) state {
	l.pos++
	l.ignore()
	if l.peek() == delimParam {
		return lexAfterTags
	}
	return lexTagKey
}

// lexAfterTags crosses the whitespace after the tag section and
// dispatches to whichever of prefix or command comes next.
func lexAfterTags(l *lexer) state {
	l.ignoreRun(" ")
	if l.peek() == startPrefix {
		return lexPrefixStart
	}
	if l.peek() == eof {
		return l.errorf(MissingCommand, "unexpected end of input after message tags")
	}
	return lexCommand
}

// lexPrefixStart drops the ':' that introduces the prefix.
func lexPrefixStart(l *lexer) state {
	l.pos++
	l.ignore()
	return lexPrefix
}

// lexPrefix scans the prefix as one opaque token. Deciding whether it
// is a server name or nick!user@host needs the whole token in hand, so
// that split lives in parsePrefix rather than here.
func lexPrefix(l *lexer) state {
	for {
		switch r := l.next(); {
		case r == delimParam:
			l.backup()
			if l.pos == l.start {
				return l.errorf(BadPrefix, "prefix is empty")
			}
			l.emit(tokPrefix)
			l.ignoreRun(" ")
			if l.peek() == eof {
				return l.errorf(MissingCommand, "unexpected end of input; expected command")
			}
			return lexCommand
		case r == eof:
			return l.errorf(MissingCommand, "expected command, found end of input")
		}
	}
}

// lexCommand scans the verb or numeric. Shape validation (alphabetic or
// exactly three digits) happens in Command.validate once the parser has
// the token.
func lexCommand(l *lexer) state {
	for {
		switch r := l.next(); {
		case r == delimParam:
			l.backup()
			if l.pos == l.start {
				return l.errorf(MissingCommand, "unexpected end of command; command is empty")
			}
			l.emit(tokCommand)
			l.ignoreRun(" ")
			return lexParam
		case r == eof:
			if l.pos == l.start {
				return l.errorf(MissingCommand, "unexpected eof; command is empty")
			}
			l.emit(tokCommand)
			l.emit(tokEOF)
			return nil
		}
	}
}

// lexParam scans one middle parameter, or hands off to the trailing
// scanner when the parameter opens with ':'.
//
// A space right before end of input still yields one empty parameter.
// Parameters are positional, so a reader indexing past the end gets an
// empty string either way, and some encoders genuinely mean "empty
// final parameter" when they leave a dangling separator.
func lexParam(l *lexer) state {
	if l.peek() == startTrailing {
		return lexTrailingStart
	}
	for {
		switch r := l.next(); {
		case r == delimParam:
			l.backup()
			l.emit(tokParam)
			l.ignoreRun(" ")
			return lexParam
		case r == eof:
			l.emit(tokParam)
			l.emit(tokEOF)
			return nil
		}
	}
}

// lexTrailingStart drops the ':' marking the trailing parameter.
func lexTrailingStart(l *lexer) state {
	l.pos++
	l.ignore()
	return lexTrailingParam
}

// lexTrailingParam takes everything left on the line verbatim, spaces
// and further colons included.
func lexTrailingParam(l *lexer) state {
	l.pos = len(l.input)
	l.emit(tokParam)
	l.emit(tokEOF)
	return nil
}
