package irc

import (
	"bytes"
	"io"
)

// MessageView is a borrowed, zero-allocation projection of a single IRC
// line. Every field is a subslice of the buffer the view was parsed
// from: the view is only valid while that buffer is; to keep a message
// past the buffer's lifetime, promote it with [MessageView.Message].
//
// Tag values are exposed in their raw escaped form; unescape on demand
// with AppendUnescapedTagValue or promote the view. Despite that, a
// view and its promotion serialize to byte-identical wire output.
type MessageView struct {
	line    []byte   // the framed line (no CR-LF)
	tags    []byte   // raw tag section without the leading '@', nil if absent
	prefix  []byte   // prefix token without the leading ':', nil if absent
	command []byte
	params  [][]byte // param backing array is reused across parses
}

// ParseView parses a single line into v, reusing v's parameter storage.
// line may end with LF or CR-LF. The view borrows from line; the caller
// must keep line alive and unmodified for as long as the view is used.
//
// Errors are always of type *ParseError.
func ParseView(line []byte, v *MessageView) error {
	framed, err := frameLine(line)
	if err != nil {
		return err
	}
	v.line = framed
	v.tags = nil
	v.prefix = nil
	v.command = nil
	v.params = v.params[:0]

	rest := framed

	if len(rest) > 0 && rest[0] == startTags {
		end := bytes.IndexByte(rest, delimParam)
		if end < 0 {
			return parseErrorf(MissingCommand, "unexpected end of input after message tags")
		}
		v.tags = rest[1:end]
		if err := validateRawTags(v.tags); err != nil {
			return err
		}
		rest = skipSpaces(rest[end:])
	}

	if len(rest) > 0 && rest[0] == startPrefix {
		end := bytes.IndexByte(rest, delimParam)
		if end < 0 {
			return parseErrorf(MissingCommand, "expected command, found end of input")
		}
		v.prefix = rest[1:end]
		if err := validatePrefixBytes(v.prefix); err != nil {
			return err
		}
		rest = skipSpaces(rest[end:])
	}

	end := bytes.IndexByte(rest, delimParam)
	if end < 0 {
		end = len(rest)
	}
	v.command = rest[:end]
	if err := Command(v.command).validate(); err != nil {
		return err
	}
	rest = rest[end:]

	for len(rest) > 0 {
		rest = skipSpaces(rest)
		if len(rest) == 0 {
			// a trailing space delimiter still carries an empty param
			v.params = append(v.params, framed[len(framed):])
			break
		}
		if rest[0] == startTrailing {
			v.params = append(v.params, rest[1:])
			break
		}
		end := bytes.IndexByte(rest, delimParam)
		if end < 0 {
			v.params = append(v.params, rest)
			break
		}
		v.params = append(v.params, rest[:end])
		rest = rest[end:]
	}
	return nil
}

func skipSpaces(b []byte) []byte {
	for len(b) > 0 && b[0] == delimParam {
		b = b[1:]
	}
	return b
}

// validateRawTags walks the raw tag section checking the fail
// conditions without allocating: a present-but-empty section, empty
// keys, and invalid key characters.
func validateRawTags(tags []byte) error {
	if len(tags) == 0 {
		return parseErrorf(BadTagKey, "tag section is empty")
	}
	rest := tags
	for len(rest) > 0 {
		key, _, next := nextRawTag(rest)
		if len(key) == 0 {
			return parseErrorf(BadTagKey, "tag key is empty")
		}
		for _, b := range key {
			if invalidTagNameChar(rune(b)) {
				return parseErrorf(BadTagKey, "invalid character %q found while reading tag name", b)
			}
		}
		rest = next
	}
	return nil
}

// validatePrefixBytes applies the parsePrefix fail conditions without
// converting the token to a string.
func validatePrefixBytes(token []byte) error {
	if len(token) == 0 {
		return parseErrorf(BadPrefix, "prefix is empty")
	}
	bang := bytes.IndexByte(token, '!')
	at := bytes.IndexByte(token, '@')
	if bytes.IndexByte(token, '.') >= 0 && bang < 0 && at < 0 {
		return nil // server name
	}
	if bang == 0 || bang < 0 && at == 0 {
		return parseErrorf(BadPrefix, "prefix %q has no nickname", token)
	}
	return nil
}

// nextRawTag splits the first key[=value] entry off a raw tag section.
func nextRawTag(s []byte) (key, val, rest []byte) {
	entry := s
	if i := bytes.IndexByte(s, delimTag); i >= 0 {
		entry, rest = s[:i], s[i+1:]
	}
	if i := bytes.IndexByte(entry, delimTagValue); i >= 0 {
		return entry[:i], entry[i+1:], rest
	}
	return entry, nil, rest
}

// Command returns the command token as it appeared on the wire.
func (v *MessageView) Command() []byte {
	return v.command
}

// IsNumeric reports whether the command is a three-digit reply code.
func (v *MessageView) IsNumeric() bool {
	return Command(v.command).IsNumeric()
}

// Prefix returns the raw prefix token without the leading ':', or nil
// when the line carried no prefix.
func (v *MessageView) Prefix() []byte {
	return v.prefix
}

// Param returns the nth parameter (starting at 1), or nil if it did not
// exist, mirroring Params.Get.
func (v *MessageView) Param(n int) []byte {
	if n > len(v.params) || n < 1 {
		return nil
	}
	return v.params[n-1]
}

// ParamCount returns the number of parameters.
func (v *MessageView) ParamCount() int {
	return len(v.params)
}

// Tag returns the raw escaped value of the given tag key and whether
// the key was present. Duplicate keys resolve to the last value.
func (v *MessageView) Tag(key string) ([]byte, bool) {
	var val []byte
	found := false
	rest := v.tags
	for len(rest) > 0 {
		k, va, next := nextRawTag(rest)
		if string(k) == key {
			val, found = va, true
		}
		rest = next
	}
	return val, found
}

// ForEachTag calls fn for every key/value pair in order of appearance,
// including duplicates, with values still escaped. Iteration stops when
// fn returns false.
func (v *MessageView) ForEachTag(fn func(key, rawValue []byte) bool) {
	rest := v.tags
	for len(rest) > 0 {
		k, val, next := nextRawTag(rest)
		if len(k) > 0 && !fn(k, val) {
			return
		}
		rest = next
	}
}

// AppendUnescapedTagValue appends the unescaped form of a raw tag value
// to dst, applying the message-tags escape table. Unknown escapes decode
// to the escaped character and a lone trailing backslash is dropped.
func AppendUnescapedTagValue(dst, raw []byte) []byte {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			dst = append(dst, c)
			continue
		}
		if i == len(raw)-1 {
			break
		}
		i++
		switch raw[i] {
		case ':':
			dst = append(dst, ';')
		case 's':
			dst = append(dst, ' ')
		case '\\':
			dst = append(dst, '\\')
		case 'r':
			dst = append(dst, '\r')
		case 'n':
			dst = append(dst, '\n')
		default:
			dst = append(dst, raw[i])
		}
	}
	return dst
}

// appendCanonicalTagValue rewrites a raw escaped value into canonical
// escaping: unescape then re-escape, without an intermediate buffer.
// This is what makes a view and its promotion serialize identically
// even when the incoming value used non-canonical escapes.
func appendCanonicalTagValue(dst, raw []byte) []byte {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' {
			if i == len(raw)-1 {
				break
			}
			i++
			switch raw[i] {
			case ':':
				c = ';'
			case 's':
				c = ' '
			case '\\':
				c = '\\'
			case 'r':
				c = '\r'
			case 'n':
				c = '\n'
			default:
				c = raw[i]
			}
		}
		switch c {
		case ';':
			dst = append(dst, '\\', ':')
		case ' ':
			dst = append(dst, '\\', 's')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\n':
			dst = append(dst, '\\', 'n')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// unescapedLen returns the decoded length of a raw escaped tag value.
func unescapedLen(raw []byte) int {
	n := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' {
			if i == len(raw)-1 {
				break
			}
			i++
		}
		n++
	}
	return n
}

// appendWire appends the canonical wire form of the view to dst,
// including the CR-LF terminator, enforcing the same byte budgets as
// Message.MarshalText.
func (v *MessageView) appendWire(dst []byte) ([]byte, error) {
	mark := len(dst)
	var tbc int

	if len(v.tags) > 0 {
		dst = append(dst, byte(startTags))
		first := true
		seen := 0 // index of the entry being considered
		rest := v.tags
		for len(rest) > 0 {
			key, _, next := nextRawTag(rest)
			rest = next
			seen++
			if len(key) == 0 {
				continue
			}
			if v.tagIndex(key, seen-1) >= 0 {
				// an earlier entry with this key already claimed the slot
				continue
			}
			last, _ := v.Tag(string(key))
			if !first {
				dst = append(dst, byte(delimTag))
			}
			first = false
			dst = append(dst, key...)
			if unescapedLen(last) > 0 {
				dst = append(dst, byte(delimTagValue))
				dst = appendCanonicalTagValue(dst, last)
			}
		}
		dst = append(dst, byte(delimParam))
		tbc = len(dst) - mark
		if tbc-2 > maxTagLen {
			return dst[:mark], ErrOversizeMessage
		}
	}

	if len(v.prefix) > 0 {
		dst = append(dst, byte(startPrefix))
		dst = appendCanonicalPrefix(dst, v.prefix)
		dst = append(dst, byte(delimParam))
	}

	for _, c := range v.command {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		dst = append(dst, c)
	}

	for i, p := range v.params {
		dst = append(dst, byte(delimParam))
		if i == len(v.params)-1 && viewNeedsTrailing(p) {
			dst = append(dst, byte(startTrailing))
		}
		dst = append(dst, p...)
	}
	dst = append(dst, '\r', '\n')

	if l := len(dst) - mark - tbc; l > maxLineLen {
		return dst[:mark], ErrOversizeMessage
	}
	return dst, nil
}

func viewNeedsTrailing(p []byte) bool {
	return len(p) == 0 || bytes.IndexByte(p, delimParam) >= 0 || p[0] == startTrailing
}

// tagIndex returns the index of the first entry with key before limit,
// or -1 when the entry at limit is the first occurrence.
func (v *MessageView) tagIndex(key []byte, limit int) int {
	rest := v.tags
	for i := 0; i < limit && len(rest) > 0; i++ {
		k, _, next := nextRawTag(rest)
		if bytes.Equal(k, key) {
			return i
		}
		rest = next
	}
	return -1
}

// appendCanonicalPrefix renders a raw prefix token the same way
// Prefix.String renders the parsed form, so that view and promoted
// serializations agree byte for byte.
func appendCanonicalPrefix(dst, raw []byte) []byte {
	bang := bytes.IndexByte(raw, '!')
	at := -1
	if bang >= 0 {
		if i := bytes.IndexByte(raw[bang:], '@'); i >= 0 {
			at = bang + i
		}
	} else {
		at = bytes.IndexByte(raw, '@')
	}
	if bytes.IndexByte(raw, '.') >= 0 && bang < 0 && at < 0 {
		return append(dst, raw...) // server name
	}

	var nick, user, host []byte
	switch {
	case bang >= 0 && at >= 0:
		nick, user, host = raw[:bang], raw[bang+1:at], raw[at+1:]
	case bang >= 0:
		nick, user = raw[:bang], raw[bang+1:]
	case at >= 0:
		nick, host = raw[:at], raw[at+1:]
	default:
		nick = raw
	}
	dst = append(dst, nick...)
	if len(user) > 0 {
		dst = append(dst, '!')
		dst = append(dst, user...)
	}
	if len(host) > 0 {
		dst = append(dst, '@')
		dst = append(dst, host...)
	}
	return dst
}

// WriteTo serializes the view in canonical wire form with a single
// call to w.Write, implementing io.WriterTo.
func (v *MessageView) WriteTo(w io.Writer) (int64, error) {
	buf, err := v.appendWire(nil)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// internedTagKeys is a read-only table of the tag keys that appear on
// nearly every message on modern networks. Promotion returns the
// interned string instead of allocating a fresh copy.
var internedTagKeys = map[string]string{
	"time":    "time",
	"msgid":   "msgid",
	"batch":   "batch",
	"account": "account",
	"label":   "label",
	"+typing": "+typing",
}

func internTagKey(key []byte) string {
	if s, ok := internedTagKeys[string(key)]; ok {
		return s
	}
	return string(key)
}

// Message promotes the view to an owned Message in one allocation pass:
// tag values are unescaped, frequent tag keys are interned, and prefix
// and parameter slices are deep-copied. The promoted message serializes
// to exactly the bytes WriteTo produces.
//
// The view was validated when parsed, so promotion cannot fail.
func (v *MessageView) Message() *Message {
	m := &Message{}
	if len(v.prefix) > 0 {
		m.Source, _ = parsePrefix(string(v.prefix))
		m.includePrefix = true
	}
	m.Command = Command(v.command)
	if len(v.params) > 0 {
		m.Params = make(Params, len(v.params))
		for i, p := range v.params {
			m.Params[i] = string(p)
		}
	}
	v.ForEachTag(func(key, raw []byte) bool {
		m.Tags.Set(internTagKey(key), string(AppendUnescapedTagValue(nil, raw)))
		return true
	})
	return m
}

// String returns the framed line the view was parsed from.
func (v *MessageView) String() string {
	return string(v.line)
}
