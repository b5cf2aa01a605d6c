package irc

import "strings"

// ModeKind describes how a single mode letter consumes arguments.
type ModeKind int

const (
	// ModeList modes (bans, invite exceptions, ...) take an argument
	// when set or unset, and are legal with no argument to query the
	// current list.
	ModeList ModeKind = iota

	// ModeSettingWithArg modes require an argument on set and unset,
	// like the channel key (+k).
	ModeSettingWithArg

	// ModeSettingOnSet modes take an argument only when set, like the
	// channel limit (+l).
	ModeSettingOnSet

	// ModeSettingNever modes never take an argument.
	ModeSettingNever

	// ModePrefix modes grant a channel membership prefix and take a
	// nickname argument on set and unset, like +o and +v.
	ModePrefix
)

// ModeClassifier reports the kind of a mode letter. The second return
// is false when the classifier does not recognize the letter; the mode
// engine then fails the parse. Permissive classifiers return
// (ModeSettingNever, true) for unknown letters instead.
//
// IRC networks redefine mode semantics at runtime, so the engine never
// bakes in more than a conservative default; derive a network-specific
// classifier from ISUPPORT with ClassifierFromISupport.
type ModeClassifier interface {
	Classify(letter byte) (ModeKind, bool)
}

// TableClassifier classifies letters against membership strings, one
// per kind. Unknown letters are ModeSettingNever unless Strict is set.
type TableClassifier struct {
	ListModes     string
	ArgModes      string
	ArgOnSetModes string
	FlagModes     string
	PrefixModes   string
	Strict        bool
}

// Classify implements ModeClassifier.
func (t TableClassifier) Classify(letter byte) (ModeKind, bool) {
	switch {
	case strings.IndexByte(t.ListModes, letter) >= 0:
		return ModeList, true
	case strings.IndexByte(t.ArgModes, letter) >= 0:
		return ModeSettingWithArg, true
	case strings.IndexByte(t.ArgOnSetModes, letter) >= 0:
		return ModeSettingOnSet, true
	case strings.IndexByte(t.FlagModes, letter) >= 0:
		return ModeSettingNever, true
	case strings.IndexByte(t.PrefixModes, letter) >= 0:
		return ModePrefix, true
	case t.Strict:
		return 0, false
	default:
		return ModeSettingNever, true
	}
}

// DefaultClassifier encodes the RFC 2811/2812 channel mode defaults.
// CHANMODES=beI,k,l,psitnmaqr with PREFIX=(ov)@+
var DefaultClassifier ModeClassifier = TableClassifier{
	ListModes:     "beI",
	ArgModes:      "k",
	ArgOnSetModes: "l",
	FlagModes:     "psitnmaqr",
	PrefixModes:   "ov",
}

// ModeOp is a single parsed mode change: a sign, a letter, and an
// optional argument. A nil Arg on a list mode is a list query.
type ModeOp struct {
	Sign   byte // '+' or '-'
	Letter byte
	Arg    *string
}

func (op ModeOp) String() string {
	s := string([]byte{op.Sign, op.Letter})
	if op.Arg != nil {
		s += " " + *op.Arg
	}
	return s
}

// isModeString reports whether an argument continues the modestring
// run. Only explicitly signed tokens can: a bare word after the first
// modestring is indistinguishable from an argument.
func isModeString(s string) bool {
	return len(s) > 0 && (s[0] == '+' || s[0] == '-')
}

// ParseModeOps parses a MODE argument vector (modestring(s) followed by
// arguments) into ordered mode operations. The initial sign defaults to
// '+'. An argument is consumed per letter as the classifier dictates;
// a required argument that is missing, an unrecognized letter under a
// strict classifier, and leftover arguments all fail with a
// *ParseError of kind ModeArityMismatch.
//
// A nil classifier uses DefaultClassifier.
func ParseModeOps(args []string, mc ModeClassifier) ([]ModeOp, error) {
	if mc == nil {
		mc = DefaultClassifier
	}
	if len(args) == 0 {
		return nil, nil
	}

	// collect consecutive modestrings; the first is one even unsigned
	type signed struct{ sign, letter byte }
	var letters []signed
	rest := args
	for i, a := range args {
		if i > 0 && !isModeString(a) {
			break
		}
		sign := byte('+')
		for j := 0; j < len(a); j++ {
			switch a[j] {
			case '+', '-':
				sign = a[j]
			default:
				letters = append(letters, signed{sign, a[j]})
			}
		}
		rest = args[i+1:]
	}

	ops := make([]ModeOp, 0, len(letters))
	for _, l := range letters {
		kind, ok := mc.Classify(l.letter)
		if !ok {
			return nil, parseErrorf(ModeArityMismatch, "unknown mode %q", string(l.letter))
		}
		needs := false
		switch kind {
		case ModeSettingWithArg, ModePrefix:
			needs = true
		case ModeSettingOnSet:
			needs = l.sign == '+'
		case ModeList:
			// takes the next argument if one remains, else a list query
			needs = len(rest) > 0
		}
		op := ModeOp{Sign: l.sign, Letter: l.letter}
		if needs {
			if len(rest) == 0 {
				return nil, parseErrorf(ModeArityMismatch, "mode %c%c requires an argument", l.sign, l.letter)
			}
			op.Arg = &rest[0]
			rest = rest[1:]
		}
		ops = append(ops, op)
	}
	if len(rest) > 0 {
		return nil, parseErrorf(ModeArityMismatch, "%d unmatched mode arguments", len(rest))
	}
	return ops, nil
}

// FormatModeOps renders operations back into a MODE argument vector:
// one modestring with adjacent same-sign runs collapsed, followed by
// the arguments in encounter order. An empty op list returns nil.
func FormatModeOps(ops []ModeOp) []string {
	if len(ops) == 0 {
		return nil
	}
	var ms strings.Builder
	var args []string
	var sign byte
	for _, op := range ops {
		if op.Sign != sign {
			sign = op.Sign
			ms.WriteByte(sign)
		}
		ms.WriteByte(op.Letter)
		if op.Arg != nil {
			args = append(args, *op.Arg)
		}
	}
	return append([]string{ms.String()}, args...)
}

// ModeMessage builds a MODE command for target from parsed operations.
func ModeMessage(target string, ops []ModeOp) *Message {
	args := append([]string{target}, FormatModeOps(ops)...)
	return NewMessage(CmdMode, args...)
}
