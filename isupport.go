package irc

import "strings"

// ISupportToken is one token from an RPL_ISUPPORT (005) line:
// KEY, KEY=value, or -KEY to negate an earlier advertisement.
// No interpretation beyond the split is performed here.
type ISupportToken struct {
	Key     string
	Value   string
	Negated bool
}

// ParseISupport splits the tokens of an RPL_ISUPPORT reply. params
// should be the full numeric parameter list; the leading client
// nickname and the trailing "are supported by this server" text are
// skipped.
func ParseISupport(params Params) []ISupportToken {
	if len(params) < 2 {
		return nil
	}
	tokens := params[1:]
	if last := tokens[len(tokens)-1]; strings.ContainsRune(last, ' ') {
		tokens = tokens[:len(tokens)-1]
	}
	out := make([]ISupportToken, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		t := ISupportToken{}
		if strings.HasPrefix(tok, "-") {
			t.Negated = true
			tok = tok[1:]
		}
		if i := strings.IndexByte(tok, '='); i >= 0 {
			t.Key, t.Value = tok[:i], tok[i+1:]
		} else {
			t.Key = tok
		}
		if t.Key == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ClassifierFromISupport builds a mode classifier from the CHANMODES
// and PREFIX token values, e.g.
// ("beI,k,l,imnpst", "(ov)@+"). Empty values fall back to the
// corresponding DefaultClassifier table.
func ClassifierFromISupport(chanmodes, prefix string) ModeClassifier {
	t := DefaultClassifier.(TableClassifier)
	if chanmodes != "" {
		groups := strings.SplitN(chanmodes, ",", 5)
		// CHANMODES=A,B,C,D: list, arg, arg-on-set, flag
		if len(groups) > 0 {
			t.ListModes = groups[0]
		}
		if len(groups) > 1 {
			t.ArgModes = groups[1]
		}
		if len(groups) > 2 {
			t.ArgOnSetModes = groups[2]
		}
		if len(groups) > 3 {
			t.FlagModes = groups[3]
		}
	}
	if prefix != "" {
		// PREFIX=(modes)prefixes
		if strings.HasPrefix(prefix, "(") {
			if end := strings.IndexByte(prefix, ')'); end > 0 {
				t.PrefixModes = prefix[1:end]
			}
		}
	}
	return t
}
