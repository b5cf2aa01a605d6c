package irc

import (
	"strings"

	"github.com/gobwas/glob"
)

// Mask is a compiled IRC wildcard expression such as "*!*@*.example.com".
// '?' matches exactly one character and '*' matches any run of
// characters; both can be escaped with '\'. Matching is
// case-insensitive, as masks compare against nick!user@host addresses.
// https://modern.ircdocs.horse/#wildcard-expressions
type Mask struct {
	g glob.Glob
}

// CompileMask compiles a wildcard expression.
func CompileMask(mask string) (Mask, error) {
	g, err := glob.Compile(quoteMask(strings.ToLower(mask)))
	if err != nil {
		return Mask{}, err
	}
	return Mask{g: g}, nil
}

// Match reports whether the address matches the mask.
func (m Mask) Match(address string) bool {
	if m.g == nil {
		return false
	}
	return m.g.Match(strings.ToLower(address))
}

// MatchMask is a one-shot CompileMask + Match. Malformed masks match
// nothing.
func MatchMask(mask, address string) bool {
	m, err := CompileMask(mask)
	if err != nil {
		return false
	}
	return m.Match(address)
}

// quoteMask escapes the glob metacharacters that have no meaning in an
// IRC mask, leaving '*', '?', and '\' intact.
func quoteMask(mask string) string {
	if !strings.ContainsAny(mask, "[]{},!") {
		return mask
	}
	var b strings.Builder
	b.Grow(len(mask) + 4)
	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case '[', ']', '{', '}', ',', '!':
			b.WriteByte('\\')
		}
		b.WriteByte(mask[i])
	}
	return b.String()
}

// MaskAddress renders the full address form of a prefix for mask
// matching, substituting '*' for missing parts.
func MaskAddress(p Prefix) string {
	if p.IsServer() {
		return p.Host
	}
	nick, user, host := p.Nick.String(), p.User, p.Host
	if nick == "" {
		nick = "*"
	}
	if user == "" {
		user = "*"
	}
	if host == "" {
		host = "*"
	}
	return nick + "!" + user + "@" + host
}
