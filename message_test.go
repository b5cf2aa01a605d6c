package irc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromBytes(b []byte) (*Message, error) {
	m := &Message{}
	err := m.UnmarshalText(b)
	return m, err
}

func TestParseMessage(t *testing.T) {
	var tags = []struct {
		raw      string
		expected Tags
	}{
		{"", nil},
		{"@k ", Tags{{"k", ""}}},
		{"@k= ", Tags{{"k", ""}}},
		{"@k=\\ ", Tags{{"k", ""}}},
		{"@k; ", Tags{{"k", ""}}},
		{"@k-l; ", Tags{{"k-l", ""}}},
		{"@k-l=; ", Tags{{"k-l", ""}}},
		{"@k;l ", Tags{{"k", ""}, {"l", ""}}},
		{"@k;l; ", Tags{{"k", ""}, {"l", ""}}},
		{"@k;l=; ", Tags{{"k", ""}, {"l", ""}}},
		{"@k;l= ", Tags{{"k", ""}, {"l", ""}}},
		{"@k=\\; ", Tags{{"k", ""}}},
		{"@k=v ", Tags{{"k", "v"}}},
		{"@k=v; ", Tags{{"k", "v"}}},
		{"@k=0 ", Tags{{"k", "0"}}},
		{"@k=\\v; ", Tags{{"k", "v"}}},
		{"@k=\\s; ", Tags{{"k", " "}}},
		{"@k=\\: ", Tags{{"k", ";"}}},
		{"@k=\\\\ ", Tags{{"k", "\\"}}},
		{"@k=\\r ", Tags{{"k", "\r"}}},
		{"@k=\\n ", Tags{{"k", "\n"}}},
		{"@k=1;k=2; ", Tags{{"k", "2"}}},
		{"@k=\\s\\:\\r\\n\\\\\\a\\b\\ ", Tags{{"k", " ;\r\n\\ab"}}},
		{"@u==; ", Tags{{"u", "="}}},
		{"@j== ", Tags{{"j", "="}}},
		{"@draft/bot ", Tags{{"draft/bot", ""}}},
		{"@draft/bot=someFutureValueHere=2343 ", Tags{{"draft/bot", "someFutureValueHere=2343"}}},
		{"@twitch.tv/mod ", Tags{{"twitch.tv/mod", ""}}},
		{"@+twitch.tv/foo ", Tags{{"+twitch.tv/foo", ""}}},
		{"@emoji=🧔;empty;repeat=no;empty2=;zero=0;new-line=\\r\\n;repeat=yes;quote=\"; ",
			Tags{{"emoji", "🧔"}, {"empty", ""}, {"repeat", "yes"}, {"empty2", ""}, {"zero", "0"}, {"new-line", "\r\n"}, {"quote", "\""}}},
	}

	var prefixes = []struct {
		raw      string
		expected Prefix
	}{
		{"", Prefix{}},
		{":Bob ", Prefix{Nick: "Bob"}},
		{":Bob  ", Prefix{Nick: "Bob"}},
		{":Bob\\Loblaw ", Prefix{Nick: "Bob\\Loblaw"}},
		{":Bob\\Loblaw!@law.blog ", Prefix{Nick: "Bob\\Loblaw", Host: "law.blog"}},
		{":Bob\\Loblaw!@law/blog ", Prefix{Nick: "Bob\\Loblaw", Host: "law/blog"}},
		{":Bob!BLoblaw@bob.loblaw.law.blog ", Prefix{Nick: "Bob", User: "BLoblaw", Host: "bob.loblaw.law.blog"}},
		{":Bob!NoHabla!@bob.loblaw.law.blog ", Prefix{Nick: "Bob", User: "NoHabla!", Host: "bob.loblaw.law.blog"}},
		// '@' is not allowed inside nicknames on most networks, but this provides a decent parse test
		{":BobNoH@bl@!B.Loblaw!@bob.loblaw.law.blog ", Prefix{Nick: "BobNoH@bl@", User: "B.Loblaw!", Host: "bob.loblaw.law.blog"}},
		{":irc.bob.loblaw.no.habla.es ", Prefix{Host: "irc.bob.loblaw.no.habla.es"}},
		{":Bob@law.blog ", Prefix{Nick: "Bob", Host: "law.blog"}},
		{":Bob!bob ", Prefix{Nick: "Bob", User: "bob"}},
	}

	var commands = []struct {
		raw      string
		expected Command
	}{
		{"001", RplWelcome},
		{"PRIVMSG", CmdPrivmsg},
		{"Privmsg", CmdPrivmsg},
		{"privmsg", CmdPrivmsg},
		{"privmsg", Command("PRIVMSG")},
		{"PRIVMSG", Command("privmsg")},
	}

	var params = []struct {
		raw      string
		expected Params
	}{
		{"", nil},
		{" ", Params{""}},
		{" :", Params{""}},
		{" ::", Params{":"}},
		{" ::p1", Params{":p1"}},
		{" :p1", Params{"p1"}},
		{" p1", Params{"p1"}},
		{" p1 p2", Params{"p1", "p2"}},
		{"  p1 p2", Params{"p1", "p2"}},
		{" p1  p2", Params{"p1", "p2"}},
		{" p1  p2 :", Params{"p1", "p2", ""}},
		{" p1  p2 : ", Params{"p1", "p2", " "}},
		{" p1  p2 : :", Params{"p1", "p2", " :"}},
		{" p1  p2 :p3 :p3 ", Params{"p1", "p2", "p3 :p3 "}},
		{" p1 p2 p3 p4 p5 p6 p7 p8 p9 p10 p11 p12 p13 p14 p15 :p16", Params{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12", "p13", "p14", "p15", "p16"}},
		{" :" + strings.Repeat("a", 513), Params{strings.Repeat("a", 513)}}, // don't blow up for lines exceeding protocol-defined length
	}

	for _, tt := range tags {
		for _, p := range prefixes {
			for _, c := range commands {
				for _, pa := range params {
					raw := fmt.Sprintf("%s%s%s%s", tt.raw, p.raw, c.raw, pa.raw)
					m, err := fromBytes([]byte(raw))
					require.NoError(t, err, "raw line: %q", raw)
					assert.Equal(t, tt.expected, m.Tags, "tags: %q", raw)
					assert.Equal(t, p.expected, m.Source, "prefix: %q", raw)
					assert.True(t, m.Command.Is(c.expected), "command: %q parsed as %q", raw, m.Command)
					assert.Equal(t, pa.expected, m.Params, "params: %q", raw)
				}
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	var parseErrors = []struct {
		raw  string
		kind ParseErrorKind
	}{
		{"", EmptyLine},
		{"\r\n", EmptyLine},
		{" ", MissingCommand},
		{"@badge-info=;badges=;user-type=", MissingCommand}, // tags with no command
		{"@badge-info=;badges=;user-type= ", MissingCommand},
		{"@badge-info=;user-type= :tmi.twitch.tv", MissingCommand},
		{":tmi.twitch.tv", MissingCommand},
		{"@", BadTagKey},
		{"@;", BadTagKey},
		{"@=", BadTagKey},
		{"@ ", BadTagKey},
		{"@; ", BadTagKey},
		{"@;= ", BadTagKey},
		{"@ FOO", BadTagKey},
		{"@=v FOO", BadTagKey},
		{"@k;;l FOO", BadTagKey},
		{"@k\x07=v FOO", BadTagKey},
		{":", MissingCommand},
		{":! ", BadPrefix},
		{":!@ ", BadPrefix},
		{": ", BadPrefix},
		{":s 01 nick", BadNumeric},
		{":s 0001 nick", BadNumeric},
		{"1PRIVMSG #c :hi", BadNumeric},
		{"PRIV_MSG #c :hi", MissingCommand},
		{"PRIVMSG\x00 #c :hi", BadParam},
	}
	for _, tc := range parseErrors {
		m, err := fromBytes([]byte(tc.raw))
		require.Error(t, err, "raw line: %q parsed: %#v", tc.raw, m)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "raw line: %q", tc.raw)
		assert.Equal(t, tc.kind, pe.Kind, "raw line: %q err: %v", tc.raw, err)
	}
}

// A user prefix needs only a nickname; user and host are optional in
// all four combinations, so the error test above expects BadPrefix only
// for an empty nickname. This pins the accepted forms down explicitly.
func TestParsePrefixForms(t *testing.T) {
	for _, tc := range []struct {
		token string
		want  Prefix
	}{
		{"nick", Prefix{Nick: "nick"}},
		{"nick@host", Prefix{Nick: "nick", Host: "host"}},
		{"nick!user", Prefix{Nick: "nick", User: "user"}},
		{"nick!user@host", Prefix{Nick: "nick", User: "user", Host: "host"}},
		{"irc.example.com", Prefix{Host: "irc.example.com"}},
		{"nick.name!user@host", Prefix{Nick: "nick.name", User: "user", Host: "host"}},
	} {
		got, err := parsePrefix(tc.token)
		require.NoError(t, err, "token %q", tc.token)
		assert.Equal(t, tc.want, got, "token %q", tc.token)
	}
}

func TestPrefixString(t *testing.T) {
	for _, tc := range []struct {
		p    Prefix
		want string
	}{
		{Prefix{}, ""},
		{Prefix{Nick: "nick"}, "nick"},
		{Prefix{Nick: "nick", Host: "host"}, "nick@host"},
		{Prefix{Nick: "nick", User: "user"}, "nick!user"},
		{Prefix{Nick: "nick", User: "user", Host: "host"}, "nick!user@host"},
		{Prefix{Host: "irc.example.com"}, "irc.example.com"},
	} {
		assert.Equal(t, tc.want, tc.p.String())
	}
}

// Well-formed lines serialize back to their canonical form:
// alphabetic verbs uppercased, duplicate tags dropped (last value wins),
// empty tag values as bare keys, the trailing marker only where the
// parameter needs it, and CR-LF termination.
func TestRoundTripCanonical(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string // "" means identical to in + CRLF
	}{
		{":nick!u@h PRIVMSG #c :hello world\r\n", ""},
		{"@time=2023-01-01T00:00:00Z;msgid=abc :s 001 nick :Welcome home\r\n", ""},
		{"@time=2023-01-01T00:00:00Z;msgid=abc :s 001 nick :Welcome\r\n",
			"@time=2023-01-01T00:00:00Z;msgid=abc :s 001 nick Welcome\r\n"},
		{"@empty FOO\r\n", ""},
		{"PING :\r\n", ""},
		{"PING :86F3E357\r\n", "PING 86F3E357\r\n"},
		{"privmsg #c :hi there\n", "PRIVMSG #c :hi there\r\n"},
		{"@empty= FOO\r\n", "@empty FOO\r\n"},
		{"@x=a\\sb\\:c\\\\d FOO\r\n", ""},
		{"@x=a\\qb FOO\r\n", "@x=aqb FOO\r\n"},
		{"@k=1;o=3;k=2 FOO\r\n", "@k=2;o=3 FOO\r\n"},
		{"MODE #c +ov-b alice bob *!*@host\r\n", ""},
		{"CAP * LS :multi-prefix sasl\r\n", ""},
		{"JOIN #a,#b key1,key2\r\n", ""},
		{":irc.example.com 372 nick :- motd line\r\n", ""},
	} {
		m, err := fromBytes([]byte(tc.in))
		require.NoError(t, err, "line %q", tc.in)
		m.IncludePrefix()
		out, err := m.MarshalText()
		require.NoError(t, err, "line %q", tc.in)
		want := tc.want
		if want == "" {
			want = strings.TrimRight(tc.in, "\r\n") + "\r\n"
		}
		assert.Equal(t, want, string(out), "line %q", tc.in)
	}
}

// Builder-constructed messages survive a serialize/parse cycle.
func TestRoundTripBuilder(t *testing.T) {
	m := NewMessage(CmdPrivmsg, "#go", "hello world").
		WithTag("time", "2023-01-01T00:00:00Z").
		WithTag("msgid", "abc").
		WithPrefix(Prefix{Nick: "alice", User: "a", Host: "example.com"})
	m.WithTag("msgid", "def") // in-place update keeps position

	require.Equal(t, Tags{{"time", "2023-01-01T00:00:00Z"}, {"msgid", "def"}}, m.Tags)

	b, err := m.MarshalText()
	require.NoError(t, err)

	got, err := fromBytes(b)
	require.NoError(t, err)
	got.includePrefix = true
	assert.True(t, m.Equal(got), "got %#v want %#v", got, m)

	b2, err := got.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, string(b), string(b2))
}

// The tag escape table is an involution over arbitrary values.
func TestTagEscapeInvolution(t *testing.T) {
	for _, s := range []string{
		"", "plain", "with space", "semi;colon", "back\\slash",
		"cr\rlf\n", " ;\r\n\\", "a=b", "emoji 🧔", strings.Repeat("; \\\r\n", 50),
	} {
		assert.Equal(t, s, UnescapeTagValue(EscapeTagValue(s)), "value %q", s)
	}
}

func TestUnescapeTagValueStrict(t *testing.T) {
	got, err := UnescapeTagValueStrict("a\\sb\\:c")
	require.NoError(t, err)
	assert.Equal(t, "a b;c", got)

	_, err = UnescapeTagValueStrict("a\\qb")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, InvalidEscape, pe.Kind)

	_, err = UnescapeTagValueStrict("trailing\\")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, InvalidEscape, pe.Kind)
}

func TestMarshalRefusesOversize(t *testing.T) {
	// non-tag portion over 512 bytes
	m := NewMessage(CmdPrivmsg, "#c", strings.Repeat("a", 520))
	_, err := m.MarshalText()
	require.ErrorIs(t, err, ErrOversizeMessage)

	// tag portion over 8192 bytes
	m = NewMessage(CmdPrivmsg, "#c", "hi").WithTag("big", strings.Repeat("v", 8200))
	_, err = m.MarshalText()
	require.ErrorIs(t, err, ErrOversizeMessage)

	// at the edge: "PRIVMSG #c " + 499 bytes + CRLF is exactly 512
	m = NewMessage(CmdPrivmsg, "#c", strings.Repeat("a", 499))
	_, err = m.MarshalText()
	require.NoError(t, err)
	m = NewMessage(CmdPrivmsg, "#c", strings.Repeat("a", 500))
	_, err = m.MarshalText()
	require.ErrorIs(t, err, ErrOversizeMessage)
}

func TestMarshalRefusesMisplacedTrailing(t *testing.T) {
	for _, params := range [][]string{
		{"has space", "x"},
		{"", "x"},
		{":leading", "x"},
	} {
		m := NewMessage(CmdPrivmsg, params...)
		_, err := m.MarshalText()
		require.Error(t, err, "params %q", params)
	}

	// at most one trailing-marked parameter, and it is the last
	m := NewMessage(CmdPrivmsg, "#c", "hello world")
	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), " :"))
}

func TestTagsOperations(t *testing.T) {
	var tags Tags
	tags.Set("a", "1")
	tags.Set("b", "2")
	tags.Set("a", "3")
	assert.Equal(t, Tags{{"a", "3"}, {"b", "2"}}, tags)
	assert.Equal(t, "3", tags.Get("a"))
	assert.True(t, tags.Has("b"))
	assert.False(t, tags.Has("c"))
	assert.Equal(t, "", tags.Get("c"))
	tags.Del("a")
	assert.Equal(t, Tags{{"b", "2"}}, tags)

	tag := Tag{Key: "+example.com/foo"}
	assert.True(t, tag.ClientOnly())
	assert.Equal(t, "example.com", tag.Vendor())
	assert.Equal(t, "", Tag{Key: "msgid"}.Vendor())
}
