package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWriter struct {
	sent []*Message
}

func (w *testWriter) WriteMessage(m TextMarshaler) {
	if msg, ok := m.(*Message); ok {
		w.sent = append(w.sent, msg)
	}
}

func speak(t *testing.T, h Handler, line string) *testWriter {
	t.Helper()
	m, err := fromBytes([]byte(line))
	require.NoError(t, err)
	m.IncludePrefix()
	w := &testWriter{}
	h.SpeakIRC(w, m)
	return w
}

func TestRouterFirstMatchWins(t *testing.T) {
	var got []string
	r := &Router{}
	r.HandleFunc(CmdPrivmsg, func(w MessageWriter, m *Message) {
		got = append(got, "first")
	})
	r.HandleFunc(CmdPrivmsg, func(w MessageWriter, m *Message) {
		got = append(got, "second")
	})

	speak(t, r, ":a!b@c PRIVMSG #x :hello")
	assert.Equal(t, []string{"first"}, got)
}

func TestRouterOnText(t *testing.T) {
	var matched []string
	r := &Router{}
	r.OnText("!echo &", func(w MessageWriter, m *Message) {
		text, _ := m.Text()
		matched = append(matched, text)
	})

	speak(t, r, ":a!b@c PRIVMSG #x :!echo word")
	speak(t, r, ":a!b@c PRIVMSG #x :!echo two words")
	speak(t, r, ":a!b@c PRIVMSG #x :nothing")
	assert.Equal(t, []string{"!echo word"}, matched)
}

func TestRouterMatchChan(t *testing.T) {
	var hits int
	r := &Router{}
	r.OnJoin(func(w MessageWriter, m *Message) {
		hits++
	}).MatchChan("#wanted")

	speak(t, r, ":a!b@c JOIN #wanted")
	speak(t, r, ":a!b@c JOIN #other")
	assert.Equal(t, 1, hits)
}

func TestRouterMatchMask(t *testing.T) {
	var hits int
	r := &Router{}
	r.HandleFunc(CmdPrivmsg, func(w MessageWriter, m *Message) {
		hits++
	}).MatchMask("*!*@*.trusted.example")

	speak(t, r, ":alice!a@host1.trusted.example PRIVMSG #x :hi")
	speak(t, r, ":mallory!m@evil.example PRIVMSG #x :hi")
	assert.Equal(t, 1, hits)
}

func TestRouterSplitModes(t *testing.T) {
	var ops []string
	r := &Router{}
	r.Use(r.SplitModes())
	r.HandleFunc(CmdMode, func(w MessageWriter, m *Message) {
		ops = append(ops, m.Params.Get(2)+" "+m.Params.Get(3))
	})

	speak(t, r, ":srv MODE #c +ov-b alice bob *!*@host")
	assert.Equal(t, []string{"+o alice", "+v bob", "-b *!*@host"}, ops)

	// a bare mode query passes through unsplit
	ops = nil
	speak(t, r, ":srv MODE #c")
	assert.Equal(t, []string{" "}, ops)
}

func TestRouterGlobalMiddleware(t *testing.T) {
	var seen []string
	r := &Router{}
	r.Use(func(next Handler) Handler {
		return HandlerFunc(func(w MessageWriter, m *Message) {
			seen = append(seen, m.Command.String())
			next.SpeakIRC(w, m)
		})
	})

	// middleware runs even without a matching route
	speak(t, r, "PING :x")
	assert.Equal(t, []string{"PING"}, seen)
}
