package irc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rwPipe struct {
	io.Reader
	io.Writer
}

func newTestConn(input string) (*Conn, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewConn(rwPipe{strings.NewReader(input), out}), out
}

func TestReadMessageFraming(t *testing.T) {
	conn, _ := newTestConn(":s PING :a\r\nPONG b\n\r\n\nNOTICE x :y\r\n")

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdPing))
	assert.Equal(t, Params{"a"}, m.Params)
	assert.Equal(t, Prefix{Nick: "s"}, m.Source)

	// bare LF is tolerated
	m, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdPong))

	// empty lines (keep-alive noise) are skipped silently
	m, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdNotice))

	_, err = conn.ReadMessage()
	require.ErrorIs(t, err, ErrClosed)
}

func TestReadMessageFinalUnterminatedLine(t *testing.T) {
	conn, _ := newTestConn("PING a\r\nPING b")

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, Params{"a"}, m.Params)

	m, err = conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, Params{"b"}, m.Params)

	_, err = conn.ReadMessage()
	require.ErrorIs(t, err, ErrClosed)
}

// A malformed line surfaces a *ParseError and the stream continues.
func TestReadMessageRecoversFromParseErrors(t *testing.T) {
	conn, _ := newTestConn("@ FOO\r\nPING ok\r\n")

	_, err := conn.ReadMessage()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, BadTagKey, pe.Kind)

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdPing))
}

func TestReadOversizeLineDiscardsAndResumes(t *testing.T) {
	conn, _ := newTestConn(strings.Repeat("a", maxReadLen+300) + "\r\nPING ok\r\n")

	_, err := conn.ReadMessage()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OversizeLine, pe.Kind)

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdPing))
}

// A line whose non-tag portion exceeds the classical 512 bytes is
// refused on read even though it fits the accumulation budget.
func TestReadOversizeBodyWithinBudget(t *testing.T) {
	long := "PRIVMSG #c :" + strings.Repeat("a", 508) // 520-byte body
	conn, _ := newTestConn(long + "\r\nPING ok\r\n")

	_, err := conn.ReadMessage()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OversizeLine, pe.Kind)

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, m.Command.Is(CmdPing))
}

func TestReadOversizeTagSection(t *testing.T) {
	conn, _ := newTestConn("@big=" + strings.Repeat("v", maxTagLen) + " PING a\r\nPING ok\r\n")

	_, err := conn.ReadMessage()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OversizeLine, pe.Kind)

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, Params{"ok"}, m.Params)
}

// An exactly budget-sized tag section passes.
func TestReadTagBudgetBoundary(t *testing.T) {
	tags := "big=" + strings.Repeat("v", maxTagLen-len("big=")) // 8192 bytes of tags
	conn, _ := newTestConn("@" + tags + " PING a\r\n")

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, Params{"a"}, m.Params)
}

func TestReadMessageView(t *testing.T) {
	conn, _ := newTestConn("@msgid=x PRIVMSG #c :hi there\r\n:s PONG :y\r\n")

	v, err := conn.ReadMessageView()
	require.NoError(t, err)
	assert.Equal(t, []byte("PRIVMSG"), v.Command())
	val, ok := v.Tag("msgid")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), val)

	// promotion keeps the message past the borrow
	kept := v.Message()

	v2, err := conn.ReadMessageView()
	require.NoError(t, err)
	assert.Equal(t, []byte("PONG"), v2.Command())

	assert.True(t, kept.Command.Is(CmdPrivmsg))
	assert.Equal(t, "hi there", kept.Params.Get(2))
}

// scriptedReader yields its steps in order: data chunks and injected
// errors, then io.EOF.
type scriptedReader struct {
	steps []any
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.steps) == 0 {
		return 0, io.EOF
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	switch s := step.(type) {
	case string:
		return copy(p, s), nil
	case error:
		return 0, s
	}
	panic("bad step")
}

// A read abandoned on a transient error (a deadline, say) leaves the
// partial line buffered; the next call completes it.
func TestReadResumesAfterTransientError(t *testing.T) {
	timeout := errors.New("i/o timeout")
	conn := NewConn(rwPipe{
		&scriptedReader{steps: []any{"PRIVMSG #c :par", timeout, "tial line\r\n"}},
		&bytes.Buffer{},
	})

	_, err := conn.ReadMessage()
	require.ErrorIs(t, err, timeout)

	m, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "partial line", m.Params.Get(2))
}

func TestWriteBufferedUntilFlush(t *testing.T) {
	conn, out := newTestConn("")

	require.NoError(t, conn.WriteMessage(Msg("#c", "one")))
	require.NoError(t, conn.WriteMessage(Msg("#c", "two two")))
	assert.Zero(t, out.Len(), "writes must not reach the stream before Flush")

	require.NoError(t, conn.Flush())
	assert.Equal(t, "PRIVMSG #c one\r\nPRIVMSG #c :two two\r\n", out.String())

	// flushing an empty buffer is a no-op
	require.NoError(t, conn.Flush())
	assert.Equal(t, "PRIVMSG #c one\r\nPRIVMSG #c :two two\r\n", out.String())
}

func TestWriteMessageViewMatchesOwned(t *testing.T) {
	line := "@k=1;o=3;k=2 :n!u@h PRIVMSG #c :hello world\r\n"
	v := parseView(t, line)

	connA, outA := newTestConn("")
	require.NoError(t, connA.WriteMessageView(v))
	require.NoError(t, connA.Flush())

	connB, outB := newTestConn("")
	require.NoError(t, connB.WriteMessage(v.Message()))
	require.NoError(t, connB.Flush())

	assert.Equal(t, outB.String(), outA.String())
}

func TestWriteRefusesOversizeMessage(t *testing.T) {
	conn, out := newTestConn("")

	err := conn.WriteMessage(Msg("#c", strings.Repeat("a", 520)))
	require.ErrorIs(t, err, ErrOversizeMessage)

	// the buffer is untouched and the conn still works
	require.NoError(t, conn.WriteMessage(Msg("#c", "ok")))
	require.NoError(t, conn.Flush())
	assert.Equal(t, "PRIVMSG #c ok\r\n", out.String())
}

type failWriter struct{ err error }

func (w failWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteErrorIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	conn := NewConn(rwPipe{strings.NewReader(""), failWriter{err: boom}})

	require.NoError(t, conn.WriteMessage(Msg("#c", "x")))
	err := conn.Flush()
	require.ErrorIs(t, err, boom)

	assert.ErrorIs(t, conn.WriteMessage(Msg("#c", "y")), boom)
	assert.ErrorIs(t, conn.Flush(), boom)
}

func TestWriteLine(t *testing.T) {
	conn, out := newTestConn("")
	require.NoError(t, conn.WriteLine([]byte("PING x")))
	require.NoError(t, conn.WriteLine([]byte("PING y\r\n")))
	require.NoError(t, conn.Flush())
	assert.Equal(t, "PING x\r\nPING y\r\n", out.String())
}
