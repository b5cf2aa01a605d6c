package irc_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sid3xyz/irc"
	"github.com/sid3xyz/irc/ircdebug"
	"github.com/sid3xyz/irc/irctest"
)

// newMockNetwork wires up a mock server that performs a minimal
// registration exchange and records every message the client sends.
func newMockNetwork() (*irctest.Server, *recorder) {
	server := irctest.NewServer()
	rec := &recorder{}
	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		rec.add(m)
		switch cmd := m.Typed().(type) {
		case irc.Cap:
			if cmd.Subcommand == irc.CapSubLS {
				server.WriteString("CAP * LS :message-tags sasl")
			}
		case irc.User:
			server.WriteString(":irc.example.test 001 HelloBot :Welcome to the Example network HelloBot!guest@example.host")
		case irc.Join:
			server.WriteString(":HelloBot!guest@example.host JOIN " + cmd.Channels)
		case irc.Quit:
			server.Close()
		}
	})
	return server, rec
}

type recorder struct {
	mu   sync.Mutex
	msgs []*irc.Message
}

func (r *recorder) add(m *irc.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, strings.ToUpper(m.Command.String()))
	}
	return out
}

func TestClient_ConnectAndRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server, rec := newMockNetwork()
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return nopCloser{server}, nil
	}

	h := &irc.Router{}
	h.OnConnect(func(w irc.MessageWriter, m *irc.Message) {
		w.WriteMessage(irc.Join{Channels: "#asd"}.Message())
	})
	h.OnJoin(func(w irc.MessageWriter, m *irc.Message) {
		w.WriteMessage(irc.Quit{}.Message())
	}).MatchClient(client).MatchChan("#asd")

	err := client.ConnectAndRun(ctx, h)
	require.NoError(t, err, "expected client to exit without errors")

	got := rec.commands()
	assert.Contains(t, got, "CAP")
	assert.Contains(t, got, "NICK")
	assert.Contains(t, got, "USER")
	assert.Contains(t, got, "JOIN")
	assert.Contains(t, got, "QUIT")
}

func TestClientAnswersPing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := irctest.NewServer()
	defer server.Close()

	pong := make(chan string, 1)
	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Typed().(type) {
		case irc.User:
			server.WriteString("PING :8B14F731")
		case irc.Pong:
			select {
			case pong <- m.Params.Get(1):
			default:
			}
			server.Close()
		}
	})

	client := &irc.Client{Nickname: "PingBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return nopCloser{server}, nil
	}

	_ = client.ConnectAndRun(ctx, nil)

	select {
	case reply := <-pong:
		assert.Equal(t, "8B14F731", reply)
	default:
		t.Fatal("client never replied to PING")
	}
}

func TestClientDispatchesCTCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := irctest.NewServer()
	defer server.Close()

	reply := make(chan string, 1)
	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch cmd := m.Typed().(type) {
		case irc.User:
			server.WriteString(":alice!a@h PRIVMSG CTCPBot :\x01VERSION\x01")
		case irc.Notice:
			select {
			case reply <- cmd.Text:
			default:
			}
		case irc.Quit:
			server.Close()
		}
	})

	client := &irc.Client{Nickname: "CTCPBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return nopCloser{server}, nil
	}

	h := &irc.Router{}
	h.OnCTCP("VERSION", func(w irc.MessageWriter, m *irc.Message) {
		w.WriteMessage(irc.CTCPReply(m.Source.Nick.String(), "VERSION", "testclient 1.0"))
		w.WriteMessage(irc.Quit{}.Message())
	})

	_ = client.ConnectAndRun(ctx, h)

	select {
	case text := <-reply:
		assert.Equal(t, "\x01VERSION testclient 1.0\x01", text)
	default:
		t.Fatal("client never answered the CTCP query")
	}
}

// The debug tap slots between the client and its connection and logs
// both directions of the registration exchange.
func TestClientWithDebugTap(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server, _ := newMockNetwork()
	defer server.Close()

	var log safeBuffer
	client := &irc.Client{Nickname: "TapBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return ircdebug.Tap(&log, nopCloser{server}, "-> ", "<- "), nil
	}

	h := &irc.Router{}
	h.OnConnect(func(w irc.MessageWriter, m *irc.Message) {
		w.WriteMessage(irc.Quit{}.Message())
	})
	_ = client.ConnectAndRun(ctx, h)

	logged := log.String()
	assert.Contains(t, logged, "-> NICK TapBot\r\n")
	assert.Contains(t, logged, "<- ")
}

type safeBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewCTCPCmd(t *testing.T) {
	fn := irc.NewCTCPCmd("ACTION")
	assert.Equal(t, irc.Command(irc.CTCPAction), fn)
}

func TestNewCTCPReplyCmd(t *testing.T) {
	fn := irc.NewCTCPReplyCmd("VERSION")
	assert.Equal(t, irc.Command(irc.CTCPVersionReply), fn)
}

type nopCloser struct {
	io.ReadWriter
}

func (nopCloser) Close() error { return nil }
