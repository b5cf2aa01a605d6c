package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

var errPingTimeout = errors.New("ping timeout")

// A Client registers with an IRC server and runs a read loop over the
// connection, handing every parsed Message to a Handler. It takes care
// of the parts every client needs: CAP negotiation, NICK/USER
// registration, PING replies, and liveness checks on idle connections.
type Client struct {

	// Addr is the "host:port" of the server, dialed with TLS when
	// DialFn is nil.
	Addr string

	// Nickname to register with (required). No spaces.
	Nickname string

	// User is the username portion of the client's address. No spaces.
	// Defaults to "guest".
	User string

	// Realname is the gecos field shown in WHOIS. Spaces are fine.
	Realname string

	// Pass is the server password, sent before registration when set.
	Pass string

	// DialFn opens the byte stream the client will speak IRC over.
	// Anything line-oriented works: a TLS socket, a WebSocket adapter,
	// or an in-memory pipe for tests. When nil, Addr is dialed with
	// tls.Dial.
	DialFn func() (io.ReadWriteCloser, error)

	// ErrorLog receives recoverable problems such as unparseable lines.
	// The standard logger is used when nil.
	ErrorLog *log.Logger

	conn    *Conn
	rwc     io.ReadWriteCloser
	handler Handler
	sess    session
	wg      sync.WaitGroup
	writeMu sync.Mutex

	// fatal receives the error that ends the run. It has capacity one
	// and later sends are dropped, so whichever failure happens first
	// decides the return value of ConnectAndRun.
	fatal chan error
}

// noop is the fallback handler used when the caller passes nil.
var noop HandlerFunc = func(mw MessageWriter, m *Message) {}

// ConnectAndRun dials the server, performs registration, and processes
// incoming messages until the connection ends. h is invoked for each
// message in arrival order, on a single goroutine, because IRC message
// ordering is semantically significant.
//
// Cancelling ctx asks for a graceful shutdown: the client sends QUIT
// and gives the server a moment to close the link. A shutdown that the
// client itself initiated reports a nil error; everything else returns
// the first failure observed.
func (c *Client) ConnectAndRun(ctx context.Context, h Handler) error {
	if c.Nickname == "" {
		panic("client nickname cannot be empty")
	}
	if c.User == "" {
		c.User = "guest"
	}
	if c.Realname == "" {
		// servers insist on a realname during registration, but any
		// placeholder will do if the caller doesn't care
		c.Realname = "..."
	}
	if c.DialFn == nil {
		if c.Addr == "" {
			panic("ConnectAndRun: Addr cannot be empty when DialFn is nil")
		}
		c.DialFn = func() (io.ReadWriteCloser, error) {
			return tls.Dial("tcp", c.Addr, nil)
		}
	}

	// runctx governs the worker goroutines. It is deliberately not a
	// child of ctx: the caller cancelling ctx must leave the workers
	// alive long enough to send QUIT and observe the server's close.
	runctx, stop := context.WithCancel(context.Background())
	defer stop()

	c.sess = session{
		nick:   c.Nickname,
		user:   c.User,
		server: strings.Split(c.Addr, ":")[0],
	}

	if c.rwc != nil {
		return errors.New("the client already has a connection")
	}
	var err error
	if c.rwc, err = c.DialFn(); err != nil {
		return err
	}
	c.conn = NewConn(c.rwc)
	defer func() {
		_ = c.rwc.Close()
		c.rwc = nil
		c.conn = nil
	}()

	// the first error delivered here ends the run; closing the
	// connection unblocks any goroutine stuck in a read or write
	c.fatal = make(chan error, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.rwc.Close()
		defer stop()
		err = <-c.fatal
	}()

	if h == nil {
		h = noop
	}

	keeper := &keepalive{
		onTimeout: func() { c.exit(errPingTimeout) },
	}

	c.handler = wrap(h, ctcpHandler, pingMiddleware, keeper.intercept, c.sess.middleware, capLSHandler)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.dispatchLoop(runctx, keeper)
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		select {
		case <-runctx.Done():
			// the run is already ending for its own reasons
		case <-ctx.Done():
			// caller-requested shutdown: announce QUIT, then wait
			// briefly for the server to drop the link before forcing
			// the issue
			c.WriteMessage(Quit{Reason: Opt("closing link")}.Message())
			select {
			case <-runctx.Done():
			case <-time.After(3 * time.Second):
				c.exit(nil)
			}
		}
	}()

	c.WriteMessage(CapLS("302"))
	if c.Pass != "" {
		c.WriteMessage(Pass{Password: c.Pass}.Message())
	}
	c.WriteMessage(Nick{Nickname: c.Nickname}.Message())
	c.WriteMessage(RegisterUser(c.User, c.Realname))

	c.wg.Wait()
	if err == ErrClosed && c.sess.quitting {
		// we said QUIT and the server hung up: that is the clean path
		return nil
	}
	return err
}

// dispatchLoop pulls parsed messages off the reader and runs the
// handler chain. A long quiet spell triggers an application-level PING
// so half-dead connections are noticed even when TCP stays silent.
func (c *Client) dispatchLoop(ctx context.Context, keeper *keepalive) {
	incoming := c.readLoop(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-incoming:
			if !ok {
				c.exit(errors.New("reader stopped"))
				return
			}
			if (m.Source == Prefix{}) {
				// a prefixless line comes from the peer itself
				// (RFC 1459 section 2.3), so stamp it with the server
				// we believe we are talking to
				m.Source.Host = c.sess.server
			}
			c.handler.SpeakIRC(c, m)
		case <-time.After(2 * time.Minute):
			keeper.ping(ctx, c, "TIMEOUTCHECK")
		}
	}
}

// readLoop decodes messages off the transport on its own goroutine and
// delivers them over a channel so dispatchLoop can multiplex reads with
// the idle timer. Malformed lines are logged and skipped; anything else
// that stops the reader ends the run.
func (c *Client) readLoop(ctx context.Context) <-chan *Message {
	incoming := make(chan *Message)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(incoming)
		for {
			m, err := c.conn.ReadMessage()
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					// a junk line is worth logging but not worth
					// dropping the whole connection over
					c.log(err)
					continue
				}
				c.exit(err)
				return
			}
			select {
			case <-ctx.Done():
				// dispatchLoop may already be gone; bail out rather
				// than block forever on the send (the connection gets
				// closed during shutdown, which also breaks the read)
				return
			case incoming <- m:
			}
		}
	}()
	return incoming
}

// exit delivers err as the run's outcome. Only the first caller wins.
func (c *Client) exit(err error) {
	select {
	case c.fatal <- err:
	default:
	}
}

// WriteMessage implements irc.MessageWriter by serializing m and
// flushing it to the connection immediately.
//
// No error is returned: IRC offers no delivery guarantees even for
// bytes the kernel accepted, so handlers have nothing useful to do with
// one. Serialization problems go to ErrorLog; transport failures end
// the run via the usual fatal path.
func (c *Client) WriteMessage(m TextMarshaler) {
	if c.conn == nil {
		c.log(fmt.Errorf("WriteMessage: no active connection; m: %#v", m))
		return
	}

	if msg, ok := m.(*Message); ok && msg.Command.is(CmdQuit) {
		// remember that the disconnect was ours, so the EOF that
		// follows can be reported as a clean exit
		c.sess.quitting = true
	}

	b, err := m.MarshalText()
	if err != nil {
		c.log(fmt.Errorf("marshal text: %w; message: %#v", err, m))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteLine(b); err != nil {
		c.exit(err)
		return
	}
	if err := c.conn.Flush(); err != nil {
		c.exit(err)
	}
}

// log reports a recoverable problem.
func (c *Client) log(e error) {
	if c.ErrorLog == nil {
		log.Println(e)
		return
	}
	c.ErrorLog.Println(e)
}

// session tracks the little bits of connection state the client cannot
// do without: what the server currently calls us (nick, user, visible
// host), which server we think we are talking to, and whether we have
// asked to leave. Everything else is the handler's business.
type session struct {
	nick   string
	user   string
	host   string // our hostname as others see it; may change with host masking
	server string

	// quitting records that this side sent QUIT, so the connection
	// closing afterwards is expected rather than an error.
	quitting bool
}

// Nick reports the nickname the server currently knows the client by,
// which can differ from the configured one after collisions or renames.
func (c *Client) Nick() Nickname {
	return Nickname(c.sess.nick)
}

// Prefix reports the client's own address as the server last described
// it. The 512-byte line limit applies to the relayed copy of a message,
// prefix included, so senders wanting to fill lines exactly need this.
func (c *Client) Prefix() Prefix {
	return c.sess.prefix()
}

func (s *session) prefix() Prefix {
	return Prefix{
		Nick: Nickname(s.nick),
		User: s.user,
		Host: s.host,
	}
}

// middleware watches the reply stream for the handful of events that
// change who we are: the welcome numeric (our full address), host
// masking notifications, and nick changes that apply to us. Knowing our
// own address matters because the 512-byte line limit is measured on
// the relayed copy of our messages, prefix included.
func (s *session) middleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		switch cmd := m.Typed().(type) {
		case Response:
			s.updateFromNumeric(cmd, m)
		case Nick:
			if m.Source.Nick.Is(s.nick) {
				s.nick = cmd.Nickname
			}
		}
		next.SpeakIRC(mw, m)
	})
}

func (s *session) updateFromNumeric(r Response, m *Message) {
	switch {
	case r.Code.is(RplWelcome):
		// RPL_WELCOME conventionally ends with our nick!user@host.
		// Plenty of networks deviate, so only trust the field when it
		// actually parses as a full address; a bare word tells us
		// nothing we don't already know.
		fields := strings.Fields(r.Params.Get(2))
		if len(fields) == 0 {
			return
		}
		if p, err := parsePrefix(fields[len(fields)-1]); err == nil && p.User != "" && p.Host != "" {
			s.nick = p.Nick.String()
			s.user = p.User
			s.host = p.Host
		}
	case r.Code.is(RplMyInfo):
		// the second parameter names the server; fall back to the
		// message prefix for servers that send a short RPL_MYINFO
		if len(r.Params) > 2 {
			s.server = r.Params.Get(2)
		} else if m.Source.Host != "" {
			s.server = m.Source.Host
		}
	case r.Code.is(RplHostHidden):
		// numeric 396 announces a new displayed host, typically after
		// user mode +x toggles host masking
		if len(r.Params) > 1 {
			s.host = r.Params.Get(2)
		}
	}
}
