package irc

import (
	"bytes"
	"fmt"
	"io"
)

// Conn frames an IRC byte stream into messages and back. It works over
// any bidirectional stream: a TCP or TLS connection, a WebSocket
// adapter, a test pipe. The stream must carry LF-delimited IRC lines
// and nothing else; Conn adds no framing of its own.
//
// Reads buffer at stream granularity: a pending read that is abandoned
// (for example after a deadline error from the underlying connection)
// leaves all buffered bytes in place, and the next call resumes the
// same line. Writes are buffered until Flush, and Flush pushes the
// whole buffer with contiguous writes; abandoning a write mid-flush can
// leave a partial line on the wire, so callers must not cancel writes
// mid-message. Concurrent readers, and concurrent writers, must
// serialize externally; one reader plus one writer need no locking.
//
// Timeouts and cancellation are layered externally, via deadlines on
// the underlying connection or by closing it.
type Conn struct {
	rw io.ReadWriter

	rbuf  []byte // read accumulation, capacity is the line budget
	start int    // parse position in rbuf
	end   int    // fill position in rbuf

	view MessageView // reused by ReadMessageView

	eof  bool   // the underlying stream reported end of input
	wbuf []byte // pending writes, pushed by Flush
	werr error  // first write error; terminal for this Conn
}

// NewConn wraps a byte stream. The read buffer is sized to the line
// budget: 512 classical bytes plus the 8192-byte tag allowance.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:   rw,
		rbuf: make([]byte, maxReadLen),
	}
}

// readLine returns the next non-empty framed line, borrowing from the
// read buffer. The line remains valid until the next readLine call.
func (c *Conn) readLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(c.rbuf[c.start:c.end], '\n'); i >= 0 {
			line := c.rbuf[c.start : c.start+i+1]
			c.start += i + 1
			framed, err := frameLine(line)
			if err != nil {
				if pe, ok := err.(*ParseError); ok && pe.Kind == EmptyLine {
					// lines with no content are keep-alive noise
					continue
				}
				return nil, err
			}
			if err := checkReadBudget(framed); err != nil {
				return nil, err
			}
			return framed, nil
		}

		if c.eof {
			if c.end > c.start {
				// deliver a final unterminated line
				line := c.rbuf[c.start:c.end]
				c.start = c.end
				framed, err := frameLine(line)
				if err != nil {
					return nil, err
				}
				if err := checkReadBudget(framed); err != nil {
					return nil, err
				}
				return framed, nil
			}
			return nil, ErrClosed
		}

		// compact before filling so the next line has space up to the cap
		if c.start > 0 {
			copy(c.rbuf, c.rbuf[c.start:c.end])
			c.end -= c.start
			c.start = 0
		}

		if c.end == len(c.rbuf) {
			return nil, c.discardOversize()
		}

		// a Read may return buffered bytes alongside io.EOF; scan them
		// for complete lines before treating the stream as closed
		n, err := c.rw.Read(c.rbuf[c.end:])
		c.end += n
		if err != nil {
			if err == io.EOF {
				c.eof = true
				continue
			}
			return nil, err
		}
	}
}

// discardOversize drops bytes up to and including the next LF, then
// surfaces OversizeLine. The stream continues afterwards.
func (c *Conn) discardOversize() error {
	dropped := c.end
	c.start, c.end = 0, 0
	for {
		n, err := c.rw.Read(c.rbuf)
		if i := bytes.IndexByte(c.rbuf[:n], '\n'); i >= 0 {
			// keep whatever followed the LF
			copy(c.rbuf, c.rbuf[i+1:n])
			c.end = n - i - 1
			return parseErrorf(OversizeLine, "line exceeded %d bytes (%d discarded)", maxReadLen, dropped)
		}
		dropped += n
		if err != nil {
			if err == io.EOF {
				c.eof = true
				return parseErrorf(OversizeLine, "line exceeded %d bytes (%d discarded)", maxReadLen, dropped)
			}
			return err
		}
	}
}

// checkReadBudget enforces the per-section limits on a framed line: the
// non-tag portion is held to the classical 512 bytes (counting the
// CR-LF the wire form carried), the tag portion to 8192.
func checkReadBudget(framed []byte) error {
	rest := framed
	tagLen := 0
	if len(rest) > 0 && rest[0] == startTags {
		end := bytes.IndexByte(rest, delimParam)
		if end < 0 {
			end = len(rest)
		}
		tagLen = end - 1
		rest = rest[end:]
		for len(rest) > 0 && rest[0] == delimParam {
			rest = rest[1:]
		}
	}
	if tagLen > maxTagLen {
		return parseErrorf(OversizeLine, "tag section is %d bytes", tagLen)
	}
	if len(rest)+2 > maxLineLen {
		return parseErrorf(OversizeLine, "message body is %d bytes", len(rest)+2)
	}
	return nil
}

// ReadMessage returns the next message as an owned value.
//
// A *ParseError return (a malformed or oversized line) is recoverable:
// the offending line has been consumed and the stream continues. Any
// other error is an I/O failure or ErrClosed.
func (c *Conn) ReadMessage() (*Message, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	m := new(Message)
	m.IncludePrefix()
	if err := m.UnmarshalText(line); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadMessageView returns the next message as a zero-copy view into the
// connection's read buffer. The view and every slice obtained from it
// are invalidated by the next Read call on the Conn; promote with
// MessageView.Message to keep a message longer.
//
// Error behavior matches ReadMessage.
func (c *Conn) ReadMessageView() (*MessageView, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	if err := ParseView(line, &c.view); err != nil {
		return nil, err
	}
	return &c.view, nil
}

// WriteMessage serializes m into the write buffer. The bytes reach the
// stream on the next Flush. Messages exceeding the protocol budgets are
// refused with ErrOversizeMessage and the buffer is left unchanged.
func (c *Conn) WriteMessage(m *Message) error {
	if c.werr != nil {
		return c.werr
	}
	b, err := m.MarshalText()
	if err != nil {
		return err
	}
	c.wbuf = append(c.wbuf, b...)
	return nil
}

// WriteMessageView serializes v into the write buffer in canonical
// form, without promoting it.
func (c *Conn) WriteMessageView(v *MessageView) error {
	if c.werr != nil {
		return c.werr
	}
	out, err := v.appendWire(c.wbuf)
	if err != nil {
		return err
	}
	c.wbuf = out
	return nil
}

// WriteLine appends an already-serialized line to the write buffer,
// adding the CR-LF terminator if it is missing. No budget checks are
// applied; the line is trusted to be valid IRC.
func (c *Conn) WriteLine(line []byte) error {
	if c.werr != nil {
		return c.werr
	}
	c.wbuf = append(c.wbuf, line...)
	if !bytes.HasSuffix(line, []byte("\r\n")) {
		c.wbuf = append(c.wbuf, '\r', '\n')
	}
	return nil
}

// Flush pushes all buffered messages to the stream. A write error is
// terminal: every later write on this Conn returns the same error.
func (c *Conn) Flush() error {
	if c.werr != nil {
		return c.werr
	}
	buf := c.wbuf
	for len(buf) > 0 {
		n, err := c.rw.Write(buf)
		buf = buf[n:]
		if err != nil {
			c.werr = fmt.Errorf("irc: write: %w", err)
			return c.werr
		}
	}
	c.wbuf = c.wbuf[:0]
	return nil
}

// Close closes the underlying stream when it is an io.Closer, flushing
// buffered writes first.
func (c *Conn) Close() error {
	ferr := c.Flush()
	if closer, ok := c.rw.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return ferr
}
