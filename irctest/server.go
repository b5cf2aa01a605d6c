/*
Package irctest provides an in-memory IRC server for exercising clients
and transports against scripted exchanges.
*/
package irctest

import (
	"io"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sid3xyz/irc"
)

// Server is a mock IRC server. Its Read and Write methods form the
// client side of the connection, so a Server can be handed directly to
// anything expecting an io.ReadWriteCloser; the Handler field and the
// WriteString/WriteMessage methods form the server side.
type Server struct {
	// Handler receives every message the mock server parses from the
	// client. Set it before the client's first write.
	Handler irc.Handler

	eg errgroup.Group

	// fromClient carries client writes to the server's parser,
	// toClient carries scripted server output to the client.
	fromClientR *io.PipeReader
	fromClientW *io.PipeWriter
	toClientR   *io.PipeReader
	toClientW   *io.PipeWriter
}

// NewServer starts a mock server. Call Close when the test is done with
// it so the parse loop shuts down.
func NewServer() *Server {
	s := &Server{}
	s.toClientR, s.toClientW = io.Pipe()
	s.fromClientR, s.fromClientW = io.Pipe()
	s.eg.Go(s.serve)
	return s
}

// Read delivers server output to the client under test.
func (s *Server) Read(p []byte) (int, error) {
	return s.toClientR.Read(p)
}

// Write accepts traffic from the client under test.
func (s *Server) Write(p []byte) (int, error) {
	return s.fromClientW.Write(p)
}

// Close shuts the server down by closing the write ends of both pipes:
// the client observes a clean EOF, and the serve loop exits on its own.
// Close is safe to call from inside a Handler.
func (s *Server) Close() error {
	_ = s.fromClientW.Close()
	_ = s.toClientW.Close()
	return nil
}

// Wait blocks until the serve loop has exited.
func (s *Server) Wait() error {
	return s.eg.Wait()
}

// WriteString scripts a raw server line, terminating it if needed.
func (s *Server) WriteString(str string) {
	if !strings.HasSuffix(str, "\r\n") {
		str = str + "\r\n"
	}
	if _, err := s.toClientW.Write([]byte(str)); err != nil {
		log.Println("mock server write error:", err)
	}
}

// WriteMessage scripts a server message, implementing irc.MessageWriter
// so a Handler can reply through the Server itself.
func (s *Server) WriteMessage(m irc.TextMarshaler) {
	b, err := m.MarshalText()
	if err != nil {
		log.Println("mock server marshal error:", err)
		return
	}
	if !strings.HasSuffix(string(b), "\r\n") {
		b = append(b, '\r', '\n')
	}
	if _, err := s.toClientW.Write(b); err != nil {
		log.Println("mock server write error:", err)
	}
}

// serve parses client traffic and feeds it to Handler until the
// connection is torn down. Junk lines are logged and skipped, the same
// stance a real server takes.
func (s *Server) serve() error {
	conn := irc.NewConn(struct {
		io.Reader
		io.Writer
	}{s.fromClientR, s.toClientW})

	for {
		m, err := conn.ReadMessage()
		if err != nil {
			if _, recoverable := err.(*irc.ParseError); recoverable {
				log.Println("mock server parse error:", err)
				continue
			}
			return nil
		}
		if s.Handler != nil {
			s.Handler.SpeakIRC(s, m)
		}
	}
}
