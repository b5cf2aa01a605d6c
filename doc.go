/*
Package irc implements the IRC protocol: RFC 1459, RFC 2812, and the
IRCv3 extensions.

The package is organized in layers, leaves first:

	- Message and MessageView hold one parsed IRC line. Message owns its
	fields; MessageView is a zero-copy projection over a read buffer for
	hot loops, promotable to a Message at any time. Both serialize to
	identical bytes.

	- Typed maps raw (verb, params) tuples onto strongly typed command
	values (Privmsg, Join, Cap, Batch, ...) with Raw as the escape hatch
	for unknown verbs.

	- ParseModeOps and FormatModeOps translate MODE payloads to and from
	ordered mode operations against a pluggable ModeClassifier.

	- Conn frames any bidirectional byte stream into messages, with an
	owned read path, a zero-copy read path, and buffered writes.

	- Client manages a full connection: registration, capability
	negotiation, PING handling, and a middleware chain dispatching to a
	Handler (usually a Router).

Encoding and Decoding

The Message type can marshal and unmarshal itself to and from a raw
line of IRC-formatted text. If you only want IRC parsing and encoding,
use Message (or MessageView and ParseView) directly.

A minimal read loop over an existing connection:

	conn := irc.NewConn(stream)
	for {
		m, err := conn.ReadMessage()
		if err != nil {
			// *irc.ParseError values are recoverable; others are not
		}
		switch cmd := m.Typed().(type) {
		case irc.Privmsg:
			// cmd.Target, cmd.Text
		}
	}

Handlers

A Handler responds to incoming messages:

	type Handler interface {
		SpeakIRC(MessageWriter, *Message)
	}

The Router type implements Handler and matches messages to routes by
command, source, text wildcards, and mode changes.
*/
package irc
