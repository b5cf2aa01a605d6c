package irc

import (
	"context"
	"strings"
	"sync"
	"time"
)

// A Handler responds to an IRC message.
//
// Handlers receive every kind of message: chat traffic, channel
// events, numerics. Routing by command is left to the handler itself
// (or a Router). The Message argument is shared down the middleware
// chain, so handlers that need to mutate it should work on a copy.
type Handler interface {
	SpeakIRC(MessageWriter, *Message)
}

// HandlerFunc adapts a plain function into a Handler, in the mold of
// http.HandlerFunc.
type HandlerFunc func(MessageWriter, *Message)

// SpeakIRC calls f(w, m).
func (f HandlerFunc) SpeakIRC(w MessageWriter, m *Message) {
	f(w, m)
}

type middleware func(Handler) Handler

// wrap layers mw around h so that mw[0] sees the message first.
func wrap(h Handler, mw ...middleware) Handler {
	wrapped := h
	for i := len(mw) - 1; i >= 0; i-- {
		wrapped = mw[i](wrapped)
	}
	return wrapped
}

// ctcpHandler rewrites CTCP-encoded PRIVMSG and NOTICE lines into the
// package's pseudo-commands (see NewCTCPCmd) and strips the envelope
// from the body, so downstream handlers can route on "_CTCP_QUERY_*"
// and "_CTCP_REPLY_*" instead of sniffing 0x01 bytes themselves. It has
// to sit in front of anything that treats PRIVMSG as plain chat.
func ctcpHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		forward := func() { next.SpeakIRC(mw, m) }

		isMsg, isNotice := m.Command.is(CmdPrivmsg), m.Command.is(CmdNotice)
		if !isMsg && !isNotice {
			forward()
			return
		}
		subcommand, body, ok := DecodeCTCP(m.Params.Get(2))
		if !ok {
			forward()
			return
		}
		if isMsg {
			m.Command = NewCTCPCmd(subcommand)
		} else {
			m.Command = NewCTCPReplyCmd(subcommand)
		}
		m.Params[1] = body
		forward()
	})
}

// pingMiddleware answers the server's PING probes. The reply token must
// echo the challenge; nothing else about the message is interesting, so
// PINGs never reach later handlers.
func pingMiddleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPing) {
			next.SpeakIRC(mw, m)
			return
		}
		mw.WriteMessage(Pong{Server1: m.Params.Get(1)}.Message())
	})
}

// keepalive probes an idle connection with client-initiated PINGs and
// invokes onTimeout when a reply never arrives. Each outstanding token
// gets a signal channel; the PONG interceptor closes the loop.
type keepalive struct {
	mu        sync.Mutex
	pending   map[string]chan struct{}
	onTimeout func()
}

// ping sends PING <token> unless that token is already in flight, and
// arms a timer that fires onTimeout if no PONG shows up in time.
func (k *keepalive) ping(ctx context.Context, mw MessageWriter, token string) {
	k.mu.Lock()
	if k.pending == nil {
		k.pending = make(map[string]chan struct{})
	}
	if _, inflight := k.pending[token]; inflight {
		// one unanswered probe is as informative as five
		k.mu.Unlock()
		return
	}
	answered := make(chan struct{}, 1)
	k.pending[token] = answered
	k.mu.Unlock()

	go func() {
		defer func() {
			k.mu.Lock()
			delete(k.pending, token)
			k.mu.Unlock()
		}()
		select {
		case <-answered:
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
			k.onTimeout()
		}
	}()

	mw.WriteMessage(Ping{Server1: token}.Message())
}

// intercept consumes PONG replies that match an outstanding probe.
// PONGs we never asked for travel on to the next handler untouched.
func (k *keepalive) intercept(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPong) {
			next.SpeakIRC(mw, m)
			return
		}

		k.mu.Lock()
		answered, ours := k.pending[m.Params.Get(2)]
		k.mu.Unlock()
		if !ours {
			next.SpeakIRC(mw, m)
			return
		}
		select {
		case answered <- struct{}{}:
		default:
		}
	})
}

// capLSHandler finishes capability negotiation. Once the final CAP LS
// (or NEW) line arrives it asks for the enabled set and sends CAP END;
// running after the rest of the chain gives other middleware a chance
// to CAP REQ first. Requests sent after END are still honored by
// servers, so ending "early" costs nothing.
// https://ircv3.net/specs/core/capability-negotiation.html
func capLSHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		next.SpeakIRC(mw, m)

		if !m.Command.is(CmdCap) {
			return
		}
		cc, ok := m.Typed().(Cap)
		if !ok {
			return
		}
		switch cc.Subcommand {
		case CapSubLS, CapSubNew:
			// a "*" before the capability list flags a continuation
			// line; only the last line should trigger the wrap-up
			if cc.Args.Get(1) != "*" {
				mw.WriteMessage(CapList())
				mw.WriteMessage(CapEnd())
			}
		}
	})
}

// SplitCaps breaks the capability list of a CAP LS/LIST/NEW line into
// name/value pairs. Capabilities advertise values as name=value.
func SplitCaps(list string) []ISupportToken {
	fields := strings.Fields(list)
	out := make([]ISupportToken, 0, len(fields))
	for _, f := range fields {
		t := ISupportToken{Key: f}
		if i := strings.IndexByte(f, '='); i >= 0 {
			t.Key, t.Value = f[:i], f[i+1:]
		}
		out = append(out, t)
	}
	return out
}
