package irc

import (
	"regexp"
	"strings"
)

// Router dispatches incoming messages to registered routes. A route
// pairs a handler with a set of match conditions: the command, plus
// optional extras like the source address, the target channel, or the
// message text.
//
// Routes are tried in registration order and only the first hit runs,
// so register the most specific routes first and avoid overlapping
// conditions.
type Router struct {
	routes []*route

	// global middleware, applied to every message whether or not a
	// route matched
	middlewares []middleware

	// Classifier is consulted when splitting MODE messages into
	// per-mode events (see SplitModes). When nil, the RFC 2811/2812
	// defaults apply; fill it from ISUPPORT for network-accurate
	// splitting.
	Classifier ModeClassifier
}

// Handle registers h for messages whose command is cmd. Further match
// conditions can be chained on the returned route.
func (r *Router) Handle(cmd Command, h Handler) *route {
	rt := &route{
		h:        h,
		matchers: []matcher{&commandMatch{cmd}},
	}
	r.routes = append(r.routes, rt)
	return rt
}

// HandleFunc registers a plain function for messages with command cmd.
func (r *Router) HandleFunc(cmd Command, f HandlerFunc) *route {
	return r.Handle(cmd, f)
}

// SpeakIRC implements Handler by finding the first matching route.
// Global middleware runs either way; with no match it wraps a no-op so
// middleware side effects still happen.
func (r *Router) SpeakIRC(mw MessageWriter, m *Message) {
	for _, rt := range r.routes {
		if rt.matches(m) {
			wrap(rt.h, r.middlewares...).SpeakIRC(mw, m)
			return
		}
	}
	wrap(noop, r.middlewares...).SpeakIRC(mw, m)
}

// Use installs router-wide middleware, run for every incoming message
// in the order given. Middleware can rewrite the message, decorate the
// writer, reply directly, or swallow the message by not calling the
// next handler; all are legitimate, and all are easy to get wrong, so
// keep middleware small.
func (r *Router) Use(middlewares ...middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// SplitModes returns middleware that replaces each incoming MODE
// message with one message per mode operation, so that a route added
// with OnMode("o") sees "+o alice" and "-o bob" as separate events.
// Messages whose mode arguments do not parse are passed through intact.
func (r *Router) SplitModes() middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(mw MessageWriter, m *Message) {
			if !m.Command.is(CmdMode) || len(m.Params) < 2 {
				next.SpeakIRC(mw, m)
				return
			}
			ops, err := ParseModeOps(m.Params[1:], r.Classifier)
			if err != nil {
				next.SpeakIRC(mw, m)
				return
			}
			for _, op := range ops {
				split := ModeMessage(m.Params.Get(1), []ModeOp{op})
				split.Tags = m.Tags
				split.Source = m.Source
				split.includePrefix = m.includePrefix
				next.SpeakIRC(mw, split)
			}
		})
	}
}

// OnConnect fires once registration succeeds, keyed on RPL_WELCOME.
// On capability-negotiating servers that is after CAP END.
func (r *Router) OnConnect(h HandlerFunc) *route {
	return r.Handle(RplWelcome, h)
}

// OnText fires for PRIVMSG bodies matching a wildcard pattern:
// '*' spans any text, '?' a single character, and a lone '&' field
// stands for exactly one word. Everything else must match literally, so
// "!echo *" catches any invocation of a command while "!echo &" insists
// on a single argument.
func (r *Router) OnText(wildtext string, h HandlerFunc) *route {
	return r.HandleFunc(CmdPrivmsg, h).wildtext(wildtext)
}

// OnTextRE is OnText for callers who want the full power (and
// responsibility) of a Go regular expression.
func (r *Router) OnTextRE(expr string, h HandlerFunc) *route {
	return r.HandleFunc(CmdPrivmsg, h).textRE(expr)
}

// OnNotice fires for NOTICE traffic from other users, with the same
// wildcard syntax as OnText. Server notices are excluded; chain
// MatchServer on a plain Handle(CmdNotice, ...) to get those.
func (r *Router) OnNotice(wildtext string, h HandlerFunc) *route {
	return r.HandleFunc(CmdNotice, h).
		wildtext(wildtext).
		MatchFunc(func(m *Message) bool {
			return !m.Source.IsServer()
		})
}

// OnAction fires for "/me" actions (CTCP ACTION), wildcard-matched like
// OnText.
func (r *Router) OnAction(wildtext string, h HandlerFunc) *route {
	return r.HandleFunc(CTCPAction, h).wildtext(wildtext)
}

// OnJoin fires when anyone joins a channel the client can see.
func (r *Router) OnJoin(h HandlerFunc) *route {
	return r.Handle(CmdJoin, h)
}

// OnPart fires when anyone leaves a channel the client is on.
func (r *Router) OnPart(h HandlerFunc) *route {
	return r.Handle(CmdPart, h)
}

// OnQuit fires when a user sharing a channel with the client
// disconnects.
func (r *Router) OnQuit(h HandlerFunc) *route {
	return r.Handle(CmdQuit, h)
}

// OnError fires for the server's ERROR message, which usually precedes
// a disconnect.
func (r *Router) OnError(h HandlerFunc) *route {
	return r.Handle(CmdError, h)
}

// OnNick reports nickname changes as an (old, new) pair rather than a
// raw message, since that is all a NICK line carries.
func (r *Router) OnNick(h func(nick Nickname, newnick Nickname)) *route {
	return r.HandleFunc(CmdNick, func(mw MessageWriter, m *Message) {
		h(m.Source.Nick, Nickname(m.Params.Get(1)))
	})
}

// OnMode fires for MODE events that mention the given mode letter.
// Combine with SplitModes to receive one event per operation.
func (r *Router) OnMode(letter string, h HandlerFunc) *route {
	return r.HandleFunc(CmdMode, h).MatchFunc(func(m *Message) bool {
		return strings.ContainsAny(m.Params.Get(2), letter)
	})
}

// OnCTCP fires for incoming CTCP queries of the given subcommand,
// relying on the client's CTCP middleware having rewritten the command.
func (r *Router) OnCTCP(subcommand string, h HandlerFunc) *route {
	return r.Handle(NewCTCPCmd(subcommand), h)
}

// OnCTCPReply fires for incoming CTCP replies of the given subcommand.
func (r *Router) OnCTCPReply(subcommand string, h HandlerFunc) *route {
	return r.Handle(NewCTCPReplyCmd(subcommand), h)
}

type route struct {
	h        Handler
	matchers []matcher
}

// matches reports whether every condition on the route holds for m.
func (r *route) matches(m *Message) bool {
	for _, rm := range r.matchers {
		if !rm.matches(m) {
			return false
		}
	}
	return true
}

// Use wraps this route's handler in middleware that runs only when the
// route matches: rate limits, permission checks, text normalization,
// and similar per-route concerns.
func (r *route) Use(middlewares ...middleware) *route {
	if r.h == nil {
		panic("route.Use: no handler to wrap")
	}
	r.h = wrap(r.h, middlewares...)
	return r
}

// A matcher is one condition a message must satisfy for its route to
// run.
type matcher interface {
	matches(*Message) bool
}

// wildtext compiles the wildcard pattern syntax used by OnText into a
// message-text matcher. The pattern is split into space-separated
// fields: a lone '&' becomes a single-word wildcard, and within any
// other field '*' and '?' become their regexp equivalents while the
// rest is quoted literally.
func (r *route) wildtext(pattern string) *route {
	fields := strings.Split(pattern, " ")
	for i, f := range fields {
		if f == "&" {
			fields[i] = `\S+`
			continue
		}
		var b strings.Builder
		for _, c := range f {
			switch c {
			case '*':
				b.WriteString(".*")
			case '?':
				b.WriteString(".")
			default:
				b.WriteString(regexp.QuoteMeta(string(c)))
			}
		}
		fields[i] = b.String()
	}
	return r.textRE("^" + strings.Join(fields, " ") + "$")
}

// textRE adds a regular-expression condition over the message text.
func (r *route) textRE(expr string) *route {
	r.matchers = append(r.matchers, &regexMatch{regexp.MustCompile(expr)})
	return r
}

// nickTracker is the piece of Client the matchers need: the nickname
// the server currently knows us by.
type nickTracker interface {
	Nick() Nickname
}

// MatchFunc adds an arbitrary condition to the route.
func (r *route) MatchFunc(f matcherFunc) *route {
	return r.Matcher(f)
}

// MatchServer restricts the route to messages originating from a
// server rather than another user.
func (r *route) MatchServer() *route {
	return r.MatchFunc(func(m *Message) bool {
		return m.Source.IsServer()
	})
}

// Matcher adds a custom matcher implementation to the route.
func (r *route) Matcher(m matcher) *route {
	r.matchers = append(r.matchers, m)
	return r
}

// MatchChan restricts the route to messages concerning the channel ch.
func (r *route) MatchChan(ch string) *route {
	r.matchers = append(r.matchers, &channelMatch{ch})
	return r
}

// MatchMask restricts the route to messages whose source address
// matches the wildcard mask, e.g. "*!*@*.example.com".
func (r *route) MatchMask(mask string) *route {
	compiled, err := CompileMask(mask)
	if err != nil {
		panic("MatchMask: bad mask: " + err.Error())
	}
	return r.MatchFunc(func(m *Message) bool {
		return compiled.Match(MaskAddress(m.Source))
	})
}

// MatchClient restricts the route to events about the client itself:
// the affected user for a KICK, the message source otherwise.
func (r *route) MatchClient(client nickTracker) *route {
	return r.MatchFunc(func(m *Message) bool {
		switch {
		case m.Command.is(CmdKick):
			return client.Nick().Is(m.Params.Get(2))
		default:
			return m.Source.Nick.Is(client.Nick().String())
		}
	})
}

type commandMatch struct {
	cmd Command
}

func (cm commandMatch) matches(m *Message) bool {
	return m.Command.is(cm.cmd)
}

type matcherFunc func(m *Message) bool

func (f matcherFunc) matches(m *Message) bool {
	return f(m)
}

type regexMatch struct {
	re *regexp.Regexp
}

func (rm regexMatch) matches(m *Message) bool {
	text, err := m.Text()
	if err != nil {
		return false
	}
	return rm.re.MatchString(text)
}

type channelMatch struct {
	channel string
}

func (cm channelMatch) matches(m *Message) bool {
	ch, err := m.Chan()
	if err != nil {
		return false
	}
	return strings.EqualFold(cm.channel, ch)
}
