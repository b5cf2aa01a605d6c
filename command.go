package irc

import "strings"

// Typed is a strongly typed IRC command. The concrete types in this
// package form a closed set covering RFC 2812 and the common IRCv3
// extensions, with Raw as the escape hatch for everything else.
//
// The set should be treated as extensible: new types may be added in
// later versions, so a type switch over Typed values needs a default
// case.
//
// A Typed value maps only the (verb, params) portion of a line. Tags
// and the source prefix live on the Message; reattach them with the
// builder methods after rendering.
type Typed interface {

	// Message renders the command back into a wire Message with no tags
	// or source.
	Message() *Message
}

// Opt returns a pointer to s, for filling the optional fields of typed
// commands.
func Opt(s string) *string {
	return &s
}

// Typed maps the message onto the strongly typed command set.
//
// The mapping never fails: unknown verbs, and known verbs whose
// parameter count does not fit any defined form, are returned as Raw
// with the verb bytes and parameters untouched. Numeric replies are
// returned as Response.
func (m *Message) Typed() Typed {
	if m.Command.IsNumeric() {
		return Response{Code: m.Command, Params: m.Params}
	}
	p := m.Params
	n := len(p)
	switch strings.ToUpper(string(m.Command)) {

	case CmdPass:
		if n == 1 {
			return Pass{Password: p[0]}
		}
	case CmdNick:
		if n == 1 {
			return Nick{Nickname: p[0]}
		}
	case CmdUser:
		if n == 4 {
			return User{Username: p[0], Mode: p[1], Unused: p[2], Realname: p[3]}
		}
	case CmdOper:
		if n == 2 {
			return Oper{Name: p[0], Password: p[1]}
		}
	case CmdQuit:
		switch n {
		case 0:
			return Quit{}
		case 1:
			return Quit{Reason: &p[0]}
		}
	case CmdSQuit:
		if n == 2 {
			return SQuit{Server: p[0], Comment: p[1]}
		}
	case CmdError:
		if n == 1 {
			return ErrorMsg{Reason: p[0]}
		}

	case CmdJoin:
		switch n {
		case 1:
			return Join{Channels: p[0]}
		case 2:
			return Join{Channels: p[0], Keys: &p[1]}
		case 3:
			// extended-join relays the account name in the second field
			// (carried in Keys) and the realname in the third
			return Join{Channels: p[0], Keys: &p[1], Realname: &p[2]}
		}
	case CmdPart:
		switch n {
		case 1:
			return Part{Channels: p[0]}
		case 2:
			return Part{Channels: p[0], Reason: &p[1]}
		}
	case CmdTopic:
		switch n {
		case 1:
			return Topic{Channel: p[0]}
		case 2:
			return Topic{Channel: p[0], Topic: &p[1]}
		}
	case CmdNames:
		switch n {
		case 0:
			return Names{}
		case 1:
			return Names{Channels: &p[0]}
		case 2:
			return Names{Channels: &p[0], Target: &p[1]}
		}
	case CmdList:
		switch n {
		case 0:
			return List{}
		case 1:
			return List{Channels: &p[0]}
		case 2:
			return List{Channels: &p[0], Target: &p[1]}
		}
	case CmdInvite:
		if n == 2 {
			return Invite{Nickname: p[0], Channel: p[1]}
		}
	case CmdKick:
		switch n {
		case 2:
			return Kick{Channels: p[0], Nicknames: p[1]}
		case 3:
			return Kick{Channels: p[0], Nicknames: p[1], Comment: &p[2]}
		}
	case CmdMode:
		if n >= 1 {
			mc := Mode{Target: p[0]}
			if n >= 2 {
				mc.ModeString = &p[1]
				mc.Args = p[2:]
			}
			return mc
		}

	case CmdPrivmsg:
		if n == 2 {
			return Privmsg{Target: p[0], Text: p[1]}
		}
	case CmdNotice:
		if n == 2 {
			return Notice{Target: p[0], Text: p[1]}
		}
	case CmdTagMsg:
		if n == 1 {
			return TagMsg{Target: p[0]}
		}

	case CmdMOTD:
		switch n {
		case 0:
			return Motd{}
		case 1:
			return Motd{Target: &p[0]}
		}
	case CmdLUsers:
		switch n {
		case 0:
			return LUsers{}
		case 1:
			return LUsers{Mask: &p[0]}
		case 2:
			return LUsers{Mask: &p[0], Target: &p[1]}
		}
	case CmdVersion:
		switch n {
		case 0:
			return Version{}
		case 1:
			return Version{Target: &p[0]}
		}
	case CmdStats:
		switch n {
		case 0:
			return Stats{}
		case 1:
			return Stats{Query: &p[0]}
		case 2:
			return Stats{Query: &p[0], Target: &p[1]}
		}
	case CmdLinks:
		switch n {
		case 0:
			return Links{}
		case 1:
			return Links{Mask: &p[0]}
		case 2:
			return Links{Remote: &p[0], Mask: &p[1]}
		}
	case CmdTime:
		switch n {
		case 0:
			return Time{}
		case 1:
			return Time{Target: &p[0]}
		}
	case CmdConnect:
		switch n {
		case 2:
			return Connect{Target: p[0], Port: p[1]}
		case 3:
			return Connect{Target: p[0], Port: p[1], Remote: &p[2]}
		}
	case CmdTrace:
		switch n {
		case 0:
			return Trace{}
		case 1:
			return Trace{Target: &p[0]}
		}
	case CmdAdmin:
		switch n {
		case 0:
			return Admin{}
		case 1:
			return Admin{Target: &p[0]}
		}
	case CmdInfo:
		switch n {
		case 0:
			return Info{}
		case 1:
			return Info{Target: &p[0]}
		}

	case CmdWho:
		switch n {
		case 0:
			return Who{}
		case 1:
			return Who{Mask: &p[0]}
		case 2:
			if p[1] == "o" {
				return Who{Mask: &p[0], OperOnly: true}
			}
		}
	case CmdWhoIs:
		switch n {
		case 1:
			return WhoIs{Masks: p[0]}
		case 2:
			return WhoIs{Target: &p[0], Masks: p[1]}
		}
	case CmdWhoWas:
		switch n {
		case 1:
			return WhoWas{Nicknames: p[0]}
		case 2:
			return WhoWas{Nicknames: p[0], Count: &p[1]}
		case 3:
			return WhoWas{Nicknames: p[0], Count: &p[1], Target: &p[2]}
		}

	case CmdKill:
		if n == 2 {
			return Kill{Nickname: p[0], Comment: p[1]}
		}
	case CmdPing:
		switch n {
		case 1:
			return Ping{Server1: p[0]}
		case 2:
			return Ping{Server1: p[0], Server2: &p[1]}
		}
	case CmdPong:
		switch n {
		case 1:
			return Pong{Server1: p[0]}
		case 2:
			return Pong{Server1: p[0], Server2: &p[1]}
		}
	case CmdAway:
		switch n {
		case 0:
			return Away{}
		case 1:
			return Away{Text: &p[0]}
		}
	case CmdRehash:
		if n == 0 {
			return Rehash{}
		}
	case CmdDie:
		if n == 0 {
			return Die{}
		}
	case CmdRestart:
		if n == 0 {
			return Restart{}
		}
	case CmdUserHost:
		if n >= 1 && n <= 5 {
			return UserHost{Nicknames: p}
		}
	case CmdIsOn:
		if n >= 1 {
			return IsOn{Nicknames: p}
		}
	case CmdWAllOps:
		if n == 1 {
			return WAllOps{Text: p[0]}
		}

	case CmdCap:
		if n >= 1 {
			if sub, ok := capSubCmd(p[0]); ok {
				return Cap{Subcommand: sub, Args: p[1:]}
			}
			if n >= 2 {
				if sub, ok := capSubCmd(p[1]); ok {
					return Cap{Target: &p[0], Subcommand: sub, Args: p[2:]}
				}
			}
		}
	case CmdAuthenticate:
		if n == 1 {
			return Authenticate{Data: p[0]}
		}
	case CmdBatch:
		if n >= 1 {
			b := Batch{Ref: p[0]}
			if n >= 2 {
				b.Type = &p[1]
				b.Params = p[2:]
			}
			return b
		}
	case CmdChatHistory:
		if n == 4 {
			return ChatHistory{Subcommand: strings.ToUpper(p[0]), Target: p[1], Reference: p[2], Limit: p[3]}
		}
	case CmdMonitor:
		switch n {
		case 1:
			return Monitor{Subcommand: p[0]}
		case 2:
			return Monitor{Subcommand: p[0], Targets: &p[1]}
		}
	case CmdSetName:
		if n == 1 {
			return SetName{Realname: p[0]}
		}
	case CmdFail:
		if r, ok := standardReply(p); ok {
			return Fail(r)
		}
	case CmdWarn:
		if r, ok := standardReply(p); ok {
			return Warn(r)
		}
	case CmdNote:
		if r, ok := standardReply(p); ok {
			return Note(r)
		}
	}
	return Raw{Verb: m.Command, Params: m.Params}
}

// optParams appends the run of leading non-nil optionals to args.
// A nil in the middle of opts ends the run: later values cannot be
// placed positionally without the earlier ones.
func optParams(args []string, opts ...*string) []string {
	for _, o := range opts {
		if o == nil {
			break
		}
		args = append(args, *o)
	}
	return args
}

// Connection registration (RFC 2812 section 3.1).

type Pass struct{ Password string }

func (c Pass) Message() *Message { return NewMessage(CmdPass, c.Password) }

type Nick struct{ Nickname string }

func (c Nick) Message() *Message { return NewMessage(CmdNick, c.Nickname) }

// User specifies the username and realname of a new user. The Mode and
// Unused fields are typically "0" and "*"; they are carried so that a
// parsed USER line renders back unchanged.
type User struct {
	Username string
	Mode     string
	Unused   string
	Realname string
}

func (c User) Message() *Message {
	return NewMessage(CmdUser, c.Username, c.Mode, c.Unused, c.Realname)
}

type Oper struct{ Name, Password string }

func (c Oper) Message() *Message { return NewMessage(CmdOper, c.Name, c.Password) }

type Quit struct{ Reason *string }

func (c Quit) Message() *Message { return NewMessage(CmdQuit, optParams(nil, c.Reason)...) }

type SQuit struct{ Server, Comment string }

func (c SQuit) Message() *Message { return NewMessage(CmdSQuit, c.Server, c.Comment) }

// ErrorMsg is the ERROR command sent by servers before terminating a
// connection.
type ErrorMsg struct{ Reason string }

func (c ErrorMsg) Message() *Message { return NewMessage(CmdError, c.Reason) }

// Channel operations (RFC 2812 section 3.2).

// Join is a channel join. Channels and Keys are comma lists, preserved
// as single strings. Channels "0" is the leave-all convention.
// Realname appears on JOIN lines relayed by servers with extended-join.
type Join struct {
	Channels string
	Keys     *string
	Realname *string
}

func (c Join) Message() *Message {
	return NewMessage(CmdJoin, optParams([]string{c.Channels}, c.Keys, c.Realname)...)
}

type Part struct {
	Channels string
	Reason   *string
}

func (c Part) Message() *Message {
	return NewMessage(CmdPart, optParams([]string{c.Channels}, c.Reason)...)
}

// Topic queries (nil Topic), clears (pointer to empty string), or sets
// the topic of a channel.
type Topic struct {
	Channel string
	Topic   *string
}

func (c Topic) Message() *Message {
	return NewMessage(CmdTopic, optParams([]string{c.Channel}, c.Topic)...)
}

type Names struct{ Channels, Target *string }

func (c Names) Message() *Message { return NewMessage(CmdNames, optParams(nil, c.Channels, c.Target)...) }

type List struct{ Channels, Target *string }

func (c List) Message() *Message { return NewMessage(CmdList, optParams(nil, c.Channels, c.Target)...) }

type Invite struct{ Nickname, Channel string }

func (c Invite) Message() *Message { return NewMessage(CmdInvite, c.Nickname, c.Channel) }

type Kick struct {
	Channels  string
	Nicknames string
	Comment   *string
}

func (c Kick) Message() *Message {
	return NewMessage(CmdKick, optParams([]string{c.Channels, c.Nicknames}, c.Comment)...)
}

// Mode carries a MODE change or query in wire form. Parsing the
// modestring and args into typed operations is the mode engine's job;
// see ParseModeOps.
type Mode struct {
	Target     string
	ModeString *string
	Args       Params
}

func (c Mode) Message() *Message {
	args := []string{c.Target}
	if c.ModeString != nil {
		args = append(args, *c.ModeString)
		args = append(args, c.Args...)
	}
	return NewMessage(CmdMode, args...)
}

// Ops parses the mode change against the classifier. A nil classifier
// uses the RFC 2811/2812 defaults.
func (c Mode) Ops(mc ModeClassifier) ([]ModeOp, error) {
	if c.ModeString == nil {
		return nil, nil
	}
	args := append([]string{*c.ModeString}, c.Args...)
	return ParseModeOps(args, mc)
}

// Messaging (RFC 2812 section 3.3).

// Privmsg is a message to a channel, nick, or comma list of targets.
type Privmsg struct{ Target, Text string }

func (c Privmsg) Message() *Message { return NewMessage(CmdPrivmsg, c.Target, c.Text) }

type Notice struct{ Target, Text string }

func (c Notice) Message() *Message { return NewMessage(CmdNotice, c.Target, c.Text) }

// TagMsg is a message whose content is entirely in its tags.
type TagMsg struct{ Target string }

func (c TagMsg) Message() *Message { return NewMessage(CmdTagMsg, c.Target) }

// Server queries (RFC 2812 section 3.4).

type Motd struct{ Target *string }

func (c Motd) Message() *Message { return NewMessage(CmdMOTD, optParams(nil, c.Target)...) }

type LUsers struct{ Mask, Target *string }

func (c LUsers) Message() *Message { return NewMessage(CmdLUsers, optParams(nil, c.Mask, c.Target)...) }

type Version struct{ Target *string }

func (c Version) Message() *Message { return NewMessage(CmdVersion, optParams(nil, c.Target)...) }

type Stats struct{ Query, Target *string }

func (c Stats) Message() *Message { return NewMessage(CmdStats, optParams(nil, c.Query, c.Target)...) }

type Links struct{ Remote, Mask *string }

func (c Links) Message() *Message {
	if c.Remote != nil && c.Mask != nil {
		return NewMessage(CmdLinks, *c.Remote, *c.Mask)
	}
	return NewMessage(CmdLinks, optParams(nil, c.Mask)...)
}

type Time struct{ Target *string }

func (c Time) Message() *Message { return NewMessage(CmdTime, optParams(nil, c.Target)...) }

type Connect struct {
	Target string
	Port   string
	Remote *string
}

func (c Connect) Message() *Message {
	return NewMessage(CmdConnect, optParams([]string{c.Target, c.Port}, c.Remote)...)
}

type Trace struct{ Target *string }

func (c Trace) Message() *Message { return NewMessage(CmdTrace, optParams(nil, c.Target)...) }

type Admin struct{ Target *string }

func (c Admin) Message() *Message { return NewMessage(CmdAdmin, optParams(nil, c.Target)...) }

type Info struct{ Target *string }

func (c Info) Message() *Message { return NewMessage(CmdInfo, optParams(nil, c.Target)...) }

// User queries (RFC 2812 section 3.6).

type Who struct {
	Mask     *string
	OperOnly bool
}

func (c Who) Message() *Message {
	args := optParams(nil, c.Mask)
	if c.OperOnly {
		args = append(args, "o")
	}
	return NewMessage(CmdWho, args...)
}

type WhoIs struct {
	Target *string
	Masks  string
}

func (c WhoIs) Message() *Message {
	if c.Target != nil {
		return NewMessage(CmdWhoIs, *c.Target, c.Masks)
	}
	return NewMessage(CmdWhoIs, c.Masks)
}

type WhoWas struct {
	Nicknames string
	Count     *string
	Target    *string
}

func (c WhoWas) Message() *Message {
	return NewMessage(CmdWhoWas, optParams([]string{c.Nicknames}, c.Count, c.Target)...)
}

// Miscellaneous (RFC 2812 sections 3.5, 3.7, 4).

type Kill struct{ Nickname, Comment string }

func (c Kill) Message() *Message { return NewMessage(CmdKill, c.Nickname, c.Comment) }

type Ping struct {
	Server1 string
	Server2 *string
}

func (c Ping) Message() *Message {
	return NewMessage(CmdPing, optParams([]string{c.Server1}, c.Server2)...)
}

type Pong struct {
	Server1 string
	Server2 *string
}

func (c Pong) Message() *Message {
	return NewMessage(CmdPong, optParams([]string{c.Server1}, c.Server2)...)
}

type Away struct{ Text *string }

func (c Away) Message() *Message { return NewMessage(CmdAway, optParams(nil, c.Text)...) }

type Rehash struct{}

func (c Rehash) Message() *Message { return NewMessage(CmdRehash) }

type Die struct{}

func (c Die) Message() *Message { return NewMessage(CmdDie) }

type Restart struct{}

func (c Restart) Message() *Message { return NewMessage(CmdRestart) }

type UserHost struct{ Nicknames Params }

func (c UserHost) Message() *Message { return NewMessage(CmdUserHost, c.Nicknames...) }

type IsOn struct{ Nicknames Params }

func (c IsOn) Message() *Message { return NewMessage(CmdIsOn, c.Nicknames...) }

type WAllOps struct{ Text string }

func (c WAllOps) Message() *Message { return NewMessage(CmdWAllOps, c.Text) }

// IRCv3 commands.

// CapSubCmd is a CAP negotiation subcommand.
type CapSubCmd string

const (
	CapSubLS   CapSubCmd = "LS"
	CapSubList CapSubCmd = "LIST"
	CapSubReq  CapSubCmd = "REQ"
	CapSubAck  CapSubCmd = "ACK"
	CapSubNak  CapSubCmd = "NAK"
	CapSubEnd  CapSubCmd = "END"
	CapSubNew  CapSubCmd = "NEW"
	CapSubDel  CapSubCmd = "DEL"
)

func capSubCmd(s string) (CapSubCmd, bool) {
	switch sub := CapSubCmd(strings.ToUpper(s)); sub {
	case CapSubLS, CapSubList, CapSubReq, CapSubAck, CapSubNak, CapSubEnd, CapSubNew, CapSubDel:
		return sub, true
	}
	return "", false
}

// Cap is a capability negotiation command. Server-sent CAP lines carry
// the client identifier before the subcommand; it lands in Target.
type Cap struct {
	Target     *string
	Subcommand CapSubCmd
	Args       Params
}

func (c Cap) Message() *Message {
	args := optParams(nil, c.Target)
	args = append(args, string(c.Subcommand))
	args = append(args, c.Args...)
	return NewMessage(CmdCap, args...)
}

// Authenticate is one step of a SASL exchange. Data is the raw
// parameter: a mechanism name, a base64 chunk, the "+" empty sentinel,
// or "*" to abort.
type Authenticate struct{ Data string }

func (c Authenticate) Message() *Message { return NewMessage(CmdAuthenticate, c.Data) }

// Batch opens or closes a message batch. Ref keeps its '+'/'-'
// sentinel; Type and Params are only present when opening.
type Batch struct {
	Ref    string
	Type   *string
	Params Params
}

func (c Batch) Message() *Message {
	args := []string{c.Ref}
	if c.Type != nil {
		args = append(args, *c.Type)
		args = append(args, c.Params...)
	}
	return NewMessage(CmdBatch, args...)
}

// ChatHistory requests message playback. Reference is a msgid,
// timestamp, or "*". The five-parameter BETWEEN form does not fit this
// shape and maps to Raw.
type ChatHistory struct {
	Subcommand string
	Target     string
	Reference  string
	Limit      string
}

func (c ChatHistory) Message() *Message {
	return NewMessage(CmdChatHistory, c.Subcommand, c.Target, c.Reference, c.Limit)
}

// Monitor manipulates the server-side notify list. Subcommand is one of
// "+", "-", "C", "L", "S".
type Monitor struct {
	Subcommand string
	Targets    *string
}

func (c Monitor) Message() *Message {
	return NewMessage(CmdMonitor, optParams([]string{c.Subcommand}, c.Targets)...)
}

type SetName struct{ Realname string }

func (c SetName) Message() *Message { return NewMessage(CmdSetName, c.Realname) }

// StandardReply is the shared shape of the FAIL, WARN, and NOTE
// standard replies: the command being replied to (or "*"), a
// machine-readable code, optional context, and a description.
type StandardReply struct {
	Command     string
	Code        string
	Context     Params
	Description string
}

func standardReply(p Params) (StandardReply, bool) {
	if len(p) < 3 {
		return StandardReply{}, false
	}
	return StandardReply{
		Command:     p[0],
		Code:        p[1],
		Context:     p[2 : len(p)-1],
		Description: p[len(p)-1],
	}, true
}

func (r StandardReply) params() []string {
	args := []string{r.Command, r.Code}
	args = append(args, r.Context...)
	return append(args, r.Description)
}

type Fail StandardReply

func (c Fail) Message() *Message { return NewMessage(CmdFail, StandardReply(c).params()...) }

type Warn StandardReply

func (c Warn) Message() *Message { return NewMessage(CmdWarn, StandardReply(c).params()...) }

type Note StandardReply

func (c Note) Message() *Message { return NewMessage(CmdNote, StandardReply(c).params()...) }

// Response and Raw.

// Response is a numeric server reply. Code is the three-digit reply
// code; the named constants in this package cover RFC 2812 and the
// commonly deployed IRCv3 numerics, and any other code is carried
// as-is.
type Response struct {
	Code   Command
	Params Params
}

func (c Response) Message() *Message { return NewMessage(c.Code, c.Params...) }

// Raw preserves a command this package has no typed shape for. Verb
// keeps the original bytes; rendering a Raw reproduces the verb and
// parameters exactly.
type Raw struct {
	Verb   Command
	Params Params
}

func (c Raw) Message() *Message {
	return &Message{Command: c.Verb, Params: c.Params}
}
