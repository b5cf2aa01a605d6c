package irc

import (
	"fmt"
	"strings"
)

// Text extracts the human-readable body of a message for the commands
// that have one: the chat text of a PRIVMSG or NOTICE, the reason on a
// PART, KICK, or QUIT, and so on.
//
// For any other command the parameters are joined with spaces and
// returned alongside an error, so a caller that knows its handler only
// sees supported commands can ignore the error, while one probing
// arbitrary messages gets a clear signal instead of a surprising
// positional guess.
func (m *Message) Text() (string, error) {
	switch {
	case m.Command.is(CmdQuit), m.Command.is(CmdError), m.Command.is(CmdSetName):
		return m.Params.Get(1), nil
	case m.Command.is(CmdPrivmsg), m.Command.is(CmdNotice), m.Command.is(CTCPAction),
		m.Command.is(CmdTopic), m.Command.is(CmdPart), m.Command.is(CmdMode):
		return m.Params.Get(2), nil
	case m.Command.is(CmdKick):
		return m.Params.Get(3), nil
	default:
		return strings.Join(m.Params, " "), fmt.Errorf("text: command %s is not supported", m.Command)
	}
}

// Target extracts where a message was aimed: the client's own nickname
// for a query, a channel name for channel traffic, possibly wearing
// membership prefixes ('@', '+') on servers that advertise STATUSMSG.
func (m *Message) Target() (string, error) {
	switch {
	case m.Command.is(CmdPrivmsg), m.Command.is(CmdNotice), m.Command.is(CTCPAction),
		m.Command.is(CmdTagMsg), m.Command.is(CmdInvite), m.Command.is(CmdTopic),
		m.Command.is(CmdKick), m.Command.is(CmdPart), m.Command.is(CmdMode):
		return m.Params.Get(1), nil
	default:
		return "", fmt.Errorf("%s: target method not supported", m.Command)
	}
}

// Chan extracts the channel a message concerns. For PRIVMSG, NOTICE,
// and CTCP actions this is the message target as given, so a direct
// query yields the client's own nickname; the target is not checked
// for being a channel name. Membership prefixes on the name are left
// in place, since stripping them correctly needs the server's STATUSMSG
// advertisement.
func (m *Message) Chan() (string, error) {
	switch {
	case m.Command.is(CmdPrivmsg), m.Command.is(CmdNotice), m.Command.is(CTCPAction),
		m.Command.is(CmdJoin), m.Command.is(CmdTopic), m.Command.is(CmdKick), m.Command.is(CmdPart):
		return m.Params.Get(1), nil
	case m.Command.is(CmdInvite):
		return m.Params.Get(2), nil
	default:
		return "", fmt.Errorf("%s: chan method not supported", m.Command)
	}
}
