package irc

import (
	"regexp"
	"strings"
)

// CTCP (Client-to-Client Protocol) messages travel inside PRIVMSG and
// NOTICE bodies delimited by 0x01 bytes. This package handles only the
// envelope: encoding, decoding, and the pseudo-command naming used by
// the client's middleware. Semantics of individual CTCP commands are up
// to the caller.

const ctcpDelim = "\x01"

var ctcpRegex = regexp.MustCompile("^\\x01([^ \\x01]+) ?(.*?)\\x01?$")

// NewCTCPCmd derives the pseudo-command an incoming CTCP query of the
// given subcommand is rewritten to, e.g. NewCTCPCmd("ACTION") ==
// CTCPAction. The result is not a real IRC verb; it exists so routes
// can key on CTCP subcommands.
func NewCTCPCmd(subcommand string) Command {
	return Command("_CTCP_QUERY_" + strings.ToUpper(subcommand))
}

// NewCTCPReplyCmd is NewCTCPCmd for incoming CTCP replies.
func NewCTCPReplyCmd(subcommand string) Command {
	return Command("_CTCP_REPLY_" + strings.ToUpper(subcommand))
}

// DecodeCTCP splits a PRIVMSG or NOTICE body into a CTCP subcommand and
// its arguments. ok is false when the body is not CTCP-formatted.
// A missing closing delimiter is tolerated; some clients omit it.
func DecodeCTCP(body string) (subcommand, args string, ok bool) {
	if !strings.HasPrefix(body, ctcpDelim) {
		return "", "", false
	}
	parts := ctcpRegex.FindStringSubmatch(body)
	if parts == nil {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// CTCP wraps a subcommand and its arguments in the CTCP envelope and
// addresses it to target as a PRIVMSG.
func CTCP(target, command, message string) *Message {
	return NewMessage(CmdPrivmsg, target, ctcpDelim+command+" "+message+ctcpDelim)
}

// CTCPReply answers a CTCP query. Replies travel as NOTICE rather than
// PRIVMSG so two well-behaved clients can never ping-pong forever.
func CTCPReply(target, command, message string) *Message {
	return NewMessage(CmdNotice, target, ctcpDelim+command+" "+message+ctcpDelim)
}

// Describe emits a third-person action, the protocol-level form of the
// "/me" command.
func Describe(target, action string) *Message {
	return CTCP(target, "ACTION", action)
}
