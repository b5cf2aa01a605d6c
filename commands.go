package irc

import (
	"github.com/google/uuid"
)

// Msg is shorthand for a PRIVMSG to a channel or nickname.
func Msg(target, message string) *Message {
	return Privmsg{Target: target, Text: message}.Message()
}

// PartAll leaves every joined channel using the "JOIN 0" convention
// from RFC 2812 section 3.2.1.
func PartAll() *Message {
	return Join{Channels: "0"}.Message()
}

// CapLS opens capability negotiation, advertising support for the given
// protocol version ("302" for capability negotiation 3.2).
func CapLS(version string) *Message {
	return Cap{Subcommand: CapSubLS, Args: Params{version}}.Message()
}

// CapReq asks the server to enable the named capability.
func CapReq(name string) *Message {
	return Cap{Subcommand: CapSubReq, Args: Params{name}}.Message()
}

// CapList asks which capabilities are currently enabled on this
// connection.
func CapList() *Message {
	return Cap{Subcommand: CapSubList}.Message()
}

// CapEnd closes capability negotiation so registration can complete.
func CapEnd() *Message {
	return Cap{Subcommand: CapSubEnd}.Message()
}

// RegisterUser builds the USER command for registration, filling the
// historical mode and unused positions with the customary "0" and "*".
// The realname may contain spaces.
func RegisterUser(user, realname string) *Message {
	return User{Username: user, Mode: "0", Unused: "*", Realname: realname}.Message()
}

// WithLabel attaches a fresh labeled-response label tag to m and
// returns the label, for correlating the server's reply batch.
// https://ircv3.net/specs/extensions/labeled-response
func WithLabel(m *Message) string {
	label := uuid.NewString()
	m.Tags.Set("label", label)
	return label
}

// NewBatchRef generates a reference suitable for opening a client
// batch. The '+'/'-' sentinel is not included.
func NewBatchRef() string {
	return uuid.NewString()
}

// OpenBatch constructs the BATCH command opening batch ref of the given
// type.
func OpenBatch(ref, batchType string, params ...string) *Message {
	return Batch{Ref: "+" + ref, Type: &batchType, Params: params}.Message()
}

// CloseBatch constructs the BATCH command closing batch ref.
func CloseBatch(ref string) *Message {
	return Batch{Ref: "-" + ref}.Message()
}
