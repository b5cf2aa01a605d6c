package irc

import "encoding/base64"

// SASL payload helpers for the AUTHENTICATE exchange. Only the payload
// derivation for the PLAIN and EXTERNAL mechanisms lives here; driving
// the exchange against CAP and the 90x numerics is the caller's
// concern.

// saslChunkSize is the maximum AUTHENTICATE parameter length. Longer
// payloads are sent in consecutive commands, and a payload that is an
// exact multiple of the chunk size is terminated with the "+" sentinel.
// https://ircv3.net/specs/extensions/sasl-3.1
const saslChunkSize = 400

// SASLPlain derives the base64 PLAIN payload from an authorization
// identity (usually empty), an authentication identity, and a password.
func SASLPlain(authzid, authcid, password string) string {
	raw := authzid + "\x00" + authcid + "\x00" + password
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// SASLExternal derives the EXTERNAL payload for an optional
// authorization identity. With no identity the payload is the "+"
// empty sentinel.
func SASLExternal(authzid string) string {
	if authzid == "" {
		return "+"
	}
	return base64.StdEncoding.EncodeToString([]byte(authzid))
}

// AuthenticateMessages splits a SASL payload into AUTHENTICATE
// commands, chunking at 400 bytes. An empty payload yields the single
// "+" sentinel command.
func AuthenticateMessages(payload string) []*Message {
	if payload == "" {
		return []*Message{Authenticate{Data: "+"}.Message()}
	}
	var out []*Message
	for len(payload) > 0 {
		n := len(payload)
		if n > saslChunkSize {
			n = saslChunkSize
		}
		out = append(out, Authenticate{Data: payload[:n]}.Message())
		payload = payload[n:]
		if n == saslChunkSize && payload == "" {
			// a full final chunk needs the empty sentinel after it
			out = append(out, Authenticate{Data: "+"}.Message())
		}
	}
	return out
}
