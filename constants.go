package irc

// Client and server commands from RFC 1459/2812.
const (
	CmdAdmin    = "ADMIN"
	CmdAway     = "AWAY"     // set or clear an auto-reply for private messages
	CmdCap      = "CAP"      // capability negotiation, see the Cap typed command
	CmdConnect  = "CONNECT"  // operator: link to another server
	CmdDie      = "DIE"      // operator: shut the server down
	CmdError    = "ERROR"    // sent by servers right before dropping the link
	CmdInfo     = "INFO"
	CmdInvite   = "INVITE"
	CmdIsOn     = "ISON"     // ask which of the listed nicks are online
	CmdJoin     = "JOIN"
	CmdKick     = "KICK"
	CmdKill     = "KILL"     // operator: force-disconnect a user
	CmdLinks    = "LINKS"
	CmdList     = "LIST"
	CmdLUsers   = "LUSERS"   // network size statistics
	CmdMode     = "MODE"
	CmdMOTD     = "MOTD"
	CmdNames    = "NAMES"
	CmdNick     = "NICK"
	CmdNotice   = "NOTICE"   // like PRIVMSG but must never trigger automatic replies
	CmdOper     = "OPER"
	CmdPart     = "PART"
	CmdPass     = "PASS"     // connection password, sent before registration
	CmdPing     = "PING"
	CmdPong     = "PONG"
	CmdPrivmsg  = "PRIVMSG"
	CmdQuit     = "QUIT"
	CmdRehash   = "REHASH"   // operator: reload server configuration
	CmdRestart  = "RESTART"
	CmdSQuit    = "SQUIT"    // operator: break a server link
	CmdStats    = "STATS"
	CmdTime     = "TIME"
	CmdTopic    = "TOPIC"
	CmdTrace    = "TRACE"
	CmdUser     = "USER"     // username and realname, sent once at registration
	CmdUserHost = "USERHOST"
	CmdVersion  = "VERSION"
	CmdWAllOps  = "WALLOPS"  // message to everyone with user mode +w
	CmdWho      = "WHO"
	CmdWhoIs    = "WHOIS"
	CmdWhoWas   = "WHOWAS"
)

// Commands added by the IRCv3 extension suite.
// https://ircv3.net/irc/
const (
	CmdAuthenticate = "AUTHENTICATE" // SASL exchange; see the sasl.go helpers
	CmdBatch        = "BATCH"        // groups related messages under a shared reference
	CmdChatHistory  = "CHATHISTORY"  // playback of stored messages
	CmdFail         = "FAIL"         // standard replies: command failed
	CmdMonitor      = "MONITOR"      // online-status tracking for a nick list
	CmdNote         = "NOTE"         // standard replies: informational
	CmdSetName      = "SETNAME"      // change realname without reconnecting
	CmdTagMsg       = "TAGMSG"       // a message whose entire content is its tags
	CmdWarn         = "WARN"         // standard replies: non-fatal warning
)

// Registration numerics. RPL_WELCOME through RPL_MYINFO arrive in
// order after a successful registration; 005 advertises server
// features (see ParseISupport).
const (
	RplWelcome  = "001"
	RplYourHost = "002"
	RplCreated  = "003"
	RplMyInfo   = "004"
	RplISupport = "005"
	RplBounce   = "010" // redirect to another server
)

// Command reply numerics.
const (
	RplTraceLink       = "200"
	RplTraceConnecting = "201"
	RplTraceHandshake  = "202"
	RplTraceUnknown    = "203"
	RplTraceOperator   = "204"
	RplTraceUser       = "205"
	RplTraceServer     = "206"
	RplTraceNewtype    = "208"
	RplTraceClass      = "209"
	RplStatsLinkInfo   = "211"
	RplStatsCommands   = "212"
	RplEndOfStats      = "219"
	RplUModeIs         = "221" // the client's own user modes
	RplStatsUptime     = "242"
	RplStatsOLine      = "243"
	RplLUserClient     = "251"
	RplLUserOp         = "252"
	RplLUserUknownL    = "253"
	RplLUserChannels   = "254"
	RplLUserMe         = "255"
	RplAdminMe         = "256"
	RplAdminLoc1       = "257"
	RplAdminLoc2       = "258"
	RplAdminEmail      = "259"
	RplTraceLog        = "261"
	RplTraceEnd        = "262"
	RplTryAgain        = "263" // server asks the client to retry the command later
	RplAway            = "301"
	RplUserHost        = "302"
	RplIsOn            = "303"
	RplUnAway          = "305"
	RplNowAway         = "306"
	RplWhoIsUser       = "311"
	RplWhoIsServer     = "312"
	RplWhoIsOperator   = "313"
	RplWhoWasUser      = "314"
	RplEndOfWho        = "315"
	RplWhoIsIdle       = "317"
	RplEndOfWhoIs      = "318"
	RplWhoIsChannels   = "319"
	RplListStart       = "321" // obsolete, some servers still send it
	RplList            = "322"
	RplListEnd         = "323"
	RplChannelModeIs   = "324"
	RplNoTopic         = "331"
	RplTopic           = "332"
	RplInviting        = "341"
	RplInviteList      = "346"
	RplEndOfInviteList = "347"
	RplExceptList      = "348"
	RplEndOfExceptList = "349"
	RplVersion         = "351"
	RplWhoReply        = "352"
	RplNamReply        = "353"
	RplLinks           = "364"
	RplEndOfLinks      = "365"
	RplEndOfNames      = "366"
	RplBanList         = "367"
	RplEndOfBanList    = "368"
	RplEndOfWhoWas     = "369"
	RplInfo            = "371"
	RplMOTD            = "372"
	RplEndOfInfo       = "374"
	RplMOTDStart       = "375"
	RplEndOfMOTD       = "376"
	RplYoureOper       = "381"
	RplRehashing       = "382"
	RplTime            = "391"
	RplHostHidden      = "396" // the client's displayed host changed (host masking)
)

// Error numerics.
const (
	RplErrNoSuchNick        = "401"
	RplErrNoSuchServer      = "402"
	RplErrNoSuchChannel     = "403"
	RplErrCannotSendToChan  = "404"
	RplErrTooManyChannels   = "405"
	RplErrWasNoSuchNick     = "406"
	RplErrTooManyTargets    = "407"
	RplErrNoOrigin          = "409" // PING/PONG without an origin parameter
	RplErrInvalidCapCmd     = "410"
	RplErrNoRecipient       = "411"
	RplErrNoTextToSend      = "412"
	RplErrUnknownCommand    = "421"
	RplErrNoMOTD            = "422"
	RplErrNoNicknameGiven   = "431"
	RplErrErroneousNickname = "432"
	RplErrNicknameInUse     = "433"
	RplErrNickCollision     = "436"
	RplErrUserNotInChannel  = "441"
	RplErrNotOnChannel      = "442"
	RplErrUserOnChannel     = "443"
	RplErrNotRegistered     = "451" // command sent before registration finished
	RplErrNeedMoreParams    = "461"
	RplErrAlreadyRegistered = "462"
	RplErrPasswdMismatch    = "464"
	RplErrYoureBannedCreep  = "465"
	RplErrKeySet            = "467"
	RplErrChannelIsFull     = "471" // +l limit reached
	RplErrUnknownMode       = "472"
	RplErrInviteOnlyChan    = "473" // +i
	RplErrBannedFromChan    = "474" // +b
	RplErrBadChannelKey     = "475" // +k
	RplErrBadChanMask       = "476"
	RplErrNoChanModes       = "477"
	RplErrBanListFull       = "478"
	RplErrNoPrivileges      = "481"
	RplErrChanOPrivsNeeded  = "482"
	RplErrCantKillServer    = "483"
	RplErrNoOperHost        = "491"
	RplErrUModeUnknownFlag  = "501"
	RplErrUsersDontMatch    = "502" // MODE on someone else's user modes
)

// IRCv3 numerics: MONITOR responses and the SASL 90x block.
const (
	RplMonOnline      = "730"
	RplMonOffline     = "731"
	RplMonList        = "732"
	RplEndOfMonList   = "733"
	RplErrMonListFull = "734"
	RplLoggedIn       = "900"
	RplLoggedOut      = "901"
	RplErrNickLocked  = "902"
	RplSaslSuccess    = "903"
	RplErrSaslFail    = "904"
	RplErrSaslTooLong = "905"
	RplErrSaslAborted = "906"
	RplErrSaslAlready = "907"
	RplSaslMechs      = "908"
)

// Pseudo-commands for CTCP traffic. These never appear on the wire: the
// client's CTCP middleware rewrites a CTCP-encoded PRIVMSG or NOTICE to
// one of these so handlers can route on the subcommand directly.
// NewCTCPCmd and NewCTCPReplyCmd derive the same names for arbitrary
// subcommands.
const (
	CTCPAction = "_CTCP_QUERY_ACTION"

	CTCPVersionQuery    = "_CTCP_QUERY_VERSION"
	CTCPVersionReply    = "_CTCP_REPLY_VERSION"
	CTCPClientInfoQuery = "_CTCP_QUERY_CLIENTINFO"
	CTCPClientInfoReply = "_CTCP_REPLY_CLIENTINFO"

	CTCPPingQuery = "_CTCP_QUERY_PING"
	CTCPPingReply = "_CTCP_REPLY_PING"
	CTCPTimeQuery = "_CTCP_QUERY_TIME"
	CTCPTimeReply = "_CTCP_REPLY_TIME"
)
