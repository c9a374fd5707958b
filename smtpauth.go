// Package smtpauth implements the client side of the SMTP Service Extension
// for Authentication.
//
// The extension is defined in RFC 4954. This package holds the types shared
// between the extension (see package smtpauthclient) and the SMTP engine that
// drives it.
package smtpauth

import (
	"github.com/emersion/go-smtpauth/diag"
)

// ProtocolStage is a point in the SMTP client state machine at which
// extensions may intervene.
type ProtocolStage int

const (
	StageGreeting ProtocolStage = iota
	StageHelloResponse
	StageOptions
	StageReadyToSend
	StageDeclaringSender
	StageDeclaringRecipients
	StageSendingData
	StageAwaitingSendResponse
)

func (stage ProtocolStage) String() string {
	switch stage {
	case StageGreeting:
		return "greeting"
	case StageHelloResponse:
		return "hello-response"
	case StageOptions:
		return "options"
	case StageReadyToSend:
		return "ready-to-send"
	case StageDeclaringSender:
		return "declaring-sender"
	case StageDeclaringRecipients:
		return "declaring-recipients"
	case StageSendingData:
		return "sending-data"
	case StageAwaitingSendResponse:
		return "awaiting-send-response"
	default:
		return "unknown"
	}
}

// MessageContext describes where the SMTP engine currently is.
type MessageContext struct {
	ProtocolStage ProtocolStage
}

// ParsedMessage is a server reply, as parsed by the SMTP engine.
//
// For multi-line replies, Last is false on every line but the final one.
type ParsedMessage struct {
	Code int
	Text string
	Last bool
}

// Reply codes the authentication extension cares about.
const (
	ReplyAuthSucceeded    = 235 // RFC 4954 section 6
	ReplyAuthContinue     = 334
	ReplyAuthCancelled    = 501
	ReplyAuthFailed       = 535
	ReplyAuthTempFailure  = 454
	ReplyAuthRequired     = 530
	ReplyMechanismTooWeak = 534
)

// Extension is implemented by SMTP service extensions that need an extra
// protocol stage.
//
// The engine asks IsExtraProtocolStageNeededHere right before acting on the
// result, then calls GoAhead, then forwards every server reply to
// HandleServerMessage until the completion callback fires or
// HandleServerMessage returns false.
type Extension interface {
	// Configure passes the parameters the server advertised for this
	// extension in its EHLO reply.
	Configure(parameters string)
	// Reset brings the extension back to its initial state, e.g. after the
	// transport has been reset.
	Reset()
	IsExtraProtocolStageNeededHere(ctx MessageContext) bool
	GoAhead(send func(data string), complete func(success bool))
	// HandleServerMessage returns false if the extension did not consume the
	// reply and the engine should handle it itself.
	HandleServerMessage(ctx MessageContext, msg ParsedMessage) bool
}

// Mechanism is a client-side SASL mechanism.
type Mechanism interface {
	// InitialResponse returns the data to send along with the AUTH command.
	// An empty result means no initial response.
	InitialResponse() []byte
	// Proceed computes the response to a server challenge.
	Proceed(challenge []byte) []byte
	// SetCredentials sets the secret and identities used by the mechanism.
	// An empty authorization identity means acting as the owner of the
	// credentials.
	SetCredentials(credentials, authenticationIdentity, authorizationIdentity string)
	// Reset discards any state from a previous exchange.
	Reset()
	Succeeded() bool
	Faulted() bool
	// SubscribeToDiagnostics registers sink for diagnostics at minLevel or
	// above. The returned function cancels the subscription.
	SubscribeToDiagnostics(sink diag.Sink, minLevel diag.Level) (unsubscribe func())
}
