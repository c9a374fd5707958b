// Package smtpauthclient implements the client side of the SMTP
// authentication extension (RFC 4954).
//
// A Client is driven by an SMTP engine through the smtpauth.Extension
// interface. It picks the best SASL mechanism supported by both ends, sends
// the AUTH command and answers server challenges until the server accepts or
// rejects the credentials.
//
// A Client must not be used from multiple goroutines at once.
package smtpauthclient

import (
	"fmt"
	"io"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/diag"
	"github.com/emersion/go-smtpauth/internal"
	"github.com/emersion/go-smtpauth/metrics"
)

// Options contains options for Client.
type Options struct {
	// Raw ingress and egress lines will be written to this writer, if any.
	// This includes credentials.
	DebugWriter io.Writer
	// Diagnostics at LogLevel or above are written to this logger, if any. A
	// nil *log.Logger stored in the interface means log.Default().
	Logger   diag.Logger
	LogLevel diag.Level
	// Exchanges are recorded in this collector, if any.
	Metrics *metrics.Collector
}

type registration struct {
	rank int
	mech smtpauth.Mechanism
}

// Client is the SMTP authentication extension.
type Client struct {
	options Options
	diag    *diag.Sender

	mechs     map[string]registration
	supported []string

	selectedName        string
	selected            smtpauth.Mechanism
	unsubscribeSelected func()

	done       bool
	inProgress bool
	send       func(data string)
	complete   func(success bool)
}

var _ smtpauth.Extension = (*Client)(nil)

// New creates a new authentication extension.
//
// A nil options pointer is equivalent to a zero options value.
func New(options *Options) *Client {
	if options == nil {
		options = &Options{}
	}

	c := &Client{
		options: *options,
		diag:    diag.NewSender("smtpauth"),
		mechs:   make(map[string]registration),
	}
	if options.Logger != nil {
		c.diag.Subscribe(diag.LoggerSink(options.Logger), options.LogLevel)
	}
	return c
}

// Register adds a mechanism to use if the server supports it. When the
// server supports several registered mechanisms, the one with the highest
// rank is used.
//
// Registering a name again replaces the previous mechanism.
func (c *Client) Register(name string, rank int, mech smtpauth.Mechanism) {
	c.mechs[name] = registration{rank: rank, mech: mech}
}

// Configure sets the mechanisms supported by the server, as the
// space-separated parameters of the AUTH keyword of its EHLO reply.
func (c *Client) Configure(parameters string) {
	c.supported = smtpauth.ParseMechanisms(parameters)
}

// SetCredentials sets the credentials of every registered mechanism.
//
// The optional authorization identity defaults to the empty string, meaning
// the client acts as the owner of the credentials. Mechanisms registered
// afterwards don't get the credentials.
func (c *Client) SetCredentials(credentials, authenticationIdentity string, authorizationIdentity ...string) {
	var authzid string
	if len(authorizationIdentity) > 0 {
		authzid = authorizationIdentity[0]
	}
	for _, reg := range c.mechs {
		reg.mech.SetCredentials(credentials, authenticationIdentity, authzid)
	}
}

// Reset resets every registered mechanism and makes the extension usable for
// a new exchange.
func (c *Client) Reset() {
	for _, reg := range c.mechs {
		reg.mech.Reset()
	}
	c.done = false
	c.inProgress = false
}

// Selected returns the name of the mechanism picked by the last call to
// IsExtraProtocolStageNeededHere.
func (c *Client) Selected() (name string, ok bool) {
	return c.selectedName, c.selected != nil
}

// Done reports whether the server accepted the credentials.
func (c *Client) Done() bool {
	return c.done
}

// SubscribeToDiagnostics registers sink for diagnostics at minLevel or above,
// including those of the selected mechanism.
func (c *Client) SubscribeToDiagnostics(sink diag.Sink, minLevel diag.Level) (unsubscribe func()) {
	return c.diag.Subscribe(sink, minLevel)
}

// IsExtraProtocolStageNeededHere implements smtpauth.Extension.
//
// Authentication happens right before the first mail transaction, if a
// registered mechanism is supported by the server. The mechanism is picked
// again on each call.
func (c *Client) IsExtraProtocolStageNeededHere(ctx smtpauth.MessageContext) bool {
	if c.done || ctx.ProtocolStage != smtpauth.StageReadyToSend {
		return false
	}
	c.selectBestSupportedMechanism()
	return c.selected != nil
}

// GoAhead implements smtpauth.Extension.
//
// It must only be called right after IsExtraProtocolStageNeededHere returned
// true.
func (c *Client) GoAhead(send func(data string), complete func(success bool)) {
	c.send = send
	c.complete = complete
	if c.selected == nil {
		c.diag.Publish(diag.LevelWarning, "no mechanism selected, not sending AUTH")
		return
	}

	cmd := "AUTH " + c.selectedName
	if ir := c.selected.InitialResponse(); len(ir) > 0 {
		cmd += " " + internal.EncodeSASL(ir)
	}
	c.inProgress = true
	if c.options.Metrics != nil {
		c.options.Metrics.RecordStarted(c.selectedName)
	}
	c.sendLine(cmd)
}

func (c *Client) selectBestSupportedMechanism() {
	var (
		bestName string
		best     *registration
	)
	for _, name := range c.supported {
		reg, ok := c.mechs[name]
		if !ok {
			continue
		}
		if best == nil || reg.rank > best.rank {
			bestName = name
			best = &reg
		}
	}

	if c.unsubscribeSelected != nil {
		c.unsubscribeSelected()
		c.unsubscribeSelected = nil
	}
	c.selectedName = ""
	c.selected = nil
	if best == nil {
		return
	}

	c.selectedName = bestName
	c.selected = best.mech
	c.unsubscribeSelected = c.selected.SubscribeToDiagnostics(c.diag.Chain(bestName), diag.LevelInfo)
}

func (c *Client) sendLine(line string) {
	if c.options.DebugWriter != nil {
		fmt.Fprintf(c.options.DebugWriter, "C: %v\n", line)
	}
	c.send(line + internal.CRLF)
}
