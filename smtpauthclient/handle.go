package smtpauthclient

import (
	"fmt"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/diag"
	"github.com/emersion/go-smtpauth/internal"
	"github.com/emersion/go-smtpauth/metrics"
)

// HandleServerMessage implements smtpauth.Extension.
//
// 235 completes the exchange successfully and 334 is answered with the
// response of the selected mechanism. Any other reply is left to the engine:
// HandleServerMessage returns false and the completion callback isn't
// called.
func (c *Client) HandleServerMessage(ctx smtpauth.MessageContext, msg smtpauth.ParsedMessage) bool {
	if c.options.DebugWriter != nil {
		fmt.Fprintf(c.options.DebugWriter, "S: %v %v\n", msg.Code, msg.Text)
	}

	switch msg.Code {
	case smtpauth.ReplyAuthSucceeded:
		c.diag.Publishf(diag.LevelInfo, "%v %v", msg.Code, msg.Text)
		c.recordOutcome(metrics.OutcomeSuccess)
		c.done = true
		if c.complete != nil {
			c.complete(true)
		}
		return true
	case smtpauth.ReplyAuthContinue:
		c.handleChallenge(msg.Text)
		return true
	default:
		c.diag.Publishf(diag.LevelWarning, "%v %v", msg.Code, msg.Text)
		c.recordOutcome(metrics.OutcomeRejected)
		return false
	}
}

func (c *Client) handleChallenge(text string) {
	if c.selected == nil || c.send == nil {
		c.diag.Publish(diag.LevelWarning, "challenge received outside of an exchange, ignoring")
		return
	}

	challenge, err := internal.DecodeSASL(text)
	if err != nil {
		// The server will answer the cancellation with 501
		c.diag.Publishf(diag.LevelWarning, "malformed challenge %q, cancelling: %v", text, err)
		c.sendLine(internal.CancelSASL)
		return
	}
	c.diag.Publishf(diag.LevelInfo, "challenge: %v", string(challenge))

	if c.options.Metrics != nil {
		c.options.Metrics.RecordChallenge(c.selectedName)
	}
	resp := c.selected.Proceed(challenge)
	c.sendLine(internal.EncodeSASL(resp))
}

func (c *Client) recordOutcome(outcome string) {
	if !c.inProgress {
		return
	}
	c.inProgress = false
	if c.options.Metrics != nil {
		c.options.Metrics.RecordOutcome(c.selectedName, outcome)
	}
}
