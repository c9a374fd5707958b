package mech

import (
	"github.com/emersion/go-sasl"
)

// The XOAUTH2 mechanism name.
const XOAuth2 = "XOAUTH2"

type xoauth2Client struct {
	Username string
	Token    string
}

func (a *xoauth2Client) Start() (mech string, ir []byte, err error) {
	mech = XOAuth2
	ir = []byte("user=" + a.Username + "\x01auth=Bearer " + a.Token + "\x01\x01")
	return
}

// Next answers the error challenge the server sends when the token is
// rejected. An empty response makes the server complete the exchange with a
// failure reply.
func (a *xoauth2Client) Next(challenge []byte) (response []byte, err error) {
	return []byte{}, nil
}

// NewXOAuth2Client creates a SASL client for the XOAUTH2 mechanism, as
// described in https://developers.google.com/gmail/imap/xoauth2-protocol.
func NewXOAuth2Client(username, token string) sasl.Client {
	return &xoauth2Client{username, token}
}
