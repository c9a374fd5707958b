package internal

import (
	"encoding/base64"
)

// CRLF terminates every line sent to an SMTP server.
const CRLF = "\r\n"

// CancelSASL is the response a client sends to abort an AUTH exchange.
const CancelSASL = "*"

func EncodeSASL(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeSASL(s string) ([]byte, error) {
	if s == "" || s == "=" {
		// mechanisms treat nil as no challenge, so return a non-nil empty
		// byte slice
		return []byte{}, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
