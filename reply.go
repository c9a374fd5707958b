package smtpauth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidReply is returned by ParseReplyLine when a line is not a valid
// SMTP reply line.
var ErrInvalidReply = errors.New("smtpauth: invalid reply line")

// ParseReplyLine parses a single SMTP reply line, such as "334 VXNlcm5hbWU6"
// or "250-AUTH PLAIN LOGIN". The trailing CRLF is optional.
func ParseReplyLine(line string) (ParsedMessage, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) < 3 {
		return ParsedMessage{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
	}

	code, err := strconv.Atoi(line[:3])
	if err != nil || code < 200 || code > 599 {
		return ParsedMessage{}, fmt.Errorf("%w: bad code in %q", ErrInvalidReply, line)
	}

	msg := ParsedMessage{Code: code, Last: true}
	if len(line) == 3 {
		return msg, nil
	}
	switch line[3] {
	case ' ':
	case '-':
		msg.Last = false
	default:
		return ParsedMessage{}, fmt.Errorf("%w: bad separator in %q", ErrInvalidReply, line)
	}
	msg.Text = line[4:]
	return msg, nil
}

// ParseMechanisms splits the parameters of an EHLO AUTH keyword into
// mechanism names, in the order the server advertised them.
//
// Names are separated by single spaces. An empty string yields no names.
func ParseMechanisms(parameters string) []string {
	if parameters == "" {
		return nil
	}
	return strings.Split(parameters, " ")
}
