package smtpauth_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-smtpauth"
)

func TestParseReplyLine(t *testing.T) {
	tests := []struct {
		line string
		want smtpauth.ParsedMessage
	}{
		{"235 2.7.0 Authentication successful\r\n", smtpauth.ParsedMessage{Code: 235, Text: "2.7.0 Authentication successful", Last: true}},
		{"334 VXNlcm5hbWU6", smtpauth.ParsedMessage{Code: 334, Text: "VXNlcm5hbWU6", Last: true}},
		{"334 ", smtpauth.ParsedMessage{Code: 334, Text: "", Last: true}},
		{"334", smtpauth.ParsedMessage{Code: 334, Last: true}},
		{"250-AUTH PLAIN LOGIN\r\n", smtpauth.ParsedMessage{Code: 250, Text: "AUTH PLAIN LOGIN", Last: false}},
	}
	for _, tc := range tests {
		got, err := smtpauth.ParseReplyLine(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestParseReplyLine_invalid(t *testing.T) {
	for _, line := range []string{"", "23", "abc hello", "999 nope", "235:ok", "100 too low"} {
		_, err := smtpauth.ParseReplyLine(line)
		assert.True(t, errors.Is(err, smtpauth.ErrInvalidReply), "line %q: %v", line, err)
	}
}

func TestParseMechanisms(t *testing.T) {
	assert.Equal(t, []string{"FOO", "BAR"}, smtpauth.ParseMechanisms("FOO BAR"))
	assert.Equal(t, []string{"PLAIN"}, smtpauth.ParseMechanisms("PLAIN"))
	assert.Nil(t, smtpauth.ParseMechanisms(""))
	assert.Equal(t, []string{"A", "", "B"}, smtpauth.ParseMechanisms("A  B"))
}

func TestProtocolStage_String(t *testing.T) {
	assert.Equal(t, "ready-to-send", smtpauth.StageReadyToSend.String())
	assert.Equal(t, "unknown", smtpauth.ProtocolStage(42).String())
}
