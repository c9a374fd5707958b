package smtpauth

import (
	"strings"
)

// Ext is an SMTP service extension keyword, as advertised in an EHLO reply.
type Ext string

// Registered extensions relevant to authentication.
//
// See: https://www.iana.org/assignments/mail-parameters/
const (
	ExtAuth                Ext = "AUTH"                 // RFC 4954
	ExtStartTLS            Ext = "STARTTLS"             // RFC 3207
	ExtEnhancedStatusCodes Ext = "ENHANCEDSTATUSCODES"  // RFC 2034
	ExtPipelining          Ext = "PIPELINING"           // RFC 2920
	ExtSize                Ext = "SIZE"                 // RFC 1870
	Ext8BitMIME            Ext = "8BITMIME"             // RFC 6152
	ExtSMTPUTF8            Ext = "SMTPUTF8"             // RFC 6531
	ExtChunking            Ext = "CHUNKING"             // RFC 3030
	ExtDSN                 Ext = "DSN"                  // RFC 3461
	ExtRequireTLS          Ext = "REQUIRETLS"           // RFC 8689
	ExtBinaryMIME          Ext = "BINARYMIME"           // RFC 3030
)

// ExtSet is the set of extensions advertised by a server, mapped to their
// parameters.
type ExtSet map[Ext]string

// ParseEHLO parses the lines of an EHLO reply. The first line is the server
// greeting and is skipped. Keywords are case-insensitive and stored upper
// case.
//
// Some servers still advertise mechanisms with the pre-standard "AUTH=" form;
// those are merged into the AUTH parameters.
func ParseEHLO(lines []string) ExtSet {
	set := make(ExtSet)
	for i, line := range lines {
		if i == 0 {
			continue
		}
		keyword, params, _ := strings.Cut(strings.TrimSpace(line), " ")
		if keyword == "" {
			continue
		}
		ext := Ext(strings.ToUpper(keyword))
		if strings.HasPrefix(string(ext), "AUTH=") {
			ext = ExtAuth
			params = string(ext[len("AUTH="):]) + joinParams(params)
		}
		if prev, ok := set[ext]; ok && ext == ExtAuth {
			params = mergeMechanisms(prev, params)
		}
		set[ext] = params
	}
	return set
}

func joinParams(params string) string {
	if params == "" {
		return ""
	}
	return " " + params
}

func mergeMechanisms(a, b string) string {
	l := ParseMechanisms(a)
	seen := make(map[string]bool, len(l))
	for _, name := range l {
		seen[name] = true
	}
	for _, name := range ParseMechanisms(b) {
		if !seen[name] {
			l = append(l, name)
			seen[name] = true
		}
	}
	return strings.Join(l, " ")
}

// Has checks whether an extension is supported.
func (set ExtSet) Has(ext Ext) bool {
	_, ok := set[ext]
	return ok
}

// AuthMechanisms returns the parameters of the AUTH extension, suitable for
// Extension.Configure. ok is false if the server doesn't support AUTH.
func (set ExtSet) AuthMechanisms() (parameters string, ok bool) {
	parameters, ok = set[ExtAuth]
	return parameters, ok
}
