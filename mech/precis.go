package mech

import (
	"golang.org/x/text/secure/precis"

	"github.com/emersion/go-smtpauth/diag"
)

var (
	identityProfile = precis.UsernameCasePreserved
	secretProfile   = precis.OpaqueString
)

func (m *Mechanism) prepare(profile *precis.Profile, what, s string) string {
	if s == "" {
		return s
	}
	prepared, err := profile.String(s)
	if err != nil {
		m.diag.Publishf(diag.LevelWarning, "cannot prepare %v, using it unmodified: %v", what, err)
		return s
	}
	return prepared
}
