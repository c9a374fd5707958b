// Package mech provides SASL mechanisms for the SMTP authentication
// extension.
//
// Mechanisms adapt github.com/emersion/go-sasl clients to the
// smtpauth.Mechanism interface: credentials are set once and may change
// between exchanges, so the underlying SASL client is created lazily at the
// start of each exchange.
package mech

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/diag"
)

// ErrUnknownMechanism is returned by ByName for mechanism names this package
// doesn't implement.
var ErrUnknownMechanism = errors.New("mech: unknown mechanism")

var errNotStarted = errors.New("mech: challenge received before the exchange started")

// Credentials are the secret and identities given to a mechanism.
type Credentials struct {
	// Secret is a password or token.
	Secret string
	// Username is the authentication identity.
	Username string
	// Identity is the authorization identity. Empty means acting as
	// Username.
	Identity string
}

// Factory creates a SASL client for a single exchange.
type Factory func(creds Credentials) sasl.Client

// Mechanism is a SASL mechanism backed by a go-sasl client.
type Mechanism struct {
	name    string
	factory Factory
	diag    *diag.Sender

	creds     Credentials
	client    sasl.Client
	succeeded bool
	faulted   bool
	// Set when Start produced an empty initial response, which is omitted
	// from the AUTH command. The server then asks for it with a challenge.
	pendingIR bool
}

var _ smtpauth.Mechanism = (*Mechanism)(nil)

// New creates a mechanism called name, using factory to create a SASL client
// for each exchange.
func New(name string, factory Factory) *Mechanism {
	return &Mechanism{
		name:    name,
		factory: factory,
		diag:    diag.NewSender(name),
	}
}

// Name returns the mechanism name.
func (m *Mechanism) Name() string {
	return m.name
}

// InitialResponse implements smtpauth.Mechanism.
func (m *Mechanism) InitialResponse() []byte {
	m.client = m.factory(m.creds)
	m.succeeded = false
	m.faulted = false
	m.pendingIR = false

	name, ir, err := m.client.Start()
	if err != nil {
		m.fault(fmt.Errorf("failed to start exchange: %w", err))
		return nil
	}
	if !strings.EqualFold(name, m.name) {
		m.diag.Publishf(diag.LevelWarning, "SASL client started %v instead of %v", name, m.name)
	}
	m.succeeded = true
	m.pendingIR = ir != nil && len(ir) == 0
	return ir
}

// Proceed implements smtpauth.Mechanism.
func (m *Mechanism) Proceed(challenge []byte) []byte {
	if m.client == nil {
		m.fault(errNotStarted)
		return nil
	}
	if m.faulted {
		return nil
	}
	if m.pendingIR {
		// EXTERNAL and PLAIN get an empty challenge here, LOGIN a
		// "Username:" prompt
		m.pendingIR = false
		return []byte{}
	}

	resp, err := m.client.Next(challenge)
	if err != nil {
		m.fault(err)
		return nil
	}
	return resp
}

// SetCredentials implements smtpauth.Mechanism.
//
// Identities are prepared with the PRECIS UsernameCasePreserved profile and
// the secret with the OpaqueString profile. Values the profiles reject are
// kept as-is.
func (m *Mechanism) SetCredentials(credentials, authenticationIdentity, authorizationIdentity string) {
	m.creds = Credentials{
		Secret:   m.prepare(secretProfile, "secret", credentials),
		Username: m.prepare(identityProfile, "authentication identity", authenticationIdentity),
		Identity: m.prepare(identityProfile, "authorization identity", authorizationIdentity),
	}
}

// Reset implements smtpauth.Mechanism.
func (m *Mechanism) Reset() {
	m.client = nil
	m.succeeded = false
	m.faulted = false
	m.pendingIR = false
}

// Succeeded reports whether the mechanism produced every response of the
// current exchange without error. Whether the server accepted them is only
// known to the caller.
func (m *Mechanism) Succeeded() bool {
	return m.succeeded && !m.faulted
}

// Faulted reports whether the mechanism failed to produce a response during
// the current exchange.
func (m *Mechanism) Faulted() bool {
	return m.faulted
}

// SubscribeToDiagnostics implements smtpauth.Mechanism.
func (m *Mechanism) SubscribeToDiagnostics(sink diag.Sink, minLevel diag.Level) (unsubscribe func()) {
	return m.diag.Subscribe(sink, minLevel)
}

func (m *Mechanism) fault(err error) {
	m.succeeded = false
	m.faulted = true
	m.diag.Publish(diag.LevelError, err.Error())
}

// NewPlain creates a PLAIN mechanism (RFC 4616).
func NewPlain() *Mechanism {
	return New(sasl.Plain, func(creds Credentials) sasl.Client {
		return sasl.NewPlainClient(creds.Identity, creds.Username, creds.Secret)
	})
}

// NewLogin creates a LOGIN mechanism. The username is sent as the initial
// response and the password in reply to the first challenge.
func NewLogin() *Mechanism {
	return New(sasl.Login, func(creds Credentials) sasl.Client {
		return sasl.NewLoginClient(creds.Username, creds.Secret)
	})
}

// NewExternal creates an EXTERNAL mechanism (RFC 4422). Only the
// authorization identity is used.
func NewExternal() *Mechanism {
	return New(sasl.External, func(creds Credentials) sasl.Client {
		return sasl.NewExternalClient(creds.Identity)
	})
}

// NewAnonymous creates an ANONYMOUS mechanism (RFC 4505). The authentication
// identity is sent as trace information.
func NewAnonymous() *Mechanism {
	return New(sasl.Anonymous, func(creds Credentials) sasl.Client {
		return sasl.NewAnonymousClient(creds.Username)
	})
}

// NewOAuthBearer creates an OAUTHBEARER mechanism (RFC 7628). The secret is
// the bearer token. host and port describe the server being authenticated
// to and may be left empty.
func NewOAuthBearer(host string, port int) *Mechanism {
	return New(sasl.OAuthBearer, func(creds Credentials) sasl.Client {
		return sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: creds.Username,
			Token:    creds.Secret,
			Host:     host,
			Port:     port,
		})
	})
}

// NewXOAuth2 creates an XOAUTH2 mechanism. The secret is the access token.
func NewXOAuth2() *Mechanism {
	return New(XOAuth2, func(creds Credentials) sasl.Client {
		return NewXOAuth2Client(creds.Username, creds.Secret)
	})
}

// Names lists the mechanisms ByName knows about.
var Names = []string{sasl.Plain, sasl.Login, sasl.External, sasl.Anonymous, sasl.OAuthBearer, XOAuth2}

// ByName creates a new mechanism from its SASL name. Names are
// case-insensitive.
func ByName(name string) (*Mechanism, error) {
	switch strings.ToUpper(name) {
	case sasl.Plain:
		return NewPlain(), nil
	case sasl.Login:
		return NewLogin(), nil
	case sasl.External:
		return NewExternal(), nil
	case sasl.Anonymous:
		return NewAnonymous(), nil
	case sasl.OAuthBearer:
		return NewOAuthBearer("", 0), nil
	case XOAuth2:
		return NewXOAuth2(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMechanism, name)
	}
}
