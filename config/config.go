// Package config loads the mechanisms and credentials used for SMTP
// authentication from a YAML file and the environment.
//
// Environment variables prefixed with SMTPAUTH_ override file values. Nested
// keys are separated by a double underscore, e.g. SMTPAUTH_CREDENTIALS__SECRET
// sets credentials.secret.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/emersion/go-smtpauth/mech"
	"github.com/emersion/go-smtpauth/smtpauthclient"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SMTPAUTH_"

// Mechanism configures a SASL mechanism.
type Mechanism struct {
	Name string `koanf:"name"`
	Rank int    `koanf:"rank"`
	// Host and Port are only used by OAUTHBEARER.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Credentials are handed to every mechanism.
type Credentials struct {
	Username string `koanf:"username"`
	Secret   string `koanf:"secret"`
	Authzid  string `koanf:"authzid"`
}

// Config is the authentication configuration.
type Config struct {
	Mechanisms  []Mechanism `koanf:"mechanisms"`
	Credentials Credentials `koanf:"credentials"`
	LogLevel    string      `koanf:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Mechanisms: []Mechanism{{Name: "PLAIN", Rank: 0}},
		LogLevel:   "info",
	}
}

// Load reads the configuration from the YAML file at path, if path isn't
// empty, then from the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to load %v: %w", path, err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	def := Default()
	if len(cfg.Mechanisms) == 0 {
		cfg.Mechanisms = def.Mechanisms
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if len(cfg.Mechanisms) == 0 {
		return errors.New("config: no mechanism configured")
	}

	seen := make(map[string]bool)
	for _, m := range cfg.Mechanisms {
		name := strings.ToUpper(m.Name)
		if _, err := mech.ByName(name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if seen[name] {
			return fmt.Errorf("config: mechanism %v configured twice", name)
		}
		seen[name] = true
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("config: invalid log level %q", cfg.LogLevel)
	}
	return nil
}

// Apply registers the configured mechanisms on c and sets their credentials.
func (cfg *Config) Apply(c *smtpauthclient.Client) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, m := range cfg.Mechanisms {
		name := strings.ToUpper(m.Name)
		var impl *mech.Mechanism
		if name == "OAUTHBEARER" {
			impl = mech.NewOAuthBearer(m.Host, m.Port)
		} else {
			var err error
			if impl, err = mech.ByName(name); err != nil {
				return fmt.Errorf("config: %w", err)
			}
		}
		c.Register(name, m.Rank, impl)
	}

	creds := cfg.Credentials
	c.SetCredentials(creds.Secret, creds.Username, creds.Authzid)
	return nil
}
