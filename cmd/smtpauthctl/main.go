package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/config"
)

var (
	configPath string
	advertised string
	ehloPath   string
)

var rootCmd = &cobra.Command{
	Use:   "smtpauthctl",
	Short: "Inspect SMTP authentication exchanges offline",
	Long: `smtpauthctl runs the SMTP authentication extension without a network
connection. Mechanisms and credentials are read from a YAML file and
SMTPAUTH_* environment variables.

The advertised mechanisms are the parameters of the AUTH keyword of a
server's EHLO reply, e.g. "PLAIN LOGIN XOAUTH2".`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file")
	rootCmd.PersistentFlags().StringVarP(&advertised, "advertised", "a", "", "mechanisms advertised by the server")
	rootCmd.PersistentFlags().StringVar(&ehloPath, "ehlo", "", "file containing the server's EHLO reply, instead of --advertised")
	rootCmd.AddCommand(selectCmd, replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if level == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapConfig.OutputPaths = []string{"stderr"}
	return zapConfig.Build()
}

func advertisedMechanisms() (string, error) {
	if ehloPath == "" {
		return advertised, nil
	}
	f, err := os.Open(ehloPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return readEHLO(f)
}

// readEHLO reads an EHLO reply, either as raw reply lines ("250-AUTH PLAIN")
// or as bare keyword lines, and returns the AUTH parameters.
func readEHLO(r io.Reader) (string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if msg, err := smtpauth.ParseReplyLine(line); err == nil {
			line = msg.Text
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	params, ok := smtpauth.ParseEHLO(lines).AuthMechanisms()
	if !ok {
		return "", fmt.Errorf("server doesn't advertise %v", smtpauth.ExtAuth)
	}
	return params, nil
}
