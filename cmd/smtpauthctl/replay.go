package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/config"
	"github.com/emersion/go-smtpauth/diag"
	"github.com/emersion/go-smtpauth/smtpauthclient"
)

var (
	errRejected   = errors.New("server rejected authentication")
	errUnfinished = errors.New("server replies ended before the exchange completed")
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Feed server replies read from stdin through the extension",
	Long: `replay sends the AUTH command, then reads server reply lines such as
"334 VXNlcm5hbWU6" or "235 2.7.0 Authentication successful" from stdin
and prints every line the client would send in response.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mechs, err := advertisedMechanisms()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()
		return runReplay(cfg, mechs, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	},
}

func runReplay(cfg *config.Config, advertised string, in io.Reader, out io.Writer, logger *zap.Logger) error {
	c := smtpauthclient.New(nil)
	c.SubscribeToDiagnostics(diag.ZapSink(logger), diag.LevelInfo)
	if err := cfg.Apply(c); err != nil {
		return err
	}
	c.Configure(advertised)

	ctx := smtpauth.MessageContext{ProtocolStage: smtpauth.StageReadyToSend}
	if !c.IsExtraProtocolStageNeededHere(ctx) {
		return errNoMechanism
	}

	var (
		completed bool
		writeErr  error
	)
	send := func(data string) {
		if _, err := io.WriteString(out, data); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	complete := func(success bool) {
		completed = true
	}
	c.GoAhead(send, complete)

	scanner := bufio.NewScanner(in)
	for !completed && scanner.Scan() {
		if writeErr != nil {
			return writeErr
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		msg, err := smtpauth.ParseReplyLine(line)
		if err != nil {
			return err
		}
		if !c.HandleServerMessage(ctx, msg) {
			return fmt.Errorf("%w: %v %v", errRejected, msg.Code, msg.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	if !completed {
		return errUnfinished
	}
	name, _ := c.Selected()
	logger.Info("authenticated", zap.String("mechanism", name))
	return nil
}
