package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/config"
	"github.com/emersion/go-smtpauth/smtpauthclient"
)

var errNoMechanism = errors.New("no configured mechanism is advertised by the server")

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Print the mechanism that would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mechs, err := advertisedMechanisms()
		if err != nil {
			return err
		}
		return runSelect(cfg, mechs, cmd.OutOrStdout())
	},
}

func runSelect(cfg *config.Config, advertised string, out io.Writer) error {
	c := smtpauthclient.New(nil)
	if err := cfg.Apply(c); err != nil {
		return err
	}
	c.Configure(advertised)

	ctx := smtpauth.MessageContext{ProtocolStage: smtpauth.StageReadyToSend}
	if !c.IsExtraProtocolStageNeededHere(ctx) {
		return errNoMechanism
	}
	name, _ := c.Selected()
	_, err := fmt.Fprintln(out, name)
	return err
}
