package smtpauthclient_test

import (
	"fmt"

	"github.com/emersion/go-smtpauth"
	"github.com/emersion/go-smtpauth/mech"
	"github.com/emersion/go-smtpauth/smtpauthclient"
)

func ExampleClient() {
	auth := smtpauthclient.New(nil)
	auth.Register("PLAIN", 1, mech.NewPlain())
	auth.Register("XOAUTH2", 2, mech.NewXOAuth2())
	auth.SetCredentials("hunter2", "alex")

	// Parameters of the AUTH keyword in the EHLO reply
	auth.Configure("LOGIN PLAIN")

	ctx := smtpauth.MessageContext{ProtocolStage: smtpauth.StageReadyToSend}
	if !auth.IsExtraProtocolStageNeededHere(ctx) {
		fmt.Println("no usable mechanism")
		return
	}

	send := func(data string) {
		fmt.Printf("C: %q\n", data)
	}
	complete := func(success bool) {
		fmt.Println("authenticated:", success)
	}
	auth.GoAhead(send, complete)

	auth.HandleServerMessage(ctx, smtpauth.ParsedMessage{
		Code: 235,
		Text: "2.7.0 Authentication successful",
		Last: true,
	})

	// Output:
	// C: "AUTH PLAIN AGFsZXgAaHVudGVyMg==\r\n"
	// authenticated: true
}

func ExampleClient_login() {
	auth := smtpauthclient.New(nil)
	auth.Register("LOGIN", 0, mech.NewLogin())
	auth.SetCredentials("hunter2", "alex")
	auth.Configure("LOGIN")

	ctx := smtpauth.MessageContext{ProtocolStage: smtpauth.StageReadyToSend}
	if !auth.IsExtraProtocolStageNeededHere(ctx) {
		return
	}
	auth.GoAhead(func(data string) {
		fmt.Printf("C: %q\n", data)
	}, func(success bool) {
		fmt.Println("authenticated:", success)
	})

	for _, line := range []string{"334 UGFzc3dvcmQ6", "535 5.7.8 Authentication credentials invalid"} {
		msg, err := smtpauth.ParseReplyLine(line)
		if err != nil {
			panic(err)
		}
		if !auth.HandleServerMessage(ctx, msg) {
			fmt.Println("left to the engine:", msg.Code)
		}
	}

	// Output:
	// C: "AUTH LOGIN YWxleA==\r\n"
	// C: "aHVudGVyMg==\r\n"
	// left to the engine: 535
}
