// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// CredentialNotifier dispatches a generated credential to a freshly
// provisioned judge.
//
// Delivery failure is survivable: provisioning never rolls back the
// principal when the mail bounces — the admin can resend or share the
// credential manually (availability over consistency, by contract).
type CredentialNotifier interface {
	NotifyCredentials(ctx context.Context, email, displayName, password string) error
}

// SMTPNotifier implements [CredentialNotifier] over an SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier creates a notifier sending through the given relay.
func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// NotifyCredentials sends the judge their login email and generated password.
func (n *SMTPNotifier) NotifyCredentials(ctx context.Context, email, displayName, password string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", email)
	message.SetHeader("Subject", "Your Laurea judge account")
	message.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\n"+
			"A judge account has been created for you on Laurea.\n\n"+
			"Login: %s\nTemporary password: %s\n\n"+
			"Please sign in at the judges portal and change your password.\n",
		displayName, email, password,
	))

	if err := n.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("identity: credential mail dispatch failed: %w", err)
	}

	return nil
}
