// Package email delivers the handful of plain-text messages the app sends:
// verification links, password resets, and group invites.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendGroupInvite(ctx context.Context, to, groupName, inviteToken string) error
}

// SMTPMailer sends over a plain SMTP relay.
type SMTPMailer struct {
	Addr      string // host:port
	From      string
	Auth      smtp.Auth
	ClientURL string
}

func NewSMTP(addr, from, username, password, clientURL string) *SMTPMailer {
	m := &SMTPMailer{Addr: addr, From: from, ClientURL: clientURL}
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		m.Auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	return smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(msg))
}

func (m *SMTPMailer) SendVerification(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", m.ClientURL, token)
	return m.send(to, "Verify your email",
		"Welcome to Movie Monday! Verify your email within 24 hours:\n\n"+link)
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", m.ClientURL, token)
	return m.send(to, "Reset your password",
		"A password reset was requested for this address. The link is valid for one hour:\n\n"+link)
}

func (m *SMTPMailer) SendGroupInvite(_ context.Context, to, groupName, inviteToken string) error {
	link := fmt.Sprintf("%s/groups/join/%s", m.ClientURL, inviteToken)
	return m.send(to, fmt.Sprintf("You're invited to %s", groupName),
		fmt.Sprintf("You've been invited to join the group %q. The invite expires in 7 days:\n\n%s", groupName, link))
}

// LogMailer logs instead of sending; used in development and tests.
type LogMailer struct{ Log *zap.Logger }

func (m *LogMailer) SendVerification(_ context.Context, to, token string) error {
	m.Log.Info("verification mail", zap.String("to", to), zap.String("token", token))
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.Log.Info("password reset mail", zap.String("to", to), zap.String("token", token))
	return nil
}

func (m *LogMailer) SendGroupInvite(_ context.Context, to, groupName, inviteToken string) error {
	m.Log.Info("group invite mail", zap.String("to", to), zap.String("group", groupName))
	return nil
}
