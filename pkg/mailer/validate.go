package mailer

import (
	"net/mail"
	"strings"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// ValidateEmail accepts a bare address or a "Name <address>" form.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return registry.ErrInvalidFromEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return err
	}
	return nil
}

func ValidateMessage(msg *providers.Message) error {
	if msg == nil {
		return registry.ErrEmailDataRequired
	}
	if len(msg.To) == 0 {
		return registry.ErrAtLeastOneRecipient
	}
	for _, to := range msg.To {
		if ValidateEmail(to) != nil {
			return registry.ErrInvalidToEmail(to)
		}
	}
	for _, cc := range msg.CC {
		if ValidateEmail(cc) != nil {
			return registry.ErrInvalidCCEmail(cc)
		}
	}
	for _, bcc := range msg.BCC {
		if ValidateEmail(bcc) != nil {
			return registry.ErrInvalidBCCEmail(bcc)
		}
	}
	if ValidateEmail(msg.From) != nil {
		return registry.ErrInvalidFromEmail
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return registry.ErrSubjectRequired
	}
	if strings.TrimSpace(msg.HTML) == "" {
		return registry.ErrHTMLContentRequired
	}
	if msg.ReplyTo != "" && ValidateEmail(msg.ReplyTo) != nil {
		return registry.ErrInvalidReplyToEmail
	}
	return nil
}
