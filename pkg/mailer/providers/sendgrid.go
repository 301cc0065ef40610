package providers

import (
	"context"
	"net/http"

	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

type SendGridConfig struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

type SendGridProvider struct {
	httpProvider
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To  []sendGridAddress `json:"to"`
	CC  []sendGridAddress `json:"cc,omitempty"`
	BCC []sendGridAddress `json:"bcc,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func NewSendGridProvider(cfg SendGridConfig) *SendGridProvider {
	return &SendGridProvider{
		httpProvider: newHTTPProvider(registry.ProviderSendGrid, cfg.APIKey, cfg.APIURL, registry.SendGridAPIURL, cfg.HTTPClient),
	}
}

func addresses(emails []string) []sendGridAddress {
	if len(emails) == 0 {
		return nil
	}
	out := make([]sendGridAddress, len(emails))
	for i, e := range emails {
		out[i] = sendGridAddress{Email: e}
	}
	return out
}

func (p *SendGridProvider) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	payload := sendGridPayload{
		Personalizations: []sendGridPersonalization{{
			To:  addresses(msg.To),
			CC:  addresses(msg.CC),
			BCC: addresses(msg.BCC),
		}},
		From:    sendGridAddress{Email: msg.From},
		Subject: msg.Subject,
	}
	// SendGrid requires text/plain to precede text/html.
	if msg.Text != "" {
		payload.Content = append(payload.Content, sendGridContent{Type: registry.MIMETextPlain, Value: msg.Text})
	}
	payload.Content = append(payload.Content, sendGridContent{Type: registry.MIMETextHTML, Value: msg.HTML})
	if msg.ReplyTo != "" {
		payload.ReplyTo = &sendGridAddress{Email: msg.ReplyTo}
	}

	header, _, err := p.postJSON(ctx, registry.PathSendGridMailSend, payload)
	if err != nil {
		return failed(p.name, err)
	}

	return &Receipt{Success: true, MessageID: header.Get(registry.HeaderMessageID), Provider: p.name}, nil
}

func (p *SendGridProvider) Verify(ctx context.Context) (bool, error) {
	return p.ping(ctx, registry.PathSendGridScopes)
}
