package providers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

type ResendConfig struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

type ResendProvider struct {
	httpProvider
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	CC      []string `json:"cc,omitempty"`
	BCC     []string `json:"bcc,omitempty"`
}

func NewResendProvider(cfg ResendConfig) *ResendProvider {
	return &ResendProvider{
		httpProvider: newHTTPProvider(registry.ProviderResend, cfg.APIKey, cfg.APIURL, registry.ResendAPIURL, cfg.HTTPClient),
	}
}

func (p *ResendProvider) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	_, body, err := p.postJSON(ctx, registry.PathResendEmails, resendPayload{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		CC:      msg.CC,
		BCC:     msg.BCC,
	})
	if err != nil {
		return failed(p.name, err)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return failed(p.name, err)
	}

	return &Receipt{Success: true, MessageID: out.ID, Provider: p.name}, nil
}

func (p *ResendProvider) Verify(ctx context.Context) (bool, error) {
	return p.ping(ctx, registry.PathResendAPIKeys)
}
