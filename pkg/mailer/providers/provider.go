package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

const defaultHTTPTimeout = 10 * time.Second

// EmailProvider delivers a single message through one upstream API.
type EmailProvider interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
	Verify(ctx context.Context) (bool, error)
	Name() string
}

type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	CC      []string
	BCC     []string
}

// Clone copies the message so callers can fill defaults without touching the original.
func (m *Message) Clone() *Message {
	c := *m
	c.To = append([]string(nil), m.To...)
	c.CC = append([]string(nil), m.CC...)
	c.BCC = append([]string(nil), m.BCC...)
	return &c
}

type Receipt struct {
	Success   bool
	MessageID string
	Error     string
	Provider  string
}

func failed(provider string, err error) (*Receipt, error) {
	return &Receipt{Success: false, Error: err.Error(), Provider: provider}, err
}

type httpProvider struct {
	name   string
	apiKey string
	apiURL string
	client *http.Client
}

func newHTTPProvider(name, apiKey, apiURL, fallbackURL string, client *http.Client) httpProvider {
	if apiURL == "" {
		apiURL = fallbackURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return httpProvider{name: name, apiKey: apiKey, apiURL: apiURL, client: client}
}

func (p *httpProvider) Name() string {
	return p.name
}

// postJSON sends payload to path and returns the response headers and body on a 2xx status.
func (p *httpProvider) postJSON(ctx context.Context, path string, payload any) (http.Header, []byte, error) {
	if p.apiKey == "" {
		return nil, nil, registry.ErrAPIKeyRequired
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf(registry.MsgFailedMarshalPayloadFmt, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	p.authorize(req)
	req.Header.Set(registry.HeaderContentType, registry.MIMEApplicationJSON)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf(registry.MsgRequestFailedFmt, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%w: %s", registry.ErrAPIStatus(p.name, resp.StatusCode), body)
	}
	return resp.Header, body, nil
}

func (p *httpProvider) ping(ctx context.Context, path string) (bool, error) {
	if p.apiKey == "" {
		return false, registry.ErrAPIKeyRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, nil)
	if err != nil {
		return false, err
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

func (p *httpProvider) authorize(req *http.Request) {
	req.Header.Set(registry.HeaderAuthorization, registry.AuthBearerPrefix+p.apiKey)
}
