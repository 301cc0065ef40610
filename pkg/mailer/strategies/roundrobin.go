package strategies

import (
	"context"
	"errors"
	"sync"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// RoundRobin rotates the starting provider on every call and falls through
// to the next one on failure.
type RoundRobin struct {
	mu   sync.Mutex
	next int
}

func (s *RoundRobin) Deliver(ctx context.Context, msg *providers.Message, list []providers.EmailProvider) (*providers.Receipt, error) {
	n := len(list)
	if n == 0 {
		return noProviders()
	}

	s.mu.Lock()
	start := s.next % n
	s.next = (start + 1) % n
	s.mu.Unlock()

	lastErr := registry.ErrNoProvidersConfigured
	lastProvider := registry.ProviderLabelNone
	for i := 0; i < n; i++ {
		p := list[(start+i)%n]
		if p == nil {
			continue
		}

		receipt, err := p.Send(ctx, msg)
		if succeeded(receipt) {
			return receipt, nil
		}
		lastProvider = p.Name()
		lastErr = err
		if lastErr == nil {
			lastErr = errors.New(failureText(receipt, nil))
		}
	}

	return &providers.Receipt{Success: false, Error: lastErr.Error(), Provider: lastProvider}, lastErr
}
