package strategies

import (
	"context"
	"sync"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// Priority walks providers in order, skipping any that reached its send limit.
// Providers without a limit are unbounded.
type Priority struct {
	mu     sync.Mutex
	usage  map[string]int
	limits map[string]int
}

func NewPriority(limits map[string]int) *Priority {
	copied := make(map[string]int, len(limits))
	for k, v := range limits {
		copied[k] = v
	}
	return &Priority{usage: make(map[string]int), limits: copied}
}

// reserve claims one send against the provider's limit.
func (s *Priority) reserve(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit, ok := s.limits[name]; ok && s.usage[name] >= limit {
		return false
	}
	s.usage[name]++
	return true
}

func (s *Priority) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usage[name] <= 1 {
		delete(s.usage, name)
		return
	}
	s.usage[name]--
}

func (s *Priority) Deliver(ctx context.Context, msg *providers.Message, list []providers.EmailProvider) (*providers.Receipt, error) {
	if len(list) == 0 {
		return noProviders()
	}

	for _, p := range list {
		if p == nil || !s.reserve(p.Name()) {
			continue
		}

		receipt, _ := p.Send(ctx, msg)
		if succeeded(receipt) {
			return receipt, nil
		}
		s.release(p.Name())
	}

	return &providers.Receipt{
		Success:  false,
		Error:    registry.ErrAllProvidersExhausted.Error(),
		Provider: registry.ProviderLabelPriority,
	}, registry.ErrAllProvidersExhausted
}

func (s *Priority) Usage() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.usage))
	for k, v := range s.usage {
		out[k] = v
	}
	return out
}

func (s *Priority) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = make(map[string]int)
}
