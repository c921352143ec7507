package policy

import (
	"context"
	"fmt"
	"time"

	"knowledge-retrieval-be/pkg/retrieval/ratelimit"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Source resolves the raw rate limit policy for a tenant, typically from the
// billing system or a plan table.
type Source interface {
	PolicyFor(ctx context.Context, tenantId uuid.UUID) (ratelimit.Policy, error)
}

// Service caches per-tenant policies in front of a Source. Plans change
// rarely; a short TTL keeps stale limits bounded without a lookup per request.
type Service struct {
	source Source
	cache  *gocache.Cache
}

func NewService(source Source, ttl time.Duration) *Service {
	return &Service{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) PolicyFor(ctx context.Context, tenantId uuid.UUID) (ratelimit.Policy, error) {
	key := tenantId.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(ratelimit.Policy), nil
	}

	policy, err := s.source.PolicyFor(ctx, tenantId)
	if err != nil {
		return ratelimit.Policy{}, fmt.Errorf("resolve rate limit policy: %w", err)
	}
	s.cache.Set(key, policy, gocache.DefaultExpiration)
	return policy, nil
}

// StaticSource serves one fixed policy for every tenant. Used when limits are
// configured globally instead of per plan.
type StaticSource struct {
	Policy ratelimit.Policy
}

func (s StaticSource) PolicyFor(_ context.Context, _ uuid.UUID) (ratelimit.Policy, error) {
	return s.Policy, nil
}
