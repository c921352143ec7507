package retrieval

import (
	"context"
	"errors"
	"strings"

	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/fusion"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/policy"
	"knowledge-retrieval-be/pkg/retrieval/ratelimit"
	"knowledge-retrieval-be/pkg/retrieval/strategy"

	"github.com/google/uuid"
)

// Request is one knowledge retrieval invocation.
type Request struct {
	TenantId      uuid.UUID
	Query         string
	CollectionIds []uuid.UUID

	Strategy strategy.Config
	Filter   metadata.FilterConfig

	// Variables resolves template references inside manual filter values.
	// Nil means values are taken literally.
	Variables metadata.VariablePool
}

// Result is the ranked output of one retrieval invocation. Sources is empty,
// never nil, when nothing matched.
type Result struct {
	Sources []*fusion.RetrievedSource
}

// Orchestrator runs the full retrieval pipeline: admission, collection
// availability, metadata filter resolution, strategy execution, and fusion.
type Orchestrator struct {
	uow      unitofwork.UnitOfWork
	policies *policy.Service
	limiter  *ratelimit.Limiter
	resolver *metadata.Resolver
	executor *strategy.Executor
	ranker   *fusion.Ranker
	logger   logger.ILogger
}

func NewOrchestrator(
	uow unitofwork.UnitOfWork,
	policies *policy.Service,
	limiter *ratelimit.Limiter,
	resolver *metadata.Resolver,
	executor *strategy.Executor,
	ranker *fusion.Ranker,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		uow:      uow,
		policies: policies,
		limiter:  limiter,
		resolver: resolver,
		executor: executor,
		ranker:   ranker,
		logger:   log,
	}
}

// Retrieve executes one retrieval request end to end. All failures come back
// as *Error with a Kind the caller can act on.
func (o *Orchestrator) Retrieve(ctx context.Context, req *Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, NewError(ErrKindInvalidInput, "query is required")
	}

	pol, err := o.policies.PolicyFor(ctx, req.TenantId)
	if err != nil {
		return nil, WrapError(ErrKindRetrievalFailed, "rate limit policy lookup failed", err)
	}
	if err := o.limiter.Admit(ctx, req.TenantId, pol); err != nil {
		if errors.Is(err, ratelimit.ErrLimitExceeded) {
			return nil, WrapError(ErrKindRateLimitExceeded,
				"sorry, you have reached the knowledge base request rate limit of your subscription", err)
		}
		return nil, WrapError(ErrKindRetrievalFailed, "rate limit check failed", err)
	}

	collections, err := o.uow.CollectionRepository().FindAvailable(ctx, req.TenantId, req.CollectionIds)
	if err != nil {
		return nil, WrapError(ErrKindRetrievalFailed, "collection availability check failed", err)
	}
	if len(collections) == 0 {
		return &Result{Sources: []*fusion.RetrievedSource{}}, nil
	}

	filter, err := o.resolver.Resolve(ctx, o.uow, req.TenantId, collections, query, req.Filter, req.Variables)
	if err != nil {
		return nil, classify(err, "metadata filter resolution failed")
	}

	items, err := o.executor.Execute(ctx, req.TenantId, collections, query, req.Strategy, filter)
	if err != nil {
		return nil, classify(err, "retrieval execution failed")
	}

	sources, err := o.ranker.Rank(ctx, o.uow, items)
	if err != nil {
		return nil, WrapError(ErrKindRetrievalFailed, "result fusion failed", err)
	}
	if sources == nil {
		sources = []*fusion.RetrievedSource{}
	}

	o.logger.Info("retrieval", "request completed", map[string]interface{}{
		"tenant_id":   req.TenantId.String(),
		"collections": len(collections),
		"results":     len(sources),
	})
	return &Result{Sources: sources}, nil
}

// classify maps collaborator sentinel errors onto terminal error kinds.
// Anything unrecognized is a retrieval failure.
func classify(err error, message string) *Error {
	kind := ErrKindRetrievalFailed
	switch {
	case errors.Is(err, metadata.ErrInvalidFilteringMode),
		errors.Is(err, metadata.ErrMissingModelConfig),
		errors.Is(err, metadata.ErrInvalidTemplateValue),
		errors.Is(err, strategy.ErrInvalidRetrievalMode),
		errors.Is(err, strategy.ErrMissingSingleConfig),
		errors.Is(err, strategy.ErrMissingMultipleConfig),
		errors.Is(err, strategy.ErrMissingWeights):
		kind = ErrKindInvalidInput
	case errors.Is(err, llm.ErrModelNotExist):
		kind = ErrKindModelNotExist
	case errors.Is(err, llm.ErrCredentialsNotInitialized):
		kind = ErrKindModelCredentialsNotInitialized
	case errors.Is(err, llm.ErrModelNotSupported):
		kind = ErrKindModelNotSupported
	case errors.Is(err, llm.ErrProviderQuotaExceeded):
		kind = ErrKindModelQuotaExceeded
	}
	return WrapError(kind, message, err)
}
