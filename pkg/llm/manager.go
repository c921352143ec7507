package llm

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Typed model resolution failures. Callers branch on these with errors.Is to
// surface actionable guidance.
var (
	ErrModelNotExist             = errors.New("model does not exist")
	ErrCredentialsNotInitialized = errors.New("model credentials are not initialized")
	ErrModelNotSupported         = errors.New("model is not permitted for this tenant")
	ErrProviderQuotaExceeded     = errors.New("model provider quota exceeded")
)

// ModelFeature flags optional capabilities of a resolved model.
type ModelFeature string

const (
	FeatureToolCall      ModelFeature = "tool_call"
	FeatureMultiToolCall ModelFeature = "multi_tool_call"
)

// ModelInstance is a resolved, invokable model: provider/name pair, its
// capability flags, and a ready client.
type ModelInstance struct {
	Provider string
	Model    string
	Features []ModelFeature
	Client   LLMProvider
}

// SupportsToolCall reports whether the model can drive tool-augmented
// planning.
func (m *ModelInstance) SupportsToolCall() bool {
	for _, f := range m.Features {
		if f == FeatureToolCall || f == FeatureMultiToolCall {
			return true
		}
	}
	return false
}

// ModelRef is an unresolved (provider, model) reference as it appears in
// request configuration.
type ModelRef struct {
	Provider string
	Name     string
}

// ModelManager resolves a (provider, model) reference for a tenant.
type ModelManager interface {
	GetModelInstance(ctx context.Context, tenantId uuid.UUID, provider, model string) (*ModelInstance, error)
}
