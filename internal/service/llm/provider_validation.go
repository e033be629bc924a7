package llm

import (
	"strings"

	"promptlab/internal/domain"
	"promptlab/internal/domain/models/llm"
)

// ParseProviderKind converts a caller-supplied provider name. Empty input
// yields an empty kind (route by model); unknown names are client faults.
func ParseProviderKind(name string) (llm.ProviderKind, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	kind := llm.ProviderKind(strings.ToLower(name))
	if !kind.Valid() {
		return "", domain.NewValidationError("unknown provider %q", name)
	}
	return kind, nil
}
