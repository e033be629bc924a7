package llm

import (
	"context"

	"promptlab/internal/domain/models/llm"
)

// ResponseRepository defines the interface for response data access
type ResponseRepository interface {
	// CreateResponse inserts a response; ID is generated when empty
	CreateResponse(ctx context.Context, resp *llm.Response) error
}
