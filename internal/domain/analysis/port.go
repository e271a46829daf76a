package analysis

import "context"

// Client is the port to the generative backend.
type Client interface {
	Generate(ctx context.Context, text string) (string, error)
	Model() string
}
