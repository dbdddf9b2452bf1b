package interfaces

import (
	"context"

	"textrpg/server/internal/models"
)

// StorySource defines where the story graph comes from
type StorySource interface {
	// Load fetches and compiles the story at source (file path or http(s) URL)
	Load(ctx context.Context, source string) (models.Graph, error)
}
