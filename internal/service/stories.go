package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_story_catalog.go -package=mocks kahani-ai/internal/service StoryCatalog
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_story_service.go -package=mocks -mock_names=StoryService=MockStoryService kahani-ai/internal/service StoryService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/story"
)

// StoryCatalog is the read side of the story store.
type StoryCatalog interface {
	Get(ctx context.Context, id string) (*story.Document, error)
	List(ctx context.Context) ([]story.Document, error)
}

// StoryFilter narrows a story listing. Empty fields match everything.
type StoryFilter struct {
	AgeGroup string
	Type     string
}

// StoryService defines the interface for browsing the story catalogue.
type StoryService interface {
	List(ctx context.Context, filter StoryFilter) ([]story.Listing, error)
	Get(ctx context.Context, id string) (story.Document, error)
}

type storyService struct {
	catalog StoryCatalog
}

// NewStoryService creates a new StoryService instance.
func NewStoryService(catalog StoryCatalog) StoryService {
	return &storyService{catalog: catalog}
}

// List returns the catalogue entries matching filter, ordered by id.
func (s *storyService) List(ctx context.Context, filter StoryFilter) ([]story.Listing, error) {
	docs, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	ageGroup := strings.TrimSpace(filter.AgeGroup)
	storyType := strings.ToLower(strings.TrimSpace(filter.Type))

	listings := make([]story.Listing, 0, len(docs))
	for _, doc := range docs {
		if ageGroup != "" && doc.AgeGroup != ageGroup {
			continue
		}
		if storyType != "" && doc.Type != storyType {
			continue
		}
		listings = append(listings, doc.Listing())
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "listed stories",
		"age_group", ageGroup, "type", storyType, "count", len(listings))
	return listings, nil
}

// Get returns the story with the given id. Loose ids are accepted.
func (s *storyService) Get(ctx context.Context, id string) (story.Document, error) {
	if strings.TrimSpace(id) == "" {
		return story.Document{}, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	doc, err := s.catalog.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return story.Document{}, &StoryNotFoundError{ID: id}
	}
	if err != nil {
		return story.Document{}, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return *doc, nil
}
