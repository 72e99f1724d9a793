package service

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"taskventure.app/backend/internal/model"
)

// SearchService mirrors the story catalog into a Meilisearch index. The
// index is a convenience; every method is a no-op when no client is
// configured and callers fall back to SQL listing.
type SearchService interface {
	IndexStory(story *model.Story) error
	DeleteStory(id string) error
	SearchStories(query string, limit int) ([]uuid.UUID, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *searchService) initIndex() {
	filterable := []any{"story_type", "is_active"}
	if _, err := s.client.Index("stories").UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("failed to update stories filterable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index("stories").UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to update stories sortable attributes: %v", err)
	}
}

type meiliStoryDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StoryType   string `json:"story_type"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *searchService) IndexStory(story *model.Story) error {
	if s.client == nil {
		return nil
	}

	doc := meiliStoryDoc{
		ID:          story.ID.String(),
		Title:       story.Title,
		Description: story.Description,
		StoryType:   string(story.StoryType),
		IsActive:    story.IsActive,
		CreatedAt:   story.CreatedAt.Unix(),
	}

	_, err := s.client.Index("stories").AddDocuments([]meiliStoryDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeleteStory(id string) error {
	if s.client == nil {
		return nil
	}

	_, err := s.client.Index("stories").DeleteDocument(id)
	return err
}

func (s *searchService) SearchStories(query string, limit int) ([]uuid.UUID, error) {
	if s.client == nil {
		return nil, fmt.Errorf("search is not configured")
	}

	resp, err := s.client.Index("stories").Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return storyIDsFromHits(resp.Hits), nil
}

// storyIDsFromHits decodes search hits back into story ids, skipping anything
// malformed rather than failing the whole search.
func storyIDsFromHits(hits meilisearch.Hits) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		var doc meiliStoryDoc
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

func strPtr(s string) *string {
	return &s
}
