package api

import (
	"context"
	"net/http"

	"github.com/pointzapp/bhakti-console/internal/record"
)

const storyPath = "/stories/"

// StoryService covers the story record endpoints.
type StoryService struct {
	c *Client
}

// List fetches one page of stories matching params.
func (s *StoryService) List(ctx context.Context, params record.ListParams) ([]record.Story, record.Pagination, error) {
	var items []record.Story
	page, err := s.c.getJSON(ctx, storyPath, params.Query(), &items)
	if err != nil {
		return nil, record.Pagination{}, err
	}
	return items, page, nil
}

// Get fetches a single story by id.
func (s *StoryService) Get(ctx context.Context, id string) (record.Story, error) {
	var st record.Story
	_, err := s.c.getJSON(ctx, storyPath+id, nil, &st)
	return st, err
}

// Create persists a new story from an already-reconciled payload.
func (s *StoryService) Create(ctx context.Context, p record.StoryPayload) (record.Story, error) {
	var st record.Story
	err := s.c.sendJSON(ctx, http.MethodPost, storyPath, p, &st)
	return st, err
}

// Update replaces the story's fields and media references.
func (s *StoryService) Update(ctx context.Context, id string, p record.StoryPayload) (record.Story, error) {
	var st record.Story
	err := s.c.sendJSON(ctx, http.MethodPut, storyPath+id, p, &st)
	return st, err
}

// Delete removes the story.
func (s *StoryService) Delete(ctx context.Context, id string) error {
	return s.c.sendJSON(ctx, http.MethodDelete, storyPath+id, nil, nil)
}
