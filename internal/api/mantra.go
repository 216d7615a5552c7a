package api

import (
	"context"
	"net/http"

	"github.com/pointzapp/bhakti-console/internal/record"
)

const mantraPath = "/mantras/"

// MantraService covers the mantra record endpoints.
type MantraService struct {
	c *Client
}

// List fetches one page of mantras matching params.
func (s *MantraService) List(ctx context.Context, params record.ListParams) ([]record.Mantra, record.Pagination, error) {
	var items []record.Mantra
	page, err := s.c.getJSON(ctx, mantraPath, params.Query(), &items)
	if err != nil {
		return nil, record.Pagination{}, err
	}
	return items, page, nil
}

// Get fetches a single mantra by id.
func (s *MantraService) Get(ctx context.Context, id string) (record.Mantra, error) {
	var m record.Mantra
	_, err := s.c.getJSON(ctx, mantraPath+id, nil, &m)
	return m, err
}

// Create persists a new mantra from an already-reconciled payload.
func (s *MantraService) Create(ctx context.Context, p record.MantraPayload) (record.Mantra, error) {
	var m record.Mantra
	err := s.c.sendJSON(ctx, http.MethodPost, mantraPath, p, &m)
	return m, err
}

// Update replaces the mantra's fields and media references.
func (s *MantraService) Update(ctx context.Context, id string, p record.MantraPayload) (record.Mantra, error) {
	var m record.Mantra
	err := s.c.sendJSON(ctx, http.MethodPut, mantraPath+id, p, &m)
	return m, err
}

// Delete removes the mantra.
func (s *MantraService) Delete(ctx context.Context, id string) error {
	return s.c.sendJSON(ctx, http.MethodDelete, mantraPath+id, nil, nil)
}
