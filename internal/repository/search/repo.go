package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/domain"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
// Both the engine store and the query cache satisfy it.
type store interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search renders the request, runs it and decodes hits and aggregations.
func (r *Repo) Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error) {
	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	raw, err := r.store.Search(ctx, index, body)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrIndexNotFound):
			return nil, fmt.Errorf("search %s: %w", index, domain.ErrIndexNotFound)
		case errors.Is(err, db.ErrBadRequest):
			return nil, fmt.Errorf("search %s: %w: %w", index, domain.ErrInvalidQuery, err)
		default:
			return nil, fmt.Errorf("search %s: %w", index, err)
		}
	}

	hits, err := result.Decode(raw, req.Aggregations)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	return hits, nil
}
