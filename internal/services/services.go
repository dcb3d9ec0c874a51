package services

import (
	"context"

	"github.com/desertthunder/flickx/internal/models"
)

// Catalog is a source of movie metadata.
type Catalog interface {
	// ListByCategory returns one page of a category listing. Pages below 1 are treated as 1.
	ListByCategory(ctx context.Context, category models.Category, page int) (*models.MoviePage, error)

	// Search returns the first page of matches for query. A blank query yields an empty page without a request.
	Search(ctx context.Context, query string) (*models.MoviePage, error)

	// GetDetail returns the detail record for id with at most [models.MaxCast] cast members.
	GetDetail(ctx context.Context, id int) (*models.MovieDetail, error)

	// ImageURL resolves a poster or profile path, returning a placeholder for an empty path.
	ImageURL(path string) string
}
