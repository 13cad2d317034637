package repository

import (
	"context"
	"database/sql"

	"github.com/bhajan-portal/internal/models"
)

// BhajanRepository defines the interface for bhajan data operations.
// Lookups return nil (and no error) when no active row matches.
type BhajanRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Bhajan, error)
	GetByID(ctx context.Context, id int64) (*models.Bhajan, error)
	Create(ctx context.Context, bhajan *models.Bhajan) error
	Update(ctx context.Context, id int64, update *models.BhajanUpdate) (*models.Bhajan, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	DistinctTags(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int, error)
	ListAll(ctx context.Context) ([]*models.Bhajan, error)
	UpdateLyrics(ctx context.Context, id int64, lyrics string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Bhajan BhajanRepository
}

// New creates all repositories with the given database connection
func New(db *sql.DB) *Repositories {
	return &Repositories{
		Bhajan: NewBhajanRepo(db),
	}
}
