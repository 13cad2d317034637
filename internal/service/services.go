package service

import (
	"context"

	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/repository"
	"github.com/rs/zerolog"
)

// BhajanService defines the interface for bhajan operations.
// Returned errors are *Error values classified by ErrorKind.
type BhajanService interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.BhajanResponse, error)
	Get(ctx context.Context, id int64) (*models.BhajanResponse, error)
	Create(ctx context.Context, in *models.CreateBhajanInput) (*models.BhajanResponse, error)
	Update(ctx context.Context, id int64, in *models.UpdateBhajanInput) (*models.BhajanResponse, error)
	Delete(ctx context.Context, id int64) (*models.DeleteResult, error)
	Tags(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.Stats, error)
	FixLyrics(ctx context.Context) (*FixLyricsResult, error)
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services holds all service interfaces
type Services struct {
	Bhajan BhajanService
	Health HealthChecker
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, health HealthChecker, log zerolog.Logger) *Services {
	return &Services{
		Bhajan: newBhajanService(repos.Bhajan, log),
		Health: health,
	}
}
