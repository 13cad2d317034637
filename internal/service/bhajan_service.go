package service

import (
	"context"
	"time"

	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/repository"
	"github.com/bhajan-portal/internal/validation"
	"github.com/rs/zerolog"
)

// FixLyricsResult reports a lyrics re-normalization pass
type FixLyricsResult struct {
	Total int `json:"total"`
	Fixed int `json:"fixed"`
}

type bhajanService struct {
	repo      repository.BhajanRepository
	validator *validation.Validator
	log       zerolog.Logger
	now       func() time.Time
}

func newBhajanService(repo repository.BhajanRepository, log zerolog.Logger) *bhajanService {
	return &bhajanService{
		repo:      repo,
		validator: validation.NewValidator(),
		log:       log.With().Str("component", "bhajan_service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewBhajanService creates a BhajanService backed by the given repository
func NewBhajanService(repo repository.BhajanRepository, log zerolog.Logger) BhajanService {
	return newBhajanService(repo, log)
}

func toResponses(bhajans []*models.Bhajan) []models.BhajanResponse {
	out := make([]models.BhajanResponse, 0, len(bhajans))
	for _, b := range bhajans {
		out = append(out, b.ToResponse())
	}
	return out
}

func (s *bhajanService) List(ctx context.Context, filter models.ListFilter) ([]models.BhajanResponse, error) {
	bhajans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, Internal("list bhajans", err)
	}

	s.log.Debug().
		Str("search", filter.Search).
		Str("tag", filter.Tag).
		Int("count", len(bhajans)).
		Msg("Listed bhajans")

	return toResponses(bhajans), nil
}

func (s *bhajanService) Get(ctx context.Context, id int64) (*models.BhajanResponse, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Internal("get bhajan", err)
	}
	if b == nil {
		return nil, NotFound(MsgBhajanNotFound)
	}

	resp := b.ToResponse()
	return &resp, nil
}

func (s *bhajanService) Create(ctx context.Context, in *models.CreateBhajanInput) (*models.BhajanResponse, error) {
	b, errs := s.validator.ValidateCreate(in)
	if len(errs) > 0 {
		s.log.Warn().
			Str("field", errs[0].Field).
			Int("title_len", len(in.Title)).
			Int("lyrics_len", len(in.Lyrics)).
			Msg("Rejected bhajan")
		return nil, Validation(errs[0].Message)
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, Internal("create bhajan", err)
	}

	s.log.Info().
		Int64("id", b.ID).
		Str("uploader", b.UploaderName).
		Int("tags", len(b.GetTags())).
		Msg("Bhajan created")

	resp := b.ToResponse()
	return &resp, nil
}

func (s *bhajanService) Update(ctx context.Context, id int64, in *models.UpdateBhajanInput) (*models.BhajanResponse, error) {
	update, skipped := s.validator.ValidateUpdate(in)
	for _, e := range skipped {
		s.log.Debug().Int64("id", id).Str("field", e.Field).Msg("Ignoring invalid update field")
	}

	b, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, Internal("update bhajan", err)
	}
	if b == nil {
		return nil, NotFound(MsgBhajanNotFound)
	}

	s.log.Info().Int64("id", id).Msg("Bhajan updated")

	resp := b.ToResponse()
	return &resp, nil
}

func (s *bhajanService) Delete(ctx context.Context, id int64) (*models.DeleteResult, error) {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return nil, Internal("delete bhajan", err)
	}
	if !ok {
		return nil, NotFound(MsgBhajanNotFound)
	}

	s.log.Info().Int64("id", id).Msg("Bhajan soft-deleted")
	return &models.DeleteResult{Status: "deleted", ID: id}, nil
}

func (s *bhajanService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.DistinctTags(ctx)
	if err != nil {
		return nil, Internal("list tags", err)
	}
	return tags, nil
}

func (s *bhajanService) Stats(ctx context.Context) (*models.Stats, error) {
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, Internal("count bhajans", err)
	}
	return &models.Stats{
		TotalBhajans: count,
		Status:       "online",
		Timestamp:    s.now(),
	}, nil
}

// FixLyrics re-normalizes the stored lyrics of every bhajan, soft-deleted ones included
func (s *bhajanService) FixLyrics(ctx context.Context) (*FixLyricsResult, error) {
	bhajans, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, Internal("list bhajans", err)
	}

	result := &FixLyricsResult{Total: len(bhajans)}
	for _, b := range bhajans {
		cleaned := models.NormalizeLyrics(b.Lyrics)
		if cleaned == b.Lyrics {
			continue
		}
		if err := s.repo.UpdateLyrics(ctx, b.ID, cleaned); err != nil {
			return result, Internal("fix lyrics", err)
		}
		result.Fixed++
	}

	s.log.Info().
		Int("total", result.Total).
		Int("fixed", result.Fixed).
		Msg("Lyrics normalization complete")

	return result, nil
}
