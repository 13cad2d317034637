package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/repository"
)

// MockBhajanRepository is an in-memory implementation of BhajanRepository
type MockBhajanRepository struct {
	Bhajans     map[int64]*models.Bhajan
	NextID      int64
	Err         error // returned by every operation when set
	UpdateCalls int
	Now         func() time.Time
}

// Verify interface compliance
var _ repository.BhajanRepository = (*MockBhajanRepository)(nil)

func NewMockBhajanRepository() *MockBhajanRepository {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &MockBhajanRepository{
		Bhajans: make(map[int64]*models.Bhajan),
		NextID:  1,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	}
}

func (m *MockBhajanRepository) active(id int64) *models.Bhajan {
	b, ok := m.Bhajans[id]
	if !ok || b.DeletedAt != nil {
		return nil
	}
	return b
}

func copyBhajan(b *models.Bhajan) *models.Bhajan {
	c := *b
	return &c
}

func (m *MockBhajanRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Bhajan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	search := strings.ToLower(filter.Search)
	out := make([]*models.Bhajan, 0)
	for _, b := range m.Bhajans {
		if b.DeletedAt != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Lyrics), search) {
			continue
		}
		if filter.Tag != "" && !containsTag(b.GetTags(), filter.Tag) {
			continue
		}
		out = append(out, copyBhajan(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (m *MockBhajanRepository) GetByID(ctx context.Context, id int64) (*models.Bhajan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if b := m.active(id); b != nil {
		return copyBhajan(b), nil
	}
	return nil, nil
}

func (m *MockBhajanRepository) Create(ctx context.Context, bhajan *models.Bhajan) error {
	if m.Err != nil {
		return m.Err
	}
	if bhajan.TagsJSON == "" {
		bhajan.TagsJSON = "[]"
	}
	now := m.Now()
	bhajan.ID = m.NextID
	bhajan.CreatedAt = now
	bhajan.UpdatedAt = now
	m.NextID++
	m.Bhajans[bhajan.ID] = copyBhajan(bhajan)
	return nil
}

func (m *MockBhajanRepository) Update(ctx context.Context, id int64, update *models.BhajanUpdate) (*models.Bhajan, error) {
	m.UpdateCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	b := m.active(id)
	if b == nil {
		return nil, nil
	}
	if update.Title != nil {
		b.Title = *update.Title
	}
	if update.Lyrics != nil {
		b.Lyrics = *update.Lyrics
	}
	if update.SetTags {
		b.SetTags(update.Tags)
	}
	if update.UploaderName != nil {
		b.UploaderName = *update.UploaderName
	}
	if update.SetYoutube {
		b.YoutubeURL = update.YoutubeURL
	}
	b.UpdatedAt = m.Now()
	return copyBhajan(b), nil
}

func (m *MockBhajanRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	b := m.active(id)
	if b == nil {
		return false, nil
	}
	now := m.Now()
	b.DeletedAt = &now
	return true, nil
}

func (m *MockBhajanRepository) DistinctTags(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, b := range m.Bhajans {
		for _, t := range b.GetTags() {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (m *MockBhajanRepository) CountActive(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, b := range m.Bhajans {
		if b.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *MockBhajanRepository) ListAll(ctx context.Context) ([]*models.Bhajan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Bhajan, 0)
	for _, b := range m.Bhajans {
		out = append(out, copyBhajan(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockBhajanRepository) UpdateLyrics(ctx context.Context, id int64, lyrics string) error {
	if m.Err != nil {
		return m.Err
	}
	b, ok := m.Bhajans[id]
	if !ok {
		return fmt.Errorf("bhajan %d not found", id)
	}
	b.Lyrics = lyrics
	b.UpdatedAt = m.Now()
	return nil
}
