package mocks

import (
	"context"
	"time"

	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/service"
)

// MockBhajanService is a mock implementation of BhajanService
type MockBhajanService struct {
	Bhajans    map[int64]*models.BhajanResponse
	TagList    []string
	Err        error
	ListFunc   func(ctx context.Context, filter models.ListFilter) ([]models.BhajanResponse, error)
	CreateFunc func(ctx context.Context, in *models.CreateBhajanInput) (*models.BhajanResponse, error)
	UpdateFunc func(ctx context.Context, id int64, in *models.UpdateBhajanInput) (*models.BhajanResponse, error)
	Filters    []models.ListFilter
	Created    []*models.CreateBhajanInput
	Updates    []*models.UpdateBhajanInput
	Deleted    []int64
}

// Verify interface compliance
var _ service.BhajanService = (*MockBhajanService)(nil)

func NewMockBhajanService() *MockBhajanService {
	return &MockBhajanService{
		Bhajans: make(map[int64]*models.BhajanResponse),
		TagList: []string{},
	}
}

func (m *MockBhajanService) List(ctx context.Context, filter models.ListFilter) ([]models.BhajanResponse, error) {
	m.Filters = append(m.Filters, filter)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.BhajanResponse, 0, len(m.Bhajans))
	for _, b := range m.Bhajans {
		out = append(out, *b)
	}
	return out, nil
}

func (m *MockBhajanService) Get(ctx context.Context, id int64) (*models.BhajanResponse, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	b, ok := m.Bhajans[id]
	if !ok {
		return nil, service.NotFound(service.MsgBhajanNotFound)
	}
	return b, nil
}

func (m *MockBhajanService) Create(ctx context.Context, in *models.CreateBhajanInput) (*models.BhajanResponse, error) {
	m.Created = append(m.Created, in)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now().UTC()
	resp := &models.BhajanResponse{
		ID:           int64(len(m.Bhajans) + 1),
		Title:        in.Title,
		Lyrics:       in.Lyrics,
		Tags:         models.ParseTags(in.Tags),
		UploaderName: models.DefaultUploaderName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.Bhajans[resp.ID] = resp
	return resp, nil
}

func (m *MockBhajanService) Update(ctx context.Context, id int64, in *models.UpdateBhajanInput) (*models.BhajanResponse, error) {
	m.Updates = append(m.Updates, in)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	b, ok := m.Bhajans[id]
	if !ok {
		return nil, service.NotFound(service.MsgBhajanNotFound)
	}
	return b, nil
}

func (m *MockBhajanService) Delete(ctx context.Context, id int64) (*models.DeleteResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.Bhajans[id]; !ok {
		return nil, service.NotFound(service.MsgBhajanNotFound)
	}
	delete(m.Bhajans, id)
	m.Deleted = append(m.Deleted, id)
	return &models.DeleteResult{Status: "deleted", ID: id}, nil
}

func (m *MockBhajanService) Tags(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TagList, nil
}

func (m *MockBhajanService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.Stats{TotalBhajans: len(m.Bhajans), Status: "online", Timestamp: time.Now().UTC()}, nil
}

func (m *MockBhajanService) FixLyrics(ctx context.Context) (*service.FixLyricsResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &service.FixLyricsResult{Total: len(m.Bhajans)}, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	Err error
}

var _ service.HealthChecker = (*MockHealthChecker)(nil)

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
