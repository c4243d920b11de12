package control

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

// MockRemoteStore is a mock implementation of RemoteStore
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) FetchAssets(ctx context.Context) ([]models.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockRemoteStore) FetchStats(ctx context.Context) (*sheet.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sheet.Stats), args.Error(1)
}

func (m *MockRemoteStore) SubmitChecklist(ctx context.Context, w sheet.ChecklistWrite) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockRemoteStore) Complain(ctx context.Context, c sheet.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRemoteStore) CloseComplaint(ctx context.Context, c sheet.Closure) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockTechnicianCollection is a mock implementation of db.TechnicianCollection
type MockTechnicianCollection struct {
	mock.Mock
}

func (m *MockTechnicianCollection) FindTechnicians(ctx context.Context) ([]models.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Technician), args.Error(1)
}

func (m *MockTechnicianCollection) SaveTechnician(ctx context.Context, tech models.Technician) error {
	args := m.Called(ctx, tech)
	return args.Error(0)
}

// MockInventoryCollection is a mock implementation of db.InventoryCollection
type MockInventoryCollection struct {
	mock.Mock
}

func (m *MockInventoryCollection) FindItems(ctx context.Context) ([]models.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockInventoryCollection) SaveItem(ctx context.Context, item models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockChecklistJournal is a mock implementation of db.ChecklistJournal
type MockChecklistJournal struct {
	mock.Mock
}

func (m *MockChecklistJournal) RecordPending(ctx context.Context, check models.PendingCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *MockChecklistJournal) FindPending(ctx context.Context) ([]models.PendingCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingCheck), args.Error(1)
}

func (m *MockChecklistJournal) DeletePending(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic, eventType string, payload any) error {
	args := m.Called(topic, eventType, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

type stubSuggester struct {
	suggestion models.Suggestion
	present    []string
}

func (s *stubSuggester) Suggest(_ context.Context, _ string, present []string) models.Suggestion {
	s.present = present
	return s.suggestion
}
