package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) ListEntities(ctx context.Context, kind string, parentID *int64) ([]model.TravelEntity, error) {
	args := m.Called(ctx, kind, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TravelEntity), args.Error(1)
}

func (m *MockService) GetEntity(ctx context.Context, id int64) (*model.TravelEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TravelEntity), args.Error(1)
}

func (m *MockService) CreateEntity(ctx context.Context, req model.CreateEntityRequest) (*model.TravelEntity, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TravelEntity), args.Error(1)
}

func (m *MockService) UpdateEntity(ctx context.Context, id int64, req model.UpdateEntityRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockService) DeleteEntity(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) RecordVisit(ctx context.Context, id int64, visitedAt time.Time) error {
	args := m.Called(ctx, id, visitedAt)
	return args.Error(0)
}

func (m *MockService) ListPhotos(ctx context.Context, entityType string, entityID int64) (*model.PhotosResponse, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PhotosResponse), args.Error(1)
}

func (m *MockService) AddPhotos(ctx context.Context, entityType string, entityID, ownerID int64, photos []model.PhotoRef) error {
	args := m.Called(ctx, entityType, entityID, ownerID, photos)
	return args.Error(0)
}

func (m *MockService) RemovePhotos(ctx context.Context, entityType string, entityID int64, photos []model.PhotoRef) error {
	args := m.Called(ctx, entityType, entityID, photos)
	return args.Error(0)
}

func (m *MockService) ReconcilePhotos(ctx context.Context, entityType string, entityID, ownerID int64, desired []model.PhotoRef) error {
	args := m.Called(ctx, entityType, entityID, ownerID, desired)
	return args.Error(0)
}

func (m *MockService) SearchPhotos(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error) {
	args := m.Called(ctx, query, maxResults, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResponse), args.Error(1)
}

func (m *MockService) CreateCheckIn(ctx context.Context, userID int64, req model.CheckInRequest) (*model.CheckIn, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckIn), args.Error(1)
}

func (m *MockService) ListCheckIns(ctx context.Context, entityID int64) ([]model.CheckIn, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CheckIn), args.Error(1)
}

func TestHandler_ListPhotos(t *testing.T) {
	tests := []struct {
		name           string
		entityType     string
		id             string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name:       "successful request",
			entityType: "cities",
			id:         "7",
			mockSetup: func(ms *MockService) {
				ms.On("ListPhotos", mock.Anything, "cities", int64(7)).Return(&model.PhotosResponse{
					Photos: []model.PhotoAssociation{{ExternalID: "p1", URL: "https://photos.example/p1"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "unsupported entity type",
			entityType: "states",
			id:         "7",
			mockSetup: func(ms *MockService) {
				ms.On("ListPhotos", mock.Anything, "states", int64(7)).
					Return(nil, apperr.InvalidArgument("unsupported entity type %q", "states"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid id",
			entityType:     "cities",
			id:             "abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "storage failure",
			entityType: "cities",
			id:         "7",
			mockSetup: func(ms *MockService) {
				ms.On("ListPhotos", mock.Anything, "cities", int64(7)).
					Return(nil, apperr.Storage("list associations", errors.New("connection refused")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(ms)
			}
			handler := NewHandler(ms)

			req := httptest.NewRequest("GET", "/api/v1/"+tt.entityType+"/"+tt.id+"/photos", nil)
			req = mux.SetURLVars(req, map[string]string{"entityType": tt.entityType, "id": tt.id})
			rec := httptest.NewRecorder()

			handler.ListPhotos(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			ms.AssertExpectations(t)
		})
	}
}

func TestHandler_ReconcilePhotos(t *testing.T) {
	ms := new(MockService)
	ms.On("ReconcilePhotos", mock.Anything, "cities", int64(7), int64(42),
		[]model.PhotoRef{{ExternalID: "p1", URL: "https://photos.example/p1"}}).Return(nil)
	handler := NewHandler(ms)

	body := `{"photos":[{"external_id":"p1","url":"https://photos.example/p1"}]}`
	req := httptest.NewRequest("PUT", "/api/v1/cities/7/photos", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"entityType": "cities", "id": "7"})
	req = req.WithContext(context.WithValue(req.Context(), userIDKey, int64(42)))
	rec := httptest.NewRecorder()

	handler.ReconcilePhotos(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	ms.AssertExpectations(t)
}

func TestHandler_AddPhotos_BadBody(t *testing.T) {
	handler := NewHandler(new(MockService))

	req := httptest.NewRequest("POST", "/api/v1/cities/7/photos", strings.NewReader("{not json"))
	req = mux.SetURLVars(req, map[string]string{"entityType": "cities", "id": "7"})
	rec := httptest.NewRecorder()

	handler.AddPhotos(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SearchPhotos(t *testing.T) {
	t.Run("passes tag, max and cursor through", func(t *testing.T) {
		ms := new(MockService)
		ms.On("SearchPhotos", mock.Anything, "sunset", 5, "abc").Return(&model.SearchResponse{
			Photos:     []model.PhotoDescriptor{{ExternalID: "p1", URL: "https://photos.example/p1"}},
			NextCursor: "def",
		}, nil)
		handler := NewHandler(ms)

		req := httptest.NewRequest("GET", "/api/v1/photos/search?tag=sunset&max=5&cursor=abc", nil)
		rec := httptest.NewRecorder()

		handler.SearchPhotos(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "def", resp.NextCursor)
		assert.Len(t, resp.Photos, 1)
	})

	t.Run("missing query", func(t *testing.T) {
		handler := NewHandler(new(MockService))

		req := httptest.NewRequest("GET", "/api/v1/photos/search", nil)
		rec := httptest.NewRecorder()

		handler.SearchPhotos(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure maps to bad gateway", func(t *testing.T) {
		ms := new(MockService)
		ms.On("SearchPhotos", mock.Anything, "sunset", 0, "").
			Return(nil, apperr.UpstreamGateway("media provider returned 503", errors.New("maintenance")))
		handler := NewHandler(ms)

		req := httptest.NewRequest("GET", "/api/v1/photos/search?tag=sunset", nil)
		rec := httptest.NewRecorder()

		handler.SearchPhotos(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_GetEntity(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ms := new(MockService)
		ms.On("GetEntity", mock.Anything, int64(3)).Return(&model.TravelEntity{
			ID: 3, Kind: model.KindCity, Name: "Dublin",
		}, nil)
		handler := NewHandler(ms)

		req := httptest.NewRequest("GET", "/api/v1/entities/3", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "3"})
		rec := httptest.NewRecorder()

		handler.GetEntity(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		ms := new(MockService)
		ms.On("GetEntity", mock.Anything, int64(3)).Return(nil, nil)
		handler := NewHandler(ms)

		req := httptest.NewRequest("GET", "/api/v1/entities/3", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "3"})
		rec := httptest.NewRecorder()

		handler.GetEntity(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_RecordVisit(t *testing.T) {
	visitedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ms := new(MockService)
	ms.On("RecordVisit", mock.Anything, int64(3), visitedAt).Return(nil)
	handler := NewHandler(ms)

	req := httptest.NewRequest("PATCH", "/api/v1/entities/3/visit",
		strings.NewReader(`{"visited_at":"2025-06-01T12:00:00Z"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	handler.RecordVisit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	ms.AssertExpectations(t)
}
