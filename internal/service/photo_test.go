package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEntityRepository implements repository.EntityRepository
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) ListEntities(ctx context.Context, kind model.EntityKind, parentID *int64) ([]model.TravelEntity, error) {
	args := m.Called(ctx, kind, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TravelEntity), args.Error(1)
}

func (m *MockEntityRepository) GetEntityByID(ctx context.Context, id int64) (*model.TravelEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TravelEntity), args.Error(1)
}

func (m *MockEntityRepository) CreateEntity(ctx context.Context, entity *model.TravelEntity) (int64, error) {
	args := m.Called(ctx, entity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntityRepository) UpdateEntity(ctx context.Context, id int64, name string, lat, lon float64) error {
	args := m.Called(ctx, id, name, lat, lon)
	return args.Error(0)
}

func (m *MockEntityRepository) DeleteEntity(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntityRepository) SetDirectVisit(ctx context.Context, id int64, visitedAt time.Time) error {
	args := m.Called(ctx, id, visitedAt)
	return args.Error(0)
}

func (m *MockEntityRepository) RecomputeLastVisited(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAssociationRepository implements repository.AssociationRepository
type MockAssociationRepository struct {
	mock.Mock
}

func (m *MockAssociationRepository) ListAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64) ([]model.PhotoAssociation, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PhotoAssociation), args.Error(1)
}

func (m *MockAssociationRepository) AddAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID, ownerID int64, photos []model.PhotoRef) error {
	args := m.Called(ctx, entityType, entityID, ownerID, photos)
	return args.Error(0)
}

func (m *MockAssociationRepository) RemoveAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64, photos []model.PhotoRef) error {
	args := m.Called(ctx, entityType, entityID, photos)
	return args.Error(0)
}

// MockCheckInRepository implements repository.CheckInRepository
type MockCheckInRepository struct {
	mock.Mock
}

func (m *MockCheckInRepository) CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) (int64, error) {
	args := m.Called(ctx, checkIn)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCheckInRepository) ListCheckInsByEntity(ctx context.Context, entityID int64) ([]model.CheckIn, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CheckIn), args.Error(1)
}

// MockSearcher implements media.Searcher
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error) {
	args := m.Called(ctx, query, maxResults, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResponse), args.Error(1)
}

func newTestService() (*Service, *MockEntityRepository, *MockAssociationRepository, *MockCheckInRepository, *MockSearcher) {
	entityRepo := new(MockEntityRepository)
	associationRepo := new(MockAssociationRepository)
	checkInRepo := new(MockCheckInRepository)
	searcher := new(MockSearcher)
	svc := NewService(entityRepo, associationRepo, checkInRepo, searcher)
	return svc, entityRepo, associationRepo, checkInRepo, searcher
}

func associations(ids ...string) []model.PhotoAssociation {
	out := make([]model.PhotoAssociation, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.PhotoAssociation{
			ExternalID: id,
			URL:        "https://photos.example/" + id,
			EntityID:   7,
			OwnerID:    1,
		})
	}
	return out
}

func refs(ids ...string) []model.PhotoRef {
	out := make([]model.PhotoRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.PhotoRef{
			ExternalID: id,
			URL:        "https://photos.example/" + id,
		})
	}
	return out
}

func refIDs(photos []model.PhotoRef) map[string]bool {
	set := make(map[string]bool, len(photos))
	for _, p := range photos {
		set[p.ExternalID] = true
	}
	return set
}

func TestService_ReconcilePhotos(t *testing.T) {
	tests := []struct {
		name           string
		current        []model.PhotoAssociation
		desired        []model.PhotoRef
		expectedAdd    map[string]bool
		expectedRemove map[string]bool
	}{
		{
			name:           "adds and removes the delta",
			current:        associations("A", "B"),
			desired:        refs("B", "C"),
			expectedAdd:    map[string]bool{"C": true},
			expectedRemove: map[string]bool{"A": true},
		},
		{
			name:    "both empty performs no operations",
			current: nil,
			desired: nil,
		},
		{
			name:           "empty desired detaches everything",
			current:        associations("A", "B", "C"),
			desired:        nil,
			expectedRemove: map[string]bool{"A": true, "B": true, "C": true},
		},
		{
			name:        "identical sets are untouched",
			current:     associations("A", "B"),
			desired:     refs("A", "B"),
			expectedAdd: nil,
		},
		{
			name:        "all new photos are added",
			current:     nil,
			desired:     refs("X", "Y"),
			expectedAdd: map[string]bool{"X": true, "Y": true},
		},
		{
			name:        "duplicates in desired are collapsed",
			current:     nil,
			desired:     append(refs("X"), refs("X")...),
			expectedAdd: map[string]bool{"X": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, associationRepo, _, _ := newTestService()

			associationRepo.On("ListAssociations", mock.Anything, model.PhotoEntityCity, int64(7)).
				Return(tt.current, nil)
			if len(tt.expectedAdd) > 0 {
				associationRepo.On("AddAssociations", mock.Anything, model.PhotoEntityCity, int64(7), int64(1),
					mock.MatchedBy(func(photos []model.PhotoRef) bool {
						return assert.ObjectsAreEqual(tt.expectedAdd, refIDs(photos))
					})).Return(nil)
			}
			if len(tt.expectedRemove) > 0 {
				associationRepo.On("RemoveAssociations", mock.Anything, model.PhotoEntityCity, int64(7),
					mock.MatchedBy(func(photos []model.PhotoRef) bool {
						return assert.ObjectsAreEqual(tt.expectedRemove, refIDs(photos))
					})).Return(nil)
			}

			err := svc.ReconcilePhotos(context.Background(), "cities", 7, 1, tt.desired)
			require.NoError(t, err)

			associationRepo.AssertExpectations(t)
			if len(tt.expectedAdd) == 0 {
				associationRepo.AssertNotCalled(t, "AddAssociations",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			if len(tt.expectedRemove) == 0 {
				associationRepo.AssertNotCalled(t, "RemoveAssociations",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_ReconcilePhotos_OrderIndependent(t *testing.T) {
	for _, desired := range [][]model.PhotoRef{refs("B", "C", "D"), refs("D", "B", "C"), refs("C", "D", "B")} {
		svc, _, associationRepo, _, _ := newTestService()

		associationRepo.On("ListAssociations", mock.Anything, model.PhotoEntityAttraction, int64(3)).
			Return(associations("A", "B"), nil)
		associationRepo.On("AddAssociations", mock.Anything, model.PhotoEntityAttraction, int64(3), int64(1),
			mock.MatchedBy(func(photos []model.PhotoRef) bool {
				return assert.ObjectsAreEqual(map[string]bool{"C": true, "D": true}, refIDs(photos))
			})).Return(nil)
		associationRepo.On("RemoveAssociations", mock.Anything, model.PhotoEntityAttraction, int64(3),
			mock.MatchedBy(func(photos []model.PhotoRef) bool {
				return assert.ObjectsAreEqual(map[string]bool{"A": true}, refIDs(photos))
			})).Return(nil)

		err := svc.ReconcilePhotos(context.Background(), "attractions", 3, 1, desired)
		require.NoError(t, err)
		associationRepo.AssertExpectations(t)
	}
}

// A remove-phase failure must leave the stored set a superset of
// desired: the adds have to be applied before the removes are tried.
func TestService_ReconcilePhotos_AddsBeforeRemoves(t *testing.T) {
	svc, _, associationRepo, _, _ := newTestService()

	var addApplied bool
	associationRepo.On("ListAssociations", mock.Anything, model.PhotoEntityCity, int64(7)).
		Return(associations("A", "B"), nil)
	associationRepo.On("AddAssociations", mock.Anything, model.PhotoEntityCity, int64(7), int64(1), mock.Anything).
		Run(func(args mock.Arguments) { addApplied = true }).Return(nil)
	associationRepo.On("RemoveAssociations", mock.Anything, model.PhotoEntityCity, int64(7), mock.Anything).
		Run(func(args mock.Arguments) {
			assert.True(t, addApplied, "remove phase ran before adds were applied")
		}).Return(errors.New("connection reset"))

	err := svc.ReconcilePhotos(context.Background(), "cities", 7, 1, refs("B", "C"))
	require.Error(t, err)
	assert.True(t, addApplied)
	associationRepo.AssertExpectations(t)
}

func TestService_ReconcilePhotos_Validation(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		entityID   int64
		ownerID    int64
		desired    []model.PhotoRef
	}{
		{name: "unsupported entity type", entityType: "state", entityID: 7, ownerID: 1},
		{name: "missing entity id", entityType: "cities", entityID: 0, ownerID: 1},
		{name: "missing owner id", entityType: "cities", entityID: 7, ownerID: 0},
		{
			name:       "photo without external id",
			entityType: "cities", entityID: 7, ownerID: 1,
			desired: []model.PhotoRef{{URL: "https://photos.example/x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, associationRepo, _, _ := newTestService()

			err := svc.ReconcilePhotos(context.Background(), tt.entityType, tt.entityID, tt.ownerID, tt.desired)
			require.Error(t, err)
			assert.True(t, apperr.IsInvalidArgument(err))

			// Rejected before any storage access
			associationRepo.AssertNotCalled(t, "ListAssociations", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_AddPhotos(t *testing.T) {
	t.Run("forwards to the association index", func(t *testing.T) {
		svc, _, associationRepo, _, _ := newTestService()
		photos := refs("A")
		associationRepo.On("AddAssociations", mock.Anything, model.PhotoEntityCity, int64(7), int64(2), photos).
			Return(nil)

		err := svc.AddPhotos(context.Background(), "cities", 7, 2, photos)
		require.NoError(t, err)
		associationRepo.AssertExpectations(t)
	})

	t.Run("empty photo list is a no-op", func(t *testing.T) {
		svc, _, associationRepo, _, _ := newTestService()

		err := svc.AddPhotos(context.Background(), "cities", 7, 2, nil)
		require.NoError(t, err)
		associationRepo.AssertNotCalled(t, "AddAssociations",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported entity type fails fast", func(t *testing.T) {
		svc, _, associationRepo, _, _ := newTestService()

		err := svc.AddPhotos(context.Background(), "countries", 7, 2, refs("A"))
		require.Error(t, err)
		assert.True(t, apperr.IsInvalidArgument(err))
		associationRepo.AssertNotCalled(t, "AddAssociations",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_RemovePhotos(t *testing.T) {
	t.Run("requires external id or url", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()

		err := svc.RemovePhotos(context.Background(), "cities", 7, []model.PhotoRef{{}})
		require.Error(t, err)
		assert.True(t, apperr.IsInvalidArgument(err))
	})

	t.Run("accepts url-only refs", func(t *testing.T) {
		svc, _, associationRepo, _, _ := newTestService()
		photos := []model.PhotoRef{{URL: "https://photos.example/a"}}
		associationRepo.On("RemoveAssociations", mock.Anything, model.PhotoEntityCity, int64(7), photos).
			Return(nil)

		err := svc.RemovePhotos(context.Background(), "cities", 7, photos)
		require.NoError(t, err)
		associationRepo.AssertExpectations(t)
	})
}

func TestService_SearchPhotos(t *testing.T) {
	t.Run("clamps the page size and forwards the cursor", func(t *testing.T) {
		svc, _, _, _, searcher := newTestService()
		searcher.On("Search", mock.Anything, "sunset", maxSearchLimit, "page2").
			Return(&model.SearchResponse{
				Photos:     []model.PhotoDescriptor{{ExternalID: "p1", URL: "https://photos.example/p1"}},
				NextCursor: "page3",
			}, nil)

		resp, err := svc.SearchPhotos(context.Background(), "sunset", 1000, "page2")
		require.NoError(t, err)
		assert.Len(t, resp.Photos, 1)
		assert.Equal(t, "page3", resp.NextCursor)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		svc, _, _, _, searcher := newTestService()

		_, err := svc.SearchPhotos(context.Background(), "", 10, "")
		require.Error(t, err)
		assert.True(t, apperr.IsInvalidArgument(err))
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failures surface unchanged", func(t *testing.T) {
		svc, _, _, _, searcher := newTestService()
		searcher.On("Search", mock.Anything, "sunset", defaultSearchLimit, "").
			Return(nil, apperr.UpstreamGateway("media provider returned 503", errors.New("maintenance")))

		_, err := svc.SearchPhotos(context.Background(), "sunset", 0, "")
		require.Error(t, err)
		assert.True(t, apperr.IsUpstreamGateway(err))
	})
}
