package service

import (
	"context"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListEntities(ctx context.Context, kind string, parentID *int64) ([]model.TravelEntity, error)
	GetEntity(ctx context.Context, id int64) (*model.TravelEntity, error)
	CreateEntity(ctx context.Context, req model.CreateEntityRequest) (*model.TravelEntity, error)
	UpdateEntity(ctx context.Context, id int64, req model.UpdateEntityRequest) error
	DeleteEntity(ctx context.Context, id int64) error
	RecordVisit(ctx context.Context, id int64, visitedAt time.Time) error

	ListPhotos(ctx context.Context, entityType string, entityID int64) (*model.PhotosResponse, error)
	AddPhotos(ctx context.Context, entityType string, entityID, ownerID int64, photos []model.PhotoRef) error
	RemovePhotos(ctx context.Context, entityType string, entityID int64, photos []model.PhotoRef) error
	ReconcilePhotos(ctx context.Context, entityType string, entityID, ownerID int64, desired []model.PhotoRef) error
	SearchPhotos(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error)

	CreateCheckIn(ctx context.Context, userID int64, req model.CheckInRequest) (*model.CheckIn, error)
	ListCheckIns(ctx context.Context, entityID int64) ([]model.CheckIn, error)
}
