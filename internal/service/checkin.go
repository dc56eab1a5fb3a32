package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"
)

// CreateCheckIn logs a geolocated visit and updates the entity's
// last-visited aggregate
func (s *Service) CreateCheckIn(ctx context.Context, userID int64, req model.CheckInRequest) (*model.CheckIn, error) {
	if userID <= 0 {
		return nil, apperr.InvalidArgument("user id is required")
	}
	if req.EntityID <= 0 {
		return nil, apperr.InvalidArgument("entity id is required")
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return nil, apperr.InvalidArgument("coordinates out of range")
	}

	entity, err := s.entityRepo.GetEntityByID(ctx, req.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil {
		return nil, apperr.InvalidArgument("entity %d not found", req.EntityID)
	}

	// The timestamp is set here and stored as-is so the echoed check-in
	// matches what a later list returns.
	checkIn := &model.CheckIn{
		UserID:    userID,
		EntityID:  req.EntityID,
		Lat:       req.Lat,
		Lon:       req.Lon,
		Note:      req.Note,
		CreatedAt: time.Now(),
	}
	id, err := s.checkInRepo.CreateCheckIn(ctx, checkIn)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkin: %w", err)
	}
	checkIn.ID = id

	if err := s.RecordVisit(ctx, req.EntityID, checkIn.CreatedAt); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// ListCheckIns returns the check-ins logged against one entity
func (s *Service) ListCheckIns(ctx context.Context, entityID int64) ([]model.CheckIn, error) {
	if entityID <= 0 {
		return nil, apperr.InvalidArgument("entity id is required")
	}
	checkIns, err := s.checkInRepo.ListCheckInsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	return checkIns, nil
}
