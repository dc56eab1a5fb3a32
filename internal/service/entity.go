package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"
)

// allowedParents maps each kind to the kinds its parent may have.
// A city may hang directly off a country when no state level exists.
var allowedParents = map[model.EntityKind][]model.EntityKind{
	model.KindCountry:    nil,
	model.KindState:      {model.KindCountry},
	model.KindCity:       {model.KindState, model.KindCountry},
	model.KindAttraction: {model.KindCity},
}

// ListEntities returns entities filtered by kind and/or parent
func (s *Service) ListEntities(ctx context.Context, kind string, parentID *int64) ([]model.TravelEntity, error) {
	var k model.EntityKind
	if kind != "" {
		parsed, err := model.ParseEntityKind(kind)
		if err != nil {
			return nil, err
		}
		k = parsed
	}

	entities, err := s.entityRepo.ListEntities(ctx, k, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// GetEntity retrieves one entity; nil means not found
func (s *Service) GetEntity(ctx context.Context, id int64) (*model.TravelEntity, error) {
	entity, err := s.entityRepo.GetEntityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// CreateEntity validates the kind, parent and coordinates and stores a
// new travel entity
func (s *Service) CreateEntity(ctx context.Context, req model.CreateEntityRequest) (*model.TravelEntity, error) {
	kind, err := model.ParseEntityKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperr.InvalidArgument("entity name is required")
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return nil, apperr.InvalidArgument("coordinates out of range")
	}

	parents := allowedParents[kind]
	if len(parents) == 0 && req.ParentID != nil {
		return nil, apperr.InvalidArgument("%s cannot have a parent", kind)
	}
	if len(parents) > 0 {
		if req.ParentID == nil {
			return nil, apperr.InvalidArgument("%s requires a parent", kind)
		}
		parent, err := s.entityRepo.GetEntityByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if parent == nil {
			return nil, apperr.InvalidArgument("parent entity %d not found", *req.ParentID)
		}
		ok := false
		for _, allowed := range parents {
			if parent.Kind == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return nil, apperr.InvalidArgument("%s cannot be a child of %s", kind, parent.Kind)
		}
	}

	entity := &model.TravelEntity{
		Kind:     kind,
		ParentID: req.ParentID,
		Name:     req.Name,
		Lat:      req.Lat,
		Lon:      req.Lon,
	}
	id, err := s.entityRepo.CreateEntity(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity: %w", err)
	}

	return s.entityRepo.GetEntityByID(ctx, id)
}

// UpdateEntity edits name and coordinates
func (s *Service) UpdateEntity(ctx context.Context, id int64, req model.UpdateEntityRequest) error {
	if req.Name == "" {
		return apperr.InvalidArgument("entity name is required")
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return apperr.InvalidArgument("coordinates out of range")
	}

	entity, err := s.entityRepo.GetEntityByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil {
		return apperr.InvalidArgument("entity %d not found", id)
	}

	if err := s.entityRepo.UpdateEntity(ctx, id, req.Name, req.Lat, req.Lon); err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity and, via cascade, its children,
// associations and check-ins
func (s *Service) DeleteEntity(ctx context.Context, id int64) error {
	entity, err := s.entityRepo.GetEntityByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil {
		return apperr.InvalidArgument("entity %d not found", id)
	}

	parentID := entity.ParentID
	if err := s.entityRepo.DeleteEntity(ctx, id); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	// Removing a child can lower the ancestors' aggregate
	if parentID != nil {
		if err := s.propagateVisit(ctx, *parentID); err != nil {
			return err
		}
	}
	return nil
}

// RecordVisit records a direct visit on the entity and recomputes the
// aggregate from there up the parent chain, keeping every node at the
// maximum over its children's aggregates and its own direct visit.
func (s *Service) RecordVisit(ctx context.Context, id int64, visitedAt time.Time) error {
	entity, err := s.entityRepo.GetEntityByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil {
		return apperr.InvalidArgument("entity %d not found", id)
	}

	if err := s.entityRepo.SetDirectVisit(ctx, id, visitedAt); err != nil {
		return fmt.Errorf("failed to set direct visit: %w", err)
	}

	return s.propagateVisit(ctx, id)
}

// propagateVisit recomputes last-visited for id and every ancestor above it
func (s *Service) propagateVisit(ctx context.Context, id int64) error {
	for {
		if err := s.entityRepo.RecomputeLastVisited(ctx, id); err != nil {
			return fmt.Errorf("failed to recompute last visited: %w", err)
		}
		entity, err := s.entityRepo.GetEntityByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get entity: %w", err)
		}
		if entity == nil || entity.ParentID == nil {
			return nil
		}
		id = *entity.ParentID
	}
}
