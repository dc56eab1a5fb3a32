package service

import (
	"context"
	"fmt"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// ListPhotos returns the associations stored for one entity. An entity
// with no photos yields an empty list, not an error.
func (s *Service) ListPhotos(ctx context.Context, entityType string, entityID int64) (*model.PhotosResponse, error) {
	t, err := model.ParsePhotoEntityType(entityType)
	if err != nil {
		return nil, err
	}
	if entityID <= 0 {
		return nil, apperr.InvalidArgument("entity id is required")
	}

	associations, err := s.associationRepo.ListAssociations(ctx, t, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	if associations == nil {
		associations = []model.PhotoAssociation{}
	}
	return &model.PhotosResponse{Photos: associations}, nil
}

// AddPhotos attaches photos to an entity. Attaching a photo that is
// already associated is a silent no-op.
func (s *Service) AddPhotos(ctx context.Context, entityType string, entityID, ownerID int64, photos []model.PhotoRef) error {
	t, err := model.ParsePhotoEntityType(entityType)
	if err != nil {
		return err
	}
	if entityID <= 0 {
		return apperr.InvalidArgument("entity id is required")
	}
	if ownerID <= 0 {
		return apperr.InvalidArgument("owner id is required")
	}
	for _, photo := range photos {
		if photo.ExternalID == "" {
			return apperr.InvalidArgument("photo external id is required")
		}
	}
	if len(photos) == 0 {
		return nil
	}

	if err := s.associationRepo.AddAssociations(ctx, t, entityID, ownerID, photos); err != nil {
		return fmt.Errorf("failed to add associations: %w", err)
	}
	return nil
}

// RemovePhotos detaches photos from an entity. Removing a photo that is
// not associated is a silent no-op.
func (s *Service) RemovePhotos(ctx context.Context, entityType string, entityID int64, photos []model.PhotoRef) error {
	t, err := model.ParsePhotoEntityType(entityType)
	if err != nil {
		return err
	}
	if entityID <= 0 {
		return apperr.InvalidArgument("entity id is required")
	}
	for _, photo := range photos {
		if photo.ExternalID == "" && photo.URL == "" {
			return apperr.InvalidArgument("photo external id or url is required")
		}
	}
	if len(photos) == 0 {
		return nil
	}

	if err := s.associationRepo.RemoveAssociations(ctx, t, entityID, photos); err != nil {
		return fmt.Errorf("failed to remove associations: %w", err)
	}
	return nil
}

// ReconcilePhotos drives the stored set to the caller-supplied desired
// set by computing the add/remove delta against the current rows.
// Adds are applied before removes: if the remove phase fails the entity
// is left with a superset of the desired photos, never a subset.
func (s *Service) ReconcilePhotos(ctx context.Context, entityType string, entityID, ownerID int64, desired []model.PhotoRef) error {
	t, err := model.ParsePhotoEntityType(entityType)
	if err != nil {
		return err
	}
	if entityID <= 0 {
		return apperr.InvalidArgument("entity id is required")
	}
	if ownerID <= 0 {
		return apperr.InvalidArgument("owner id is required")
	}
	for _, photo := range desired {
		if photo.ExternalID == "" {
			return apperr.InvalidArgument("photo external id is required")
		}
	}

	current, err := s.associationRepo.ListAssociations(ctx, t, entityID)
	if err != nil {
		return fmt.Errorf("failed to list associations: %w", err)
	}

	currentByID := make(map[string]struct{}, len(current))
	for _, a := range current {
		currentByID[a.ExternalID] = struct{}{}
	}

	// Deduplicate desired by external id; the outcome must not depend
	// on the caller's iteration order.
	desiredByID := make(map[string]model.PhotoRef, len(desired))
	for _, photo := range desired {
		desiredByID[photo.ExternalID] = photo
	}

	var toAdd []model.PhotoRef
	for id, photo := range desiredByID {
		if _, ok := currentByID[id]; !ok {
			toAdd = append(toAdd, photo)
		}
	}

	var toRemove []model.PhotoRef
	for _, a := range current {
		if _, ok := desiredByID[a.ExternalID]; !ok {
			toRemove = append(toRemove, model.PhotoRef{ExternalID: a.ExternalID, URL: a.URL})
		}
	}

	if len(toAdd) > 0 {
		if err := s.associationRepo.AddAssociations(ctx, t, entityID, ownerID, toAdd); err != nil {
			return fmt.Errorf("failed to add associations: %w", err)
		}
	}
	if len(toRemove) > 0 {
		if err := s.associationRepo.RemoveAssociations(ctx, t, entityID, toRemove); err != nil {
			return fmt.Errorf("failed to remove associations: %w", err)
		}
	}
	return nil
}

// SearchPhotos passes a tag query through to the media provider
func (s *Service) SearchPhotos(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error) {
	if query == "" {
		return nil, apperr.InvalidArgument("search query is required")
	}
	if maxResults <= 0 {
		maxResults = defaultSearchLimit
	}
	if maxResults > maxSearchLimit {
		maxResults = maxSearchLimit
	}

	page, err := s.searcher.Search(ctx, query, maxResults, cursor)
	if err != nil {
		return nil, fmt.Errorf("media search failed: %w", err)
	}
	return page, nil
}
