package service

import (
	"github.com/tripfolio/tripfolio-api/internal/media"
	"github.com/tripfolio/tripfolio-api/internal/repository"
)

// Service provides business logic for the API
type Service struct {
	entityRepo      repository.EntityRepository
	associationRepo repository.AssociationRepository
	checkInRepo     repository.CheckInRepository
	searcher        media.Searcher
}

// NewService creates a new service instance
func NewService(
	entityRepo repository.EntityRepository,
	associationRepo repository.AssociationRepository,
	checkInRepo repository.CheckInRepository,
	searcher media.Searcher,
) *Service {
	return &Service{
		entityRepo:      entityRepo,
		associationRepo: associationRepo,
		checkInRepo:     checkInRepo,
		searcher:        searcher,
	}
}
