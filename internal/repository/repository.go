package repository

import (
	"context"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/config"
	"github.com/tripfolio/tripfolio-api/internal/model"

	"github.com/jmoiron/sqlx"
)

// EntityRepository defines operations for travel entities
type EntityRepository interface {
	ListEntities(ctx context.Context, kind model.EntityKind, parentID *int64) ([]model.TravelEntity, error)
	GetEntityByID(ctx context.Context, id int64) (*model.TravelEntity, error)
	CreateEntity(ctx context.Context, entity *model.TravelEntity) (int64, error)
	UpdateEntity(ctx context.Context, id int64, name string, lat, lon float64) error
	DeleteEntity(ctx context.Context, id int64) error
	// SetDirectVisit records a visit on the entity itself; the derived
	// last_visited aggregate is updated separately via RecomputeLastVisited.
	SetDirectVisit(ctx context.Context, id int64, visitedAt time.Time) error
	// RecomputeLastVisited resets an entity's last_visited to the maximum
	// over its children's aggregates and its own directly set visit.
	RecomputeLastVisited(ctx context.Context, id int64) error
}

// AssociationRepository defines the photo association index
type AssociationRepository interface {
	ListAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64) ([]model.PhotoAssociation, error)
	// AddAssociations is idempotent: a photo already attached to the
	// entity is silently skipped, never duplicated.
	AddAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID, ownerID int64, photos []model.PhotoRef) error
	// RemoveAssociations matches by external id when the ref carries one,
	// by url otherwise; missing rows are silently ignored.
	RemoveAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64, photos []model.PhotoRef) error
}

// UserRepository defines operations for accounts
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionRepository defines the token revocation table
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// CheckInRepository defines operations for geolocation check-ins
type CheckInRepository interface {
	CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) (int64, error)
	ListCheckInsByEntity(ctx context.Context, entityID int64) ([]model.CheckIn, error)
}

// Container holds all repositories
type Container struct {
	Entity      EntityRepository
	Association AssociationRepository
	User        UserRepository
	Session     SessionRepository
	CheckIn     CheckInRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Entity:      &pgEntityRepository{db: db},
			Association: &pgAssociationRepository{db: db},
			User:        &pgUserRepository{db: db},
			Session:     &pgSessionRepository{db: db},
			CheckIn:     &pgCheckInRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		Entity:      &sqliteEntityRepository{db: db},
		Association: &sqliteAssociationRepository{db: db},
		User:        &sqliteUserRepository{db: db},
		Session:     &sqliteSessionRepository{db: db},
		CheckIn:     &sqliteCheckInRepository{db: db},
	}
}
