package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type sqliteEntityRepository struct {
	db *sqlx.DB
}

func (r *sqliteEntityRepository) ListEntities(ctx context.Context, kind model.EntityKind, parentID *int64) ([]model.TravelEntity, error) {
	q := `SELECT * FROM travel_entities WHERE 1=1`
	args := []interface{}{}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, kind)
	}
	if parentID != nil {
		q += ` AND parent_id = ?`
		args = append(args, *parentID)
	}
	q += ` ORDER BY name`

	var entities []model.TravelEntity
	if err := r.db.SelectContext(ctx, &entities, q, args...); err != nil {
		return nil, apperr.Storage("list entities", err)
	}
	return entities, nil
}

func (r *sqliteEntityRepository) GetEntityByID(ctx context.Context, id int64) (*model.TravelEntity, error) {
	var entity model.TravelEntity
	if err := r.db.GetContext(ctx, &entity, "SELECT * FROM travel_entities WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get entity", err)
	}
	return &entity, nil
}

func (r *sqliteEntityRepository) CreateEntity(ctx context.Context, entity *model.TravelEntity) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO travel_entities (kind, parent_id, name, lat, lon, last_visited)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entity.Kind, entity.ParentID, entity.Name, entity.Lat, entity.Lon, entity.LastVisited)
	if err != nil {
		return 0, apperr.Storage("create entity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("create entity", err)
	}
	return id, nil
}

func (r *sqliteEntityRepository) UpdateEntity(ctx context.Context, id int64, name string, lat, lon float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE travel_entities SET name = ?, lat = ?, lon = ? WHERE id = ?`,
		name, lat, lon, id)
	if err != nil {
		return apperr.Storage("update entity", err)
	}
	return nil
}

func (r *sqliteEntityRepository) DeleteEntity(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM travel_entities WHERE id = ?`, id); err != nil {
		return apperr.Storage("delete entity", err)
	}
	return nil
}

func (r *sqliteEntityRepository) SetDirectVisit(ctx context.Context, id int64, visitedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE travel_entities SET own_visited = ? WHERE id = ?`, visitedAt, id)
	if err != nil {
		return apperr.Storage("set direct visit", err)
	}
	return nil
}

func (r *sqliteEntityRepository) RecomputeLastVisited(ctx context.Context, id int64) error {
	// The aggregate is derived only from the children's aggregates and
	// the row's own direct visit, so it can drop back to NULL when the
	// child that carried the latest date is deleted.
	q := `
		UPDATE travel_entities
		SET last_visited = (
			SELECT MAX(lv) FROM (
				SELECT last_visited AS lv FROM travel_entities WHERE parent_id = ?
				UNION ALL
				SELECT own_visited FROM travel_entities WHERE id = ?
			)
		)
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, q, id, id, id); err != nil {
		return apperr.Storage("recompute last visited", err)
	}
	return nil
}

type sqliteAssociationRepository struct {
	db *sqlx.DB
}

func (r *sqliteAssociationRepository) ListAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64) ([]model.PhotoAssociation, error) {
	q := `
		SELECT * FROM photo_associations
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at, external_id
	`
	var associations []model.PhotoAssociation
	if err := r.db.SelectContext(ctx, &associations, q, entityType.StorageKey(), entityID); err != nil {
		return nil, apperr.Storage("list associations", err)
	}
	return associations, nil
}

func (r *sqliteAssociationRepository) AddAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID, ownerID int64, photos []model.PhotoRef) error {
	// INSERT OR IGNORE makes duplicate adds a no-op against the
	// UNIQUE(external_id, entity_type, entity_id) constraint.
	q := `
		INSERT OR IGNORE INTO photo_associations (id, external_id, url, caption, entity_type, entity_id, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, photo := range photos {
		_, err := r.db.ExecContext(ctx, q,
			uuid.NewString(), photo.ExternalID, photo.URL, photo.Caption,
			entityType.StorageKey(), entityID, ownerID)
		if err != nil {
			return apperr.Storage("add association", err)
		}
	}
	return nil
}

func (r *sqliteAssociationRepository) RemoveAssociations(ctx context.Context, entityType model.PhotoEntityType, entityID int64, photos []model.PhotoRef) error {
	// Match on exactly one key per ref. A combined OR predicate would
	// let a ref without a url delete every row whose url is empty.
	byID := `DELETE FROM photo_associations WHERE entity_type = ? AND entity_id = ? AND external_id = ?`
	byURL := `DELETE FROM photo_associations WHERE entity_type = ? AND entity_id = ? AND url = ?`
	for _, photo := range photos {
		var err error
		if photo.ExternalID != "" {
			_, err = r.db.ExecContext(ctx, byID, entityType.StorageKey(), entityID, photo.ExternalID)
		} else {
			_, err = r.db.ExecContext(ctx, byURL, entityType.StorageKey(), entityID, photo.URL)
		}
		if err != nil {
			return apperr.Storage("remove association", err)
		}
	}
	return nil
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

func (r *sqliteUserRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return 0, apperr.Storage("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("create user", err)
	}
	return id, nil
}

func (r *sqliteUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get user", err)
	}
	return &user, nil
}

func (r *sqliteUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get user", err)
	}
	return &user, nil
}

type sqliteSessionRepository struct {
	db *sqlx.DB
}

func (r *sqliteSessionRepository) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt)
	if err != nil {
		return apperr.Storage("create session", err)
	}
	return nil
}

func (r *sqliteSessionRepository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.GetContext(ctx, &session, `SELECT * FROM sessions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get session", err)
	}
	return &session, nil
}

func (r *sqliteSessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return apperr.Storage("delete session", err)
	}
	return nil
}

type sqliteCheckInRepository struct {
	db *sqlx.DB
}

func (r *sqliteCheckInRepository) CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO checkins (user_id, entity_id, lat, lon, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		checkIn.UserID, checkIn.EntityID, checkIn.Lat, checkIn.Lon, checkIn.Note, checkIn.CreatedAt)
	if err != nil {
		return 0, apperr.Storage("create checkin", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("create checkin", err)
	}
	return id, nil
}

func (r *sqliteCheckInRepository) ListCheckInsByEntity(ctx context.Context, entityID int64) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	q := `SELECT * FROM checkins WHERE entity_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &checkIns, q, entityID); err != nil {
		return nil, apperr.Storage("list checkins", err)
	}
	return checkIns, nil
}
