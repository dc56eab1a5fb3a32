package stats

import (
	"context"
	"testing"

	"github.com/tripfolio/tripfolio-api/internal/config"
	"github.com/tripfolio/tripfolio-api/internal/database"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "stats_test_" + t.Name()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err)
	err = m.Up()
	require.NoError(t, err)

	return db
}

func TestCollector_Collect(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO users (id, username, password_hash) VALUES (1, 'marco', 'x')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO travel_entities (id, kind, name, lat, lon) VALUES (1, 'city', 'Dublin', 53.35, -6.26)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO photo_associations (id, external_id, url, entity_type, entity_id, owner_id) VALUES ('a1', 'p1', 'https://photos.example/p1', 'city', 1, 1)")
	require.NoError(t, err)

	cfg := config.DBConfig{Type: config.DBTypeMemory}
	collector := NewCollector(db, cfg)

	collected, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", collected.Database.Type)
	assert.Greater(t, collected.Database.TotalRecords, int64(0))
	assert.Equal(t, int64(1), collected.Database.AttachedPhotos)

	var entityCount int64
	for _, ts := range collected.Database.TableStats {
		if ts.Name == "travel_entities" {
			entityCount = ts.RowCount
		}
	}
	assert.Equal(t, int64(1), entityCount)

	assert.Greater(t, collected.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, collected.Runtime.NumGoroutines, 1)

	collected2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, collected.Memory.Alloc, collected2.Memory.Alloc)
}

func TestCollector_EmptyDB(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cfg := config.DBConfig{Type: config.DBTypeMemory}
	collector := NewCollector(db, cfg)

	collected, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), collected.Database.TotalRecords)
	assert.Equal(t, int64(0), collected.Database.AttachedPhotos)
}
