package sqlstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

func TestDialect_Upsert(t *testing.T) {
	artist := domain.Artist{ID: "a1", Name: "A", Popularity: 1, Followers: 2}
	link := domain.TrackArtist{TrackID: "t1", ArtistID: "a1"}
	keyOnly := domain.AudioFeatures{TrackID: "t1"}

	tests := []struct {
		name    string
		dialect Dialect
		record  domain.Record
		wantSQL string
	}{
		{
			name:    "sqlite update",
			dialect: sqliteDialect{},
			record:  artist,
			wantSQL: `INSERT INTO "artists" ("id", "name", "popularity", "followers") VALUES (?, ?, ?, ?) ` +
				`ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name", "popularity" = excluded."popularity", "followers" = excluded."followers"`,
		},
		{
			name:    "sqlite key only",
			dialect: sqliteDialect{},
			record:  keyOnly,
			wantSQL: `INSERT INTO "audio_features" ("track_id") VALUES (?) ON CONFLICT ("track_id") DO NOTHING`,
		},
		{
			name:    "postgres composite key",
			dialect: postgresDialect{},
			record:  link,
			wantSQL: `INSERT INTO "track_artists" ("track_id", "artist_id", "position") VALUES ($1, $2, $3) ` +
				`ON CONFLICT ("track_id", "artist_id") DO UPDATE SET "position" = excluded."position"`,
		},
		{
			name:    "mysql update",
			dialect: mysqlDialect{},
			record:  link,
			wantSQL: "INSERT INTO `track_artists` (`track_id`, `artist_id`, `position`) VALUES (?, ?, ?) " +
				"ON DUPLICATE KEY UPDATE `position` = VALUES(`position`)",
		},
		{
			name:    "mysql key only",
			dialect: mysqlDialect{},
			record:  keyOnly,
			wantSQL: "INSERT INTO `audio_features` (`track_id`) VALUES (?) ON DUPLICATE KEY UPDATE `track_id` = `track_id`",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind := tc.record.Kind()
			stmt := tc.dialect.Upsert(kind.Table(), tc.record.Columns(), kind.ConflictKey())
			assert.Equal(t, tc.wantSQL, stmt.SQL)
			assert.Len(t, stmt.Args, len(tc.record.Columns()))
		})
	}
}

func TestDialect_UpsertNullArgument(t *testing.T) {
	pt := domain.PlaylistTrack{PlaylistID: "p1", TrackID: "t1", AddedAt: "2024-01-01 00:00:00"}
	stmt := sqliteDialect{}.Upsert("playlist_tracks", pt.Columns(), domain.KindPlaylistTrack.ConflictKey())
	require.Len(t, stmt.Args, 5)
	assert.Nil(t, stmt.Args[4])
}

func TestPostgresRebind_SkipsQuotedLiterals(t *testing.T) {
	got := postgresDialect{}.Rebind("SELECT '?' FROM t WHERE a = ? AND b = ?")
	assert.Equal(t, "SELECT '?' FROM t WHERE a = $1 AND b = $2", got)
}

func TestDialect_DSN(t *testing.T) {
	dsn, err := mysqlDialect{}.DSN(Config{Host: "db", Port: 3306, User: "u", Password: "p", Name: "playlists"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/playlists", strings.Split(dsn, "?")[0])

	_, err = mysqlDialect{}.DSN(Config{DSN: "not a dsn"})
	assert.Error(t, err)

	dsn, err = postgresDialect{}.DSN(Config{DSN: "postgres://u:p@db:5432/playlists?sslmode=disable"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "dbname='playlists'")
	assert.Contains(t, dsn, "host='db'")

	dsn, err = postgresDialect{}.DSN(Config{Host: "db", Port: 5432, Name: "playlists"})
	require.NoError(t, err)
	assert.Equal(t, "host='db' port='5432' dbname='playlists' sslmode='disable'", dsn)

	_, err = sqliteDialect{}.DSN(Config{})
	assert.Error(t, err)
}

func TestPostgresDSN_QuotesValues(t *testing.T) {
	dsn, err := postgresDialect{}.DSN(Config{Host: "db", Port: 5432, Name: "playlists", User: "u", Password: `p w'x\y`})
	require.NoError(t, err)
	assert.Equal(t, `host='db' port='5432' dbname='playlists' sslmode='disable' user='u' password='p w\'x\\y'`, dsn)
}

func TestDialectFor(t *testing.T) {
	for driver, want := range map[string]string{"": "sqlite", "SQLite3": "sqlite", "mysql": "mysql", "postgresql": "postgres"} {
		d, err := DialectFor(driver)
		require.NoError(t, err)
		assert.Equal(t, want, d.Name())
	}
	_, err := DialectFor("mongo")
	assert.Error(t, err)
}
