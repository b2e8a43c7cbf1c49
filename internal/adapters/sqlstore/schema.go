package sqlstore

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			popularity INTEGER NOT NULL DEFAULT 0,
			followers INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS albums (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			release_date TEXT,
			album_type TEXT NOT NULL DEFAULT 'album',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			explicit BOOLEAN NOT NULL DEFAULT 0,
			popularity INTEGER NOT NULL DEFAULT 0,
			album_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner TEXT,
			snapshot TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			added_at TEXT NOT NULL,
			added_by TEXT,
			PRIMARY KEY (playlist_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS track_artists (
			track_id TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (track_id, artist_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audio_features (
			track_id TEXT PRIMARY KEY,
			danceability REAL,
			energy REAL,
			tempo REAL,
			key_signature INTEGER,
			mode INTEGER,
			valence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_track_artists_artist ON track_artists (artist_id)`,
	}
}

func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			popularity INT NOT NULL DEFAULT 0,
			followers BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS albums (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			release_date VARCHAR(32),
			album_type VARCHAR(32) NOT NULL DEFAULT 'album',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			duration_ms BIGINT NOT NULL,
			explicit BOOLEAN NOT NULL DEFAULT FALSE,
			popularity INT NOT NULL DEFAULT 0,
			album_id VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_tracks_album (album_id)
		)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			owner VARCHAR(128),
			snapshot VARCHAR(128),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id VARCHAR(64) NOT NULL,
			track_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			added_at DATETIME NOT NULL,
			added_by VARCHAR(128),
			PRIMARY KEY (playlist_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS track_artists (
			track_id VARCHAR(64) NOT NULL,
			artist_id VARCHAR(64) NOT NULL,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (track_id, artist_id),
			INDEX idx_track_artists_artist (artist_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audio_features (
			track_id VARCHAR(64) PRIMARY KEY,
			danceability DOUBLE,
			energy DOUBLE,
			tempo DOUBLE,
			key_signature INT,
			mode INT,
			valence DOUBLE
		)`,
	}
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			popularity INTEGER NOT NULL DEFAULT 0,
			followers BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS albums (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			release_date TEXT,
			album_type TEXT NOT NULL DEFAULT 'album',
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			explicit BOOLEAN NOT NULL DEFAULT FALSE,
			popularity INTEGER NOT NULL DEFAULT 0,
			album_id TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner TEXT,
			snapshot TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			added_at TIMESTAMP NOT NULL,
			added_by TEXT,
			PRIMARY KEY (playlist_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS track_artists (
			track_id TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (track_id, artist_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audio_features (
			track_id TEXT PRIMARY KEY,
			danceability DOUBLE PRECISION,
			energy DOUBLE PRECISION,
			tempo DOUBLE PRECISION,
			key_signature INTEGER,
			mode INTEGER,
			valence DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_track_artists_artist ON track_artists (artist_id)`,
	}
}
