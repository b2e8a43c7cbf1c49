package ports

import (
	"context"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// CatalogStore persists normalized records.
type CatalogStore interface {
	// UpsertBatch writes every record in one transaction and returns the
	// number of records written. A failure rolls the whole batch back.
	UpsertBatch(ctx context.Context, records []domain.Record) (int, error)
}

// CatalogReader serves the read side of the catalog.
type CatalogReader interface {
	GetPlaylist(ctx context.Context, id string) (domain.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string, energyMin float64) ([]domain.PlaylistTrackView, error)
	GetArtist(ctx context.Context, id string) (domain.Artist, error)
	ArtistTopTracks(ctx context.Context, artistID string, limit int) ([]domain.ArtistTrackView, error)
}
