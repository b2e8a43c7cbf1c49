package services

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/ports"
)

// TopTrackLimit is the number of tracks in an artist summary.
const TopTrackLimit = 5

// Catalog answers the read queries of the API.
type Catalog struct {
	reader ports.CatalogReader
	logger *zap.Logger
}

func NewCatalog(reader ports.CatalogReader, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{reader: reader, logger: logger.Named("catalog")}
}

// PlaylistTracks lists a playlist's tracks with energy at least energyMin,
// which must lie in [0, 1].
func (c *Catalog) PlaylistTracks(ctx context.Context, playlistID string, energyMin float64) (domain.PlaylistTracksPage, error) {
	if math.IsNaN(energyMin) || energyMin < 0 || energyMin > 1 {
		return domain.PlaylistTracksPage{}, fmt.Errorf("energyMin must be a number between 0 and 1: %w", domain.ErrInvalidArgument)
	}

	playlist, err := c.reader.GetPlaylist(ctx, playlistID)
	if err != nil {
		return domain.PlaylistTracksPage{}, fmt.Errorf("service: failed to load playlist: %w", err)
	}
	tracks, err := c.reader.PlaylistTracks(ctx, playlistID, energyMin)
	if err != nil {
		return domain.PlaylistTracksPage{}, fmt.Errorf("service: failed to load playlist tracks: %w", err)
	}

	c.logger.Debug("playlist tracks",
		zap.String("playlist_id", playlistID),
		zap.Float64("energy_min", energyMin),
		zap.Int("count", len(tracks)),
	)
	return domain.PlaylistTracksPage{
		Playlist: playlist,
		Filters:  domain.PlaylistFilters{EnergyMin: energyMin},
		Tracks:   tracks,
		Total:    len(tracks),
	}, nil
}

// ArtistSummary returns the artist's top tracks and their average audio
// features. Averages only consider tracks that have features.
func (c *Catalog) ArtistSummary(ctx context.Context, artistID string) (domain.ArtistSummary, error) {
	artist, err := c.reader.GetArtist(ctx, artistID)
	if err != nil {
		return domain.ArtistSummary{}, fmt.Errorf("service: failed to load artist: %w", err)
	}
	top, err := c.reader.ArtistTopTracks(ctx, artistID, TopTrackLimit)
	if err != nil {
		return domain.ArtistSummary{}, fmt.Errorf("service: failed to load top tracks: %w", err)
	}

	avg, withFeatures := averageFeatures(top)
	c.logger.Debug("artist summary",
		zap.String("artist_id", artistID),
		zap.Int("top_tracks", len(top)),
	)
	return domain.ArtistSummary{
		Artist:               artist,
		TopTracks:            top,
		AverageAudioFeatures: avg,
		Stats: domain.ArtistStats{
			TotalTopTracks:     len(top),
			TracksWithFeatures: withFeatures,
		},
	}, nil
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func averageFeatures(tracks []domain.ArtistTrackView) (domain.AverageFeatures, int) {
	var dance, energy, valence, tempo mean
	withFeatures := 0
	for _, t := range tracks {
		f := t.AudioFeatures
		if f == nil {
			continue
		}
		withFeatures++
		dance.add(f.Danceability)
		energy.add(f.Energy)
		valence.add(f.Valence)
		tempo.add(f.Tempo)
	}
	return domain.AverageFeatures{
		Danceability: dance.value(),
		Energy:       energy.value(),
		Valence:      valence.value(),
		Tempo:        tempo.value(),
	}, withFeatures
}
