package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// Counts holds the number of records written per kind.
type Counts struct {
	Artists        int `json:"artists"`
	Albums         int `json:"albums"`
	Tracks         int `json:"tracks"`
	Playlists      int `json:"playlists"`
	PlaylistTracks int `json:"playlistTracks"`
	TrackArtists   int `json:"trackArtists"`
	AudioFeatures  int `json:"audioFeatures"`
}

func (c *Counts) field(kind domain.Kind) *int {
	switch kind {
	case domain.KindArtist:
		return &c.Artists
	case domain.KindAlbum:
		return &c.Albums
	case domain.KindTrack:
		return &c.Tracks
	case domain.KindPlaylist:
		return &c.Playlists
	case domain.KindPlaylistTrack:
		return &c.PlaylistTracks
	case domain.KindTrackArtist:
		return &c.TrackArtists
	case domain.KindAudioFeatures:
		return &c.AudioFeatures
	}
	return nil
}

func (c *Counts) add(kind domain.Kind, n int) {
	if f := c.field(kind); f != nil {
		*f += n
	}
}

// Get returns the count for kind.
func (c Counts) Get(kind domain.Kind) int {
	if f := c.field(kind); f != nil {
		return *f
	}
	return 0
}

func (c Counts) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, k := range domain.IngestOrder {
		enc.AddInt(k.String(), c.Get(k))
	}
	return nil
}

// Summary describes one ingestion run. A failed run still returns the
// counts accumulated before the failure.
type Summary struct {
	RunID      uuid.UUID `json:"run_id"`
	Counts     Counts    `json:"counts"`
	Skipped    Counts    `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Fields renders the summary for structured logs.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", s.RunID.String()),
		zap.Object("counts", s.Counts),
		zap.Object("skipped", s.Skipped),
		zap.Duration("duration", s.Duration()),
	}
}
