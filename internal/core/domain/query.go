package domain

// AlbumRef is the album summary embedded in track views. Fields are nil when
// the track has no stored album.
type AlbumRef struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	ReleaseDate *string `json:"release_date"`
	AlbumType   *string `json:"album_type"`
}

// FeatureValues are the audio features shown on a track view.
type FeatureValues struct {
	Danceability *float64 `json:"danceability"`
	Energy       *float64 `json:"energy"`
	Valence      *float64 `json:"valence"`
	Tempo        *float64 `json:"tempo"`
	Key          *int     `json:"key"`
	Mode         *int     `json:"mode"`
}

// Present reports whether any feature value was stored for the track.
func (f FeatureValues) Present() bool {
	return f.Danceability != nil || f.Energy != nil || f.Valence != nil ||
		f.Tempo != nil || f.Key != nil || f.Mode != nil
}

type ArtistRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
}

// PlaylistTrackView is one row of a playlist's track listing.
type PlaylistTrackView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DurationMs    int64         `json:"duration_ms"`
	Explicit      bool          `json:"explicit"`
	Popularity    int           `json:"popularity"`
	Album         AlbumRef      `json:"album"`
	Artists       []ArtistRef   `json:"artists"`
	AudioFeatures FeatureValues `json:"audio_features"`
	Position      int           `json:"position"`
	AddedAt       string        `json:"added_at"`
	AddedBy       *string       `json:"added_by"`
}

// ArtistTrackView is one of an artist's top tracks. AudioFeatures is nil when
// the track has no stored features.
type ArtistTrackView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Popularity    int            `json:"popularity"`
	DurationMs    int64          `json:"duration_ms"`
	Explicit      bool           `json:"explicit"`
	Album         AlbumRef       `json:"album"`
	AudioFeatures *FeatureValues `json:"audio_features"`
}

// AverageFeatures holds the mean feature values over a set of tracks; all
// fields are nil when no track had features.
type AverageFeatures struct {
	Danceability *float64 `json:"danceability"`
	Energy       *float64 `json:"energy"`
	Valence      *float64 `json:"valence"`
	Tempo        *float64 `json:"tempo"`
}

type ArtistStats struct {
	TotalTopTracks     int `json:"total_top_tracks"`
	TracksWithFeatures int `json:"tracks_with_features"`
}

type ArtistSummary struct {
	Artist               Artist            `json:"artist"`
	TopTracks            []ArtistTrackView `json:"top_tracks"`
	AverageAudioFeatures AverageFeatures   `json:"average_audio_features"`
	Stats                ArtistStats       `json:"stats"`
}

type PlaylistFilters struct {
	EnergyMin float64 `json:"energyMin"`
}

// PlaylistTracksPage is the response of the playlist track listing.
type PlaylistTracksPage struct {
	Playlist Playlist            `json:"playlist"`
	Filters  PlaylistFilters     `json:"filters"`
	Tracks   []PlaylistTrackView `json:"tracks"`
	Total    int                 `json:"total"`
}
