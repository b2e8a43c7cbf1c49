package dedup

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/normalize"
)

const sharedTrackDoc = `{"playlists":[
	{"id":"p1","name":"First","tracks":{"items":[
		{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1","name":"Shared","duration_ms":1000,
			"album":{"id":"al1","name":"Album","artists":[{"id":"a3","name":"Album Artist"}]},
			"artists":[{"id":"a1","name":"Original Name"},{"id":"a2","name":"Feature"}]}},
		{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t2","name":"Other","duration_ms":2000,
			"artists":[{"id":"a1","name":"Renamed"}]}},
		{"added_at":"2024-01-01T00:00:00Z","track":null}
	]}},
	{"id":"p2","name":"Second","tracks":{"items":[
		{"added_at":"2024-01-02T00:00:00Z","track":{"id":"t3","name":"Third","duration_ms":3000,"artists":[]}},
		{"added_at":"2024-01-02T00:00:00Z","track":{"id":"t1","name":"Shared Again","duration_ms":1000,
			"artists":[{"id":"a1","name":"Third Name"}]}}
	]}}
]}`

func loadDoc(t *testing.T, src string) domain.SourceDocument {
	t.Helper()
	var doc domain.SourceDocument
	require.NoError(t, json.Unmarshal([]byte(src), &doc))
	return doc
}

func TestFirstSeen_ArtistKeepsFirstName(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)

	artists, err := FirstSeen(Artists(doc), normalize.Artist)
	require.NoError(t, err)

	ids := make([]string, 0, len(artists))
	for _, a := range artists {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids)
	assert.Equal(t, "Original Name", artists[0].Name)
}

func TestFirstSeen_TracksAndAlbums(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)

	tracks, err := FirstSeen(Tracks(doc), normalize.Track)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "Shared", tracks[0].Name)

	albums, err := FirstSeen(Albums(doc), normalize.Album)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "al1", albums[0].ID)

	playlists, err := FirstSeen(Playlists(doc), normalize.Playlist)
	require.NoError(t, err)
	assert.Len(t, playlists, 2)
}

func TestFirstSeen_SkipsLaterOccurrencesWithoutNormalizing(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)

	calls := map[string]int{}
	_, err := FirstSeen(Tracks(doc), func(raw domain.RawTrack) (string, error) {
		calls[raw.ID]++
		return raw.ID, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"t1": 1, "t2": 1, "t3": 1}, calls)
}

func TestFirstSeen_StopsOnError(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)
	boom := errors.New("boom")

	got, err := FirstSeen(Tracks(doc), func(raw domain.RawTrack) (string, error) {
		if raw.ID == "t2" {
			return "", boom
		}
		return raw.ID, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"t1"}, got)
}

func TestTrackArtists(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)

	links, err := FirstSeen(TrackArtists(doc), func(ref TrackArtistRef) (domain.TrackArtist, error) {
		return normalize.TrackArtist(ref.TrackID, ref.Position, ref.Artist)
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.TrackArtist{
		{TrackID: "t1", ArtistID: "a1", Position: 0},
		{TrackID: "t1", ArtistID: "a2", Position: 1},
		{TrackID: "t2", ArtistID: "a1", Position: 0},
	}, links)
}

func TestPlaylistTracks_NotDeduplicated(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)
	n := normalize.Normalizer{}

	rows, err := PlaylistTracks(doc, n.PlaylistTrack)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	type pair struct {
		playlist, track string
		position        int
	}
	var got []pair
	for _, r := range rows {
		got = append(got, pair{r.PlaylistID, r.TrackID, r.Position})
	}
	assert.Equal(t, []pair{
		{"p1", "t1", 0},
		{"p1", "t2", 1},
		{"p2", "t3", 0},
		{"p2", "t1", 1},
	}, got)
}

func TestIterators_StopEarly(t *testing.T) {
	doc := loadDoc(t, sharedTrackDoc)
	count := 0
	for range Artists(doc) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
