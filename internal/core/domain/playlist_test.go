package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSourceDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr error
	}{
		{
			name:    "wrapped collection",
			input:   `{"playlists":[{"id":"p1","name":"One"},{"id":"p2","name":"Two"}]}`,
			wantIDs: []string{"p1", "p2"},
		},
		{
			name:    "single playlist object",
			input:   `{"id":"p1","name":"One","tracks":{"items":[]}}`,
			wantIDs: []string{"p1"},
		},
		{
			name:    "empty wrapper",
			input:   `{"playlists":[]}`,
			wantIDs: []string{},
		},
		{
			name:    "null document",
			input:   `null`,
			wantErr: ErrEmptyDocument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc SourceDocument
			err := json.Unmarshal([]byte(tc.input), &doc)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := make([]string, 0, len(doc.Playlists))
			for _, p := range doc.Playlists {
				got = append(got, p.ID)
			}
			if diff := cmp.Diff(tc.wantIDs, got); diff != "" {
				t.Fatalf("playlist IDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSourceDocument_NestedShapes(t *testing.T) {
	input := `{
		"id": "p1", "name": "Mix", "owner": {"id": "u1"}, "snapshot_id": "snap",
		"tracks": {"items": [
			{"added_at": 1700000000000, "added_by": null, "track": {
				"id": "t1", "name": "Song", "duration_ms": 1000,
				"album": {"id": "al1", "name": "Album", "artists": [{"id": "a2"}]},
				"artists": [{"id": "a1", "name": "Artist", "followers": {"total": 7}}]
			}},
			{"added_at": "2024-01-02T03:04:05Z", "track": null}
		]}
	}`

	var doc SourceDocument
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Playlists) != 1 {
		t.Fatalf("expected 1 playlist, got %d", len(doc.Playlists))
	}
	items := doc.Playlists[0].Tracks.Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := items[0].TrackID(); got != "t1" {
		t.Fatalf("expected track t1, got %q", got)
	}
	if got := items[1].TrackID(); got != "" {
		t.Fatalf("expected empty track id for null track, got %q", got)
	}
	if got := string(items[0].AddedAt); got != "1700000000000" {
		t.Fatalf("expected raw numeric added_at, got %s", got)
	}
	track := items[0].Track
	if track.Album == nil || len(track.Album.Artists) != 1 || track.Album.Artists[0].ID != "a2" {
		t.Fatalf("album artists not decoded: %+v", track.Album)
	}
	if f := track.Artists[0].Followers; f == nil || f.Total == nil || *f.Total != 7 {
		t.Fatalf("followers not decoded: %+v", f)
	}
}

func TestAudioFeaturesDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{name: "wrapped", input: `{"audio_features":[{"id":"t1"},null,{"id":"t2"}]}`, wantIDs: []string{"t1", "t2"}},
		{name: "bare array", input: `[{"id":"t1","key":5}]`, wantIDs: []string{"t1"}},
		{name: "object without key", input: `{"other":[]}`, wantIDs: []string{}},
		{name: "null", input: `null`, wantErr: true},
		{name: "malformed", input: `[{"id":`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc AudioFeaturesDocument
			err := json.Unmarshal([]byte(tc.input), &doc)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := make([]string, 0, len(doc.Features))
			for _, f := range doc.Features {
				got = append(got, f.ID)
			}
			if diff := cmp.Diff(tc.wantIDs, got); diff != "" {
				t.Fatalf("feature IDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecordColumns(t *testing.T) {
	release := "1999"
	energy := 0.5
	tests := []struct {
		name   string
		record Record
		want   []string
	}{
		{
			name:   "album omits absent release date",
			record: Album{ID: "al1", Name: "A", AlbumType: "album"},
			want:   []string{"id", "name", "album_type"},
		},
		{
			name:   "album keeps release date",
			record: Album{ID: "al1", Name: "A", ReleaseDate: &release, AlbumType: "single"},
			want:   []string{"id", "name", "release_date", "album_type"},
		},
		{
			name:   "track without album",
			record: Track{ID: "t1", Name: "T", DurationMs: 1},
			want:   []string{"id", "name", "duration_ms", "explicit", "popularity"},
		},
		{
			name:   "playlist track always carries added_by",
			record: PlaylistTrack{PlaylistID: "p1", TrackID: "t1", AddedAt: "2024-01-01 00:00:00"},
			want:   []string{"playlist_id", "track_id", "position", "added_at", "added_by"},
		},
		{
			name:   "audio features keep only present values",
			record: AudioFeatures{TrackID: "t1", Energy: &energy},
			want:   []string{"track_id", "energy"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, c := range tc.record.Columns() {
				got = append(got, c.Name)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("columns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if got := KindPlaylistTrack.Table(); got != "playlist_tracks" {
		t.Fatalf("unexpected table %q", got)
	}
	if diff := cmp.Diff([]string{"playlist_id", "track_id"}, KindPlaylistTrack.ConflictKey()); diff != "" {
		t.Fatalf("conflict key mismatch: %s", diff)
	}
	if got := KindAudioFeatures.String(); got != "audioFeatures" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := Kind(99).String(); got != "unknown" {
		t.Fatalf("unexpected name for out of range kind %q", got)
	}
}

func TestValidationError_ListsEveryField(t *testing.T) {
	err := &ValidationError{Kind: KindTrack, ID: "t1", Missing: []string{"name", "duration_ms"}}
	want := `tracks "t1": validation failed: required field missing: name, required field missing: duration_ms`
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %s\nwant %s", err.Error(), want)
	}
}
