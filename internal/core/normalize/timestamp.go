package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// TimestampLayout is the storage format of normalized timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

var inputLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// maxEpochMillis is the largest magnitude of a representable instant in
// epoch milliseconds (100,000,000 days).
const maxEpochMillis = 8.64e15

// Normalizer holds the clock and location used for timestamps. The zero
// value uses time.Now and UTC.
type Normalizer struct {
	Now      func() time.Time
	Location *time.Location
}

func (n Normalizer) loc() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

func (n Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// Timestamp renders raw as YYYY-MM-DD HH:MM:SS in the configured location.
// Strings in RFC 3339 or plain date/time forms and numbers in epoch
// milliseconds are accepted; anything else, including an absent value or
// an instant outside years 0000-9999, yields the current time.
func (n Normalizer) Timestamp(raw json.RawMessage) string {
	if t, ok := n.parse(raw); ok {
		if t = t.In(n.loc()); t.Year() >= 0 && t.Year() <= 9999 {
			return t.Format(TimestampLayout)
		}
	}
	return n.now().In(n.loc()).Format(TimestampLayout)
}

func (n Normalizer) parse(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range inputLayouts {
			if t, err := time.ParseInLocation(layout, s, n.loc()); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, false
	}
	f, err := ms.Float64()
	if err != nil || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)), true
}

// PlaylistTrack builds the link row for the item at index within a playlist.
func (n Normalizer) PlaylistTrack(playlistID string, index int, item domain.RawPlaylistItem) (domain.PlaylistTrack, error) {
	trackID := item.TrackID()
	err := Require(domain.KindPlaylistTrack, trackID, []domain.Column{
		{Name: "playlist_id", Value: playlistID},
		{Name: "track_id", Value: trackID},
	}, "playlist_id", "track_id")
	if err != nil {
		return domain.PlaylistTrack{}, err
	}

	var addedBy *string
	if item.AddedBy != nil {
		addedBy = optionalID(item.AddedBy.ID)
	}
	return domain.PlaylistTrack{
		PlaylistID: strings.TrimSpace(playlistID),
		TrackID:    strings.TrimSpace(trackID),
		Position:   index,
		AddedAt:    n.Timestamp(item.AddedAt),
		AddedBy:    addedBy,
	}, nil
}
