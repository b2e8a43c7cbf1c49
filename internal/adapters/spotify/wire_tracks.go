package spotify

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// LoadAudioFeatures fetches features for the track IDs in ref, a
// comma-separated list, or for every loaded track when ref is
// FeaturesFromPlaylists. IDs are requested in groups of at most 100;
// tracks without features are left out.
func (c *Client) LoadAudioFeatures(ctx context.Context, ref string) (domain.AudioFeaturesDocument, error) {
	var ids []string
	if ref == FeaturesFromPlaylists {
		ids = c.loadedTracks()
	} else {
		ids = splitRef(ref)
	}
	ids = unique(ids)
	if len(ids) == 0 {
		return domain.AudioFeaturesDocument{}, &domain.SourceError{Path: "spotify:audio-features", Err: errors.New("no track IDs given")}
	}

	var out domain.AudioFeaturesDocument
	for chunk := range slices.Chunk(ids, maxFeatureIDs) {
		q := url.Values{"ids": {strings.Join(chunk, ",")}}
		var doc domain.AudioFeaturesDocument
		if err := c.getJSON(ctx, c.baseURL+audioFeaturesPath+"?"+q.Encode(), &doc); err != nil {
			return domain.AudioFeaturesDocument{}, &domain.SourceError{Path: "spotify:audio-features", Err: err}
		}
		out.Features = append(out.Features, doc.Features...)
	}

	c.logger.Info("fetched audio features",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(out.Features)),
	)
	return out, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
