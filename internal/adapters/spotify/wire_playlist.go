package spotify

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/worker"
)

// LoadPlaylists fetches each playlist in ref, a comma-separated list of
// playlist IDs, following the track pages until the last one. Playlists are
// fetched concurrently but returned in the order given.
func (c *Client) LoadPlaylists(ctx context.Context, ref string) (domain.SourceDocument, error) {
	ids := splitRef(ref)
	if len(ids) == 0 {
		return domain.SourceDocument{}, &domain.SourceError{Path: "spotify:playlists", Err: errors.New("no playlist IDs given")}
	}

	playlists, err := worker.Map(ctx, c.workers, ids, func(ctx context.Context, id string) (domain.RawPlaylist, error) {
		p, err := c.fetchPlaylist(ctx, id)
		if err != nil {
			return domain.RawPlaylist{}, &domain.SourceError{Path: "spotify:playlist:" + id, Err: err}
		}
		return p, nil
	})
	if err != nil {
		var srcErr *domain.SourceError
		if errors.As(err, &srcErr) {
			return domain.SourceDocument{}, err
		}
		return domain.SourceDocument{}, &domain.SourceError{Path: "spotify:playlists", Err: err}
	}

	for _, p := range playlists {
		trackIDs := make([]string, 0, len(p.Tracks.Items))
		for _, item := range p.Tracks.Items {
			if tid := item.TrackID(); tid != "" {
				trackIDs = append(trackIDs, tid)
			}
		}
		c.rememberTracks(trackIDs)
	}
	return domain.SourceDocument{Playlists: playlists}, nil
}

func (c *Client) fetchPlaylist(ctx context.Context, id string) (domain.RawPlaylist, error) {
	var p domain.RawPlaylist
	if err := c.getJSON(ctx, c.baseURL+playlistPath+url.PathEscape(id), &p); err != nil {
		return domain.RawPlaylist{}, err
	}

	pages := 1
	for next := p.Tracks.Next; next != nil && *next != ""; pages++ {
		var page domain.RawTrackPage
		if err := c.getJSON(ctx, *next, &page); err != nil {
			return domain.RawPlaylist{}, errors.Wrapf(err, "page %d", pages+1)
		}
		p.Tracks.Items = append(p.Tracks.Items, page.Items...)
		next = page.Next
	}
	p.Tracks.Next = nil

	c.logger.Info("fetched playlist",
		zap.String("playlist_id", id),
		zap.Int("items", len(p.Tracks.Items)),
		zap.Int("pages", pages),
	)
	return p, nil
}
