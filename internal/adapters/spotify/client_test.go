package spotify_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/spotify"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/retry"
)

func fastRetry(attempts int) spotify.Option {
	return spotify.WithRetry(retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond})
}

func TestClient_LoadPlaylistsFollowsPages(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/playlists/p1" && r.URL.Query().Get("offset") == "":
			fmt.Fprintf(w, `{
				"id": "p1", "name": "Road Trip", "owner": {"id": "u1"}, "snapshot_id": "s1",
				"tracks": {
					"items": [{"added_at": "2024-01-02T03:04:05Z", "added_by": {"id": "u1"},
						"track": {"id": "t1", "name": "One", "artists": [{"id": "a1", "name": "A"}]}}],
					"next": "%s/playlists/p1/tracks?offset=1",
					"total": 2
				}
			}`, ts.URL)
		case r.URL.Path == "/playlists/p1/tracks" && r.URL.Query().Get("offset") == "1":
			fmt.Fprint(w, `{"items": [{"added_at": "2024-01-03T00:00:00Z",
				"track": {"id": "t2", "name": "Two"}}], "next": null, "total": 2}`)
		default:
			t.Errorf("unexpected request %s", r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(1))
	doc, err := client.LoadPlaylists(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, doc.Playlists, 1)
	p := doc.Playlists[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Road Trip", *p.Name)
	assert.Nil(t, p.Tracks.Next)
	require.Len(t, p.Tracks.Items, 2)
	assert.Equal(t, "t1", p.Tracks.Items[0].TrackID())
	assert.Equal(t, "t2", p.Tracks.Items[1].TrackID())
}

func TestClient_LoadAudioFeaturesChunksIDs(t *testing.T) {
	var requests [][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio-features", r.URL.Path)
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		requests = append(requests, ids)

		entries := make([]string, len(ids))
		for i, id := range ids {
			if id == "t7" {
				entries[i] = "null"
				continue
			}
			entries[i] = fmt.Sprintf(`{"id": %q, "energy": 0.5}`, id)
		}
		fmt.Fprintf(w, `{"audio_features": [%s]}`, strings.Join(entries, ","))
	}))
	defer ts.Close()

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}
	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(1))
	doc, err := client.LoadAudioFeatures(context.Background(), strings.Join(ids, ","))
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Len(t, requests[0], 100)
	assert.Len(t, requests[1], 50)
	assert.Len(t, doc.Features, 149)
}

func TestClient_FeaturesFromLoadedPlaylists(t *testing.T) {
	var asked string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/audio-features" {
			asked = r.URL.Query().Get("ids")
			fmt.Fprint(w, `{"audio_features": [{"id": "t1", "energy": 0.9}]}`)
			return
		}
		fmt.Fprint(w, `{"id": "p1", "tracks": {"items": [
			{"track": {"id": "t1"}}, {"track": null}, {"track": {"id": "t1"}}]}}`)
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(1))
	_, err := client.LoadPlaylists(context.Background(), "p1")
	require.NoError(t, err)

	doc, err := client.LoadAudioFeatures(context.Background(), spotify.FeaturesFromPlaylists)
	require.NoError(t, err)
	assert.Equal(t, "t1", asked)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, 0.9, *doc.Features[0].Energy)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"id": "p1", "tracks": {"items": []}}`)
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(3))
	doc, err := client.LoadPlaylists(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, doc.Playlists, 1)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(3))
	_, err := client.LoadPlaylists(context.Background(), "missing")
	require.Error(t, err)

	var srcErr *domain.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "spotify:playlist:missing", srcErr.Path)

	var statusErr *spotify.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_EmptyReference(t *testing.T) {
	client := spotify.NewClient(nil, "http://127.0.0.1:0")

	_, err := client.LoadPlaylists(context.Background(), " , ")
	var srcErr *domain.SourceError
	assert.True(t, errors.As(err, &srcErr))

	_, err = client.LoadAudioFeatures(context.Background(), spotify.FeaturesFromPlaylists)
	assert.True(t, errors.As(err, &srcErr))
}

func TestClient_LoadPlaylistsKeepsOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/playlists/")
		if id == "slow" {
			time.Sleep(20 * time.Millisecond)
		}
		fmt.Fprintf(w, `{"id": %q, "tracks": {"items": [{"track": {"id": "t-%s"}}]}}`, id, id)
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL, fastRetry(1), spotify.WithConcurrency(3))
	doc, err := client.LoadPlaylists(context.Background(), "slow,b,c")
	require.NoError(t, err)

	var got []string
	for _, p := range doc.Playlists {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"slow", "b", "c"}, got)
}
