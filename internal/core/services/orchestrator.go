package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/batch"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/dedup"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/normalize"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/ports"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/retry"
	"github.com/ewilliams-labs/playlist-catalog/internal/metrics"
)

const DefaultBatchSize = 100

// Options tunes an Ingestor. Zero values fall back to the defaults.
type Options struct {
	BatchSize  int
	Retry      retry.Policy
	Normalizer normalize.Normalizer
}

// Request names the sources of one run. FeaturesRef is optional.
type Request struct {
	PlaylistRef string
	FeaturesRef string
}

// Ingestor drives a run: it collects unique records per kind, writes them in
// batches with retry and reports a Summary.
type Ingestor struct {
	store   ports.CatalogStore
	loader  ports.SourceLoader
	logger  *zap.Logger
	metrics *metrics.Ingest
	opts    Options
	now     func() time.Time
}

// NewIngestor constructs an Ingestor. loader may be nil when only Run is
// used.
func NewIngestor(store ports.CatalogStore, loader ports.SourceLoader, logger *zap.Logger, m *metrics.Ingest, opts Options) (*Ingestor, error) {
	if store == nil {
		return nil, errors.New("service: store is required")
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchSize < 1 {
		return nil, fmt.Errorf("service: %w", batch.ErrInvalidSize)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewIngest(nil)
	}
	return &Ingestor{
		store:   store,
		loader:  loader,
		logger:  logger.Named("ingest"),
		metrics: m,
		opts:    opts,
		now:     time.Now,
	}, nil
}

// Ingest loads the referenced sources and runs the pipeline over them.
func (i *Ingestor) Ingest(ctx context.Context, req Request) (Summary, error) {
	if i.loader == nil {
		return Summary{}, errors.New("service: no source loader configured")
	}
	doc, err := i.loader.LoadPlaylists(ctx, req.PlaylistRef)
	if err != nil {
		return Summary{}, fmt.Errorf("service: failed to load playlists: %w", err)
	}

	var features *domain.AudioFeaturesDocument
	if req.FeaturesRef != "" {
		f, err := i.loader.LoadAudioFeatures(ctx, req.FeaturesRef)
		if err != nil {
			return Summary{}, fmt.Errorf("service: failed to load audio features: %w", err)
		}
		features = &f
	}
	return i.Run(ctx, doc, features)
}

type step struct {
	kind    domain.Kind
	collect func() ([]domain.Record, error)
}

// Run ingests an already loaded document. Kinds are written in
// domain.IngestOrder; audio features only when features is non-nil. The
// first error stops the run and the partial summary is returned with it.
func (i *Ingestor) Run(ctx context.Context, doc domain.SourceDocument, features *domain.AudioFeaturesDocument) (sum Summary, err error) {
	sum = Summary{RunID: uuid.New(), StartedAt: i.now()}
	log := i.logger.With(zap.String("run_id", sum.RunID.String()))
	log.Info("starting ingestion",
		zap.Int("playlists", len(doc.Playlists)),
		zap.Bool("audio_features", features != nil),
		zap.Int("batch_size", i.opts.BatchSize),
	)

	defer func() {
		sum.FinishedAt = i.now()
		i.metrics.RunDuration.Observe(sum.Duration().Seconds())
		if err != nil {
			i.metrics.Runs.WithLabelValues("failed").Inc()
			log.Error("ingestion failed", append(sum.Fields(), zap.Error(err))...)
			return
		}
		i.metrics.Runs.WithLabelValues("success").Inc()
		log.Info("ingestion completed", sum.Fields()...)
	}()

	for _, st := range i.steps(doc, features, &sum, log) {
		records, err := st.collect()
		if err != nil {
			return sum, fmt.Errorf("service: failed to normalize %s: %w", st.kind, err)
		}
		n, err := i.write(ctx, log, st.kind, records)
		sum.Counts.add(st.kind, n)
		if err != nil {
			return sum, fmt.Errorf("service: failed to write %s: %w", st.kind, err)
		}
		log.Info("processed "+st.kind.String(), zap.Int("count", n))
	}
	return sum, nil
}

func (i *Ingestor) steps(doc domain.SourceDocument, features *domain.AudioFeaturesDocument, sum *Summary, log *zap.Logger) []step {
	n := i.opts.Normalizer
	steps := []step{
		{domain.KindArtist, func() ([]domain.Record, error) {
			rs, err := dedup.FirstSeen(dedup.Artists(doc), normalize.Artist)
			return domain.Records(rs), err
		}},
		{domain.KindAlbum, func() ([]domain.Record, error) {
			rs, err := dedup.FirstSeen(dedup.Albums(doc), normalize.Album)
			return domain.Records(rs), err
		}},
		{domain.KindTrack, func() ([]domain.Record, error) {
			rs, err := dedup.FirstSeen(dedup.Tracks(doc), normalize.Track)
			return domain.Records(rs), err
		}},
		{domain.KindPlaylist, func() ([]domain.Record, error) {
			rs, err := dedup.FirstSeen(dedup.Playlists(doc), normalize.Playlist)
			return domain.Records(rs), err
		}},
		{domain.KindPlaylistTrack, func() ([]domain.Record, error) {
			rs, err := dedup.PlaylistTracks(doc, n.PlaylistTrack)
			return domain.Records(rs), err
		}},
		{domain.KindTrackArtist, func() ([]domain.Record, error) {
			rs, err := dedup.FirstSeen(dedup.TrackArtists(doc), func(ref dedup.TrackArtistRef) (domain.TrackArtist, error) {
				return normalize.TrackArtist(ref.TrackID, ref.Position, ref.Artist)
			})
			return domain.Records(rs), err
		}},
	}
	if features == nil {
		return steps
	}
	return append(steps, step{domain.KindAudioFeatures, func() ([]domain.Record, error) {
		var out []domain.Record
		for _, raw := range features.Features {
			rec, err := normalize.AudioFeatures(raw)
			if err != nil {
				sum.Skipped.add(domain.KindAudioFeatures, 1)
				i.metrics.Skipped.WithLabelValues(domain.KindAudioFeatures.String()).Inc()
				log.Warn("skipping audio features", zap.String("track_id", raw.ID), zap.Error(err))
				continue
			}
			out = append(out, rec)
		}
		return out, nil
	}})
}

// write upserts records in batches. The returned count covers the batches
// committed before any failure.
func (i *Ingestor) write(ctx context.Context, log *zap.Logger, kind domain.Kind, records []domain.Record) (int, error) {
	size := i.opts.BatchSize
	log.Info(fmt.Sprintf("Processing %d items in %d batches of %d", len(records), batch.Count(len(records), size), size),
		zap.String("kind", kind.String()))

	label := kind.String()
	policy := i.opts.Retry
	userNotify := policy.Notify
	policy.Notify = func(attempt int, err error, delay time.Duration) {
		i.metrics.Retries.WithLabelValues(label).Inc()
		log.Warn("batch upsert failed, retrying",
			zap.String("kind", label),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if userNotify != nil {
			userNotify(attempt, err, delay)
		}
	}

	total := batch.Count(len(records), size)
	written := 0
	err := batch.Process(ctx, records, size, func(ctx context.Context, chunk []domain.Record, index int) error {
		log.Debug("processing batch",
			zap.String("kind", label),
			zap.Int("batch", index+1),
			zap.Int("of", total),
			zap.Int("items", len(chunk)),
		)
		started := time.Now()
		n, err := retry.Do(ctx, policy, func(ctx context.Context) (int, error) {
			n, err := i.store.UpsertBatch(ctx, chunk)
			if errors.Is(err, domain.ErrNotConnected) {
				return n, retry.Permanent(err)
			}
			return n, err
		})
		i.metrics.BatchDuration.WithLabelValues(label).Observe(time.Since(started).Seconds())
		if err != nil {
			i.metrics.Batches.WithLabelValues(label, "failed").Inc()
			log.Error("error in batch", zap.String("kind", label), zap.Int("batch", index+1), zap.Error(err))
			return err
		}
		i.metrics.Batches.WithLabelValues(label, "ok").Inc()
		i.metrics.Records.WithLabelValues(label).Add(float64(n))
		written += n
		return nil
	})
	return written, err
}
