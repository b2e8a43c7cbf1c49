package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/source"
	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/spotify"
	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/sqlstore"
	"github.com/ewilliams-labs/playlist-catalog/internal/config"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/normalize"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/ports"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/retry"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/services"
	"github.com/ewilliams-labs/playlist-catalog/internal/logging"
	"github.com/ewilliams-labs/playlist-catalog/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type options struct {
	from             string
	features         string
	spotifyPlaylists string
	spotifyFeatures  bool
	configFile       string
}

// NewRootCommand builds the ingest command. Flags override environment and
// config file settings.
func NewRootCommand(stderr io.Writer) *cobra.Command {
	var opts options
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load playlist exports into the catalog database",
		Long: `Reads a playlist export (or fetches playlists from Spotify), normalizes
artists, albums, tracks, playlists and their links, and upserts them in
batches. Audio features are ingested when a features source is given.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.from, "from", "f", "", "path to the playlists JSON export")
	flags.StringVar(&opts.features, "features", "", "path to the audio features JSON export")
	flags.IntP("batch-size", "b", services.DefaultBatchSize, "records per upsert batch")
	flags.StringVar(&opts.spotifyPlaylists, "spotify-playlists", "", "comma-separated Spotify playlist IDs to fetch")
	flags.BoolVar(&opts.spotifyFeatures, "spotify-features", false, "fetch audio features for the fetched Spotify tracks")
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file to read from")
	_ = v.BindPFlag("ingest.batch_size", flags.Lookup("batch-size"))

	cmd.SetErr(stderr)
	return cmd
}

func (o options) validate() error {
	switch {
	case o.from == "" && o.spotifyPlaylists == "":
		return errors.New("one of --from or --spotify-playlists is required")
	case o.from != "" && o.spotifyPlaylists != "":
		return errors.New("--from and --spotify-playlists are mutually exclusive")
	case o.features != "" && o.spotifyFeatures:
		return errors.New("--features and --spotify-features are mutually exclusive")
	case o.spotifyFeatures && o.spotifyPlaylists == "":
		return errors.New("--spotify-features requires --spotify-playlists")
	}
	return nil
}

func run(ctx context.Context, v *viper.Viper, opts options) error {
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlstore.New(storeConfig(cfg), logger)
	if err != nil {
		return err
	}
	if err := store.Connect(ctx); err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer store.Close()

	policy := retry.Policy{MaxAttempts: cfg.Ingest.MaxAttempts, BaseDelay: cfg.Ingest.BaseDelay}
	loader, req := sources(ctx, cfg, opts, policy, logger)

	registry := prometheus.NewRegistry()
	ingestor, err := services.NewIngestor(store, loader, logger, metrics.NewIngest(registry), services.Options{
		BatchSize:  cfg.Ingest.BatchSize,
		Retry:      policy,
		Normalizer: normalize.Normalizer{Location: cfg.Location()},
	})
	if err != nil {
		return err
	}

	_, runErr := ingestor.Ingest(ctx, req)
	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, cfg.Metrics.Job, registry); err != nil {
			logger.Warn("failed to push metrics", zap.String("url", url), zap.Error(err))
		}
	}
	return runErr
}

// sourceSet reads playlists and audio features from different loaders.
type sourceSet struct {
	playlists ports.SourceLoader
	features  ports.SourceLoader
}

func (s sourceSet) LoadPlaylists(ctx context.Context, ref string) (domain.SourceDocument, error) {
	return s.playlists.LoadPlaylists(ctx, ref)
}

func (s sourceSet) LoadAudioFeatures(ctx context.Context, ref string) (domain.AudioFeaturesDocument, error) {
	if s.features == nil {
		return domain.AudioFeaturesDocument{}, fmt.Errorf("no audio features source configured for %q", ref)
	}
	return s.features.LoadAudioFeatures(ctx, ref)
}

func sources(ctx context.Context, cfg *config.Config, opts options, policy retry.Policy, logger *zap.Logger) (ports.SourceLoader, services.Request) {
	var (
		set sourceSet
		req services.Request
	)
	files := source.FileLoader{}

	if opts.spotifyPlaylists != "" {
		client := spotify.NewClient(
			spotify.NewHTTPClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.TokenURL),
			cfg.Spotify.BaseURL,
			spotify.WithRetry(policy),
			spotify.WithLogger(logger),
		)
		set.playlists = client
		req.PlaylistRef = opts.spotifyPlaylists
		if opts.spotifyFeatures {
			set.features = client
			req.FeaturesRef = spotify.FeaturesFromPlaylists
		}
	} else {
		set.playlists = files
		req.PlaylistRef = opts.from
	}

	if opts.features != "" {
		set.features = files
		req.FeaturesRef = opts.features
	}
	return set, req
}

// storeConfig maps the database settings onto the store.
func storeConfig(cfg *config.Config) sqlstore.Config {
	d := cfg.Database
	return sqlstore.Config{
		Driver:       d.Driver,
		Path:         d.Path,
		DSN:          d.DSN,
		Host:         d.Host,
		Port:         d.Port,
		User:         d.User,
		Password:     d.Password,
		Name:         d.Name,
		SSLMode:      d.SSLMode,
		MaxOpenConns: d.MaxOpenConns,
	}
}
