package ports

import (
	"context"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// SourceLoader resolves a source reference (a file path or a remote ID list)
// into raw documents. Load failures are returned as *domain.SourceError.
type SourceLoader interface {
	LoadPlaylists(ctx context.Context, ref string) (domain.SourceDocument, error)
	LoadAudioFeatures(ctx context.Context, ref string) (domain.AudioFeaturesDocument, error)
}
