// Package source reads playlist and audio-feature exports from disk.
package source

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/ports"
)

// FileLoader treats every reference as a path to a JSON document.
type FileLoader struct{}

var _ ports.SourceLoader = FileLoader{}

func (FileLoader) LoadPlaylists(ctx context.Context, path string) (domain.SourceDocument, error) {
	var doc domain.SourceDocument
	if err := readJSON(ctx, path, &doc); err != nil {
		return domain.SourceDocument{}, err
	}
	return doc, nil
}

func (FileLoader) LoadAudioFeatures(ctx context.Context, path string) (domain.AudioFeaturesDocument, error) {
	var doc domain.AudioFeaturesDocument
	if err := readJSON(ctx, path, &doc); err != nil {
		return domain.AudioFeaturesDocument{}, err
	}
	return doc, nil
}

func readJSON(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return &domain.SourceError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &domain.SourceError{Path: path, Err: errors.Wrap(err, "read")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.SourceError{Path: path, Err: errors.Wrap(err, "decode")}
	}
	return nil
}
