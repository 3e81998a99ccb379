package catalog

import (
	"context"
	"fmt"

	"github.com/vpnhouse/songbook/internal/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Seed bulk-loads songs and artists. Invalid items are skipped
// and reported together with write failures.
func (s *Service) Seed(ctx context.Context, songs []types.Song, artists []types.SongArtist) error {
	var errs error

	validSongs := make([]types.Song, 0, len(songs))
	for i := range songs {
		if err := songs[i].Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("song #%d: %w", i, err))
			continue
		}
		validSongs = append(validSongs, songs[i])
	}

	validArtists := make([]types.SongArtist, 0, len(artists))
	for i := range artists {
		if err := artists[i].Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("artist #%d: %w", i, err))
			continue
		}
		validArtists = append(validArtists, artists[i])
	}

	if len(validSongs) > 0 {
		errs = multierr.Append(errs, s.store.PutSongs(ctx, validSongs))
	}
	if len(validArtists) > 0 {
		errs = multierr.Append(errs, s.store.PutArtists(ctx, validArtists))
	}

	zap.L().Info("catalog seeded",
		zap.Int("songs", len(validSongs)),
		zap.Int("artists", len(validArtists)),
		zap.Int("errors", len(multierr.Errors(errs))))
	return errs
}
