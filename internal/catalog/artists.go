package catalog

import (
	"context"

	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
)

func (s *Service) Artists(ctx context.Context, query types.ArtistQuery) ([]types.SongArtist, error) {
	if query.SongID <= 0 {
		return nil, xerror.EInvalidField("song id must be positive", "songId", nil)
	}

	artists, err := s.store.QueryArtists(ctx, query)
	if err != nil {
		return nil, err
	}
	if artists == nil {
		artists = []types.SongArtist{}
	}
	return artists, nil
}
