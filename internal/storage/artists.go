package storage

import (
	"context"

	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

const artistColumns = `song_id, artist_name, role_name, role_description`

func (storage *Storage) QueryArtists(ctx context.Context, query types.ArtistQuery) ([]types.SongArtist, error) {
	q := `SELECT ` + artistColumns + ` FROM song_artists WHERE song_id = ?`
	args := []interface{}{query.SongID}

	// prefix matches are case-sensitive
	switch {
	case query.RoleName != nil:
		q += ` AND substr(role_name, 1, length(?)) = ? ORDER BY role_name, artist_name`
		args = append(args, *query.RoleName, *query.RoleName)
	case query.ArtistName != nil:
		q += ` AND substr(artist_name, 1, length(?)) = ? ORDER BY artist_name`
		args = append(args, *query.ArtistName, *query.ArtistName)
	default:
		q += ` ORDER BY artist_name`
	}

	var artists []types.SongArtist
	if err := storage.db.SelectContext(ctx, &artists, q, args...); err != nil {
		return nil, xerror.EStorageError("can't query song artists", err, zap.Int("song_id", query.SongID))
	}
	return artists, nil
}

func (storage *Storage) PutArtists(ctx context.Context, artists []types.SongArtist) error {
	tx, err := storage.db.BeginTxx(ctx, nil)
	if err != nil {
		return xerror.EStorageError("can't begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO
			song_artists(` + artistColumns + `)
		VALUES(:song_id, :artist_name, :role_name, :role_description)
	`
	for i := range artists {
		if _, err := tx.NamedExecContext(ctx, query, &artists[i]); err != nil {
			return xerror.EStorageError("can't write song artist", err,
				zap.Int("song_id", artists[i].SongID),
				zap.String("artist", artists[i].ArtistName))
		}
	}

	if err := tx.Commit(); err != nil {
		return xerror.EStorageError("can't commit song artists", err)
	}
	return nil
}
