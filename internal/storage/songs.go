// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

const songColumns = `id, title, artist, album, genre, release_date, duration, popularity, translation_cache`

// songColumn maps JSON field names onto table columns.
var songColumn = map[string]string{
	types.FieldTitle:       "title",
	types.FieldArtist:      "artist",
	types.FieldAlbum:       "album",
	types.FieldGenre:       "genre",
	types.FieldReleaseDate: "release_date",
	types.FieldDuration:    "duration",
	types.FieldPopularity:  "popularity",
}

type songRow struct {
	ID               int     `db:"id"`
	Title            string  `db:"title"`
	Artist           string  `db:"artist"`
	Album            string  `db:"album"`
	Genre            string  `db:"genre"`
	ReleaseDate      string  `db:"release_date"`
	Duration         int     `db:"duration"`
	Popularity       float64 `db:"popularity"`
	TranslationCache string  `db:"translation_cache"`
}

func toRow(song types.Song) (songRow, error) {
	genre := song.Genre
	if genre == nil {
		genre = []string{}
	}
	genreJSON, err := json.Marshal(genre)
	if err != nil {
		return songRow{}, err
	}

	cache := song.TranslationCache
	if cache == nil {
		cache = map[string]types.Translation{}
	}
	cacheJSON, err := json.Marshal(cache)
	if err != nil {
		return songRow{}, err
	}

	return songRow{
		ID:               song.ID,
		Title:            song.Title,
		Artist:           song.Artist,
		Album:            song.Album,
		Genre:            string(genreJSON),
		ReleaseDate:      song.ReleaseDate,
		Duration:         song.Duration,
		Popularity:       song.Popularity,
		TranslationCache: string(cacheJSON),
	}, nil
}

func (r songRow) song() (types.Song, error) {
	song := types.Song{
		ID:          r.ID,
		Title:       r.Title,
		Artist:      r.Artist,
		Album:       r.Album,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
		Popularity:  r.Popularity,
	}

	if err := json.Unmarshal([]byte(r.Genre), &song.Genre); err != nil {
		return types.Song{}, err
	}
	if err := json.Unmarshal([]byte(r.TranslationCache), &song.TranslationCache); err != nil {
		return types.Song{}, err
	}
	if len(song.TranslationCache) == 0 {
		song.TranslationCache = nil
	}
	return song, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func (storage *Storage) ListSongs(ctx context.Context) ([]types.Song, error) {
	var rows []songRow
	err := storage.db.SelectContext(ctx, &rows, `SELECT `+songColumns+` FROM songs ORDER BY id`)
	if err != nil {
		return nil, xerror.EStorageError("can't list songs", err)
	}

	songs := make([]types.Song, 0, len(rows))
	for _, r := range rows {
		s, err := r.song()
		if err != nil {
			// We must ensure database integrity
			zap.L().Error("skipping malformed song", zap.Int("id", r.ID), zap.Error(err))
			continue
		}
		songs = append(songs, s)
	}
	return songs, nil
}

func (storage *Storage) GetSong(ctx context.Context, id int) (*types.Song, error) {
	var r songRow
	err := storage.db.GetContext(ctx, &r, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
		}
		return nil, xerror.EStorageError("can't get song", err, zap.Int("id", id))
	}

	song, err := r.song()
	if err != nil {
		return nil, xerror.EStorageError("malformed song record", err, zap.Int("id", id))
	}
	return &song, nil
}

func (storage *Storage) PutSong(ctx context.Context, song types.Song) error {
	row, err := toRow(song)
	if err != nil {
		return xerror.EInternalError("can't encode song", err)
	}

	query := `
		INSERT INTO
			songs(` + songColumns + `)
		VALUES(:id, :title, :artist, :album, :genre, :release_date, :duration, :popularity, :translation_cache)
	`
	if _, err := storage.db.NamedExecContext(ctx, query, row); err != nil {
		if isConstraintViolation(err) {
			return xerror.EExists("song already exists", nil, zap.Int("id", song.ID))
		}
		return xerror.EStorageError("can't insert song", err, zap.Int("id", song.ID))
	}
	return nil
}

func (storage *Storage) PutSongs(ctx context.Context, songs []types.Song) error {
	tx, err := storage.db.BeginTxx(ctx, nil)
	if err != nil {
		return xerror.EStorageError("can't begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO
			songs(` + songColumns + `)
		VALUES(:id, :title, :artist, :album, :genre, :release_date, :duration, :popularity, :translation_cache)
	`
	for _, song := range songs {
		row, err := toRow(song)
		if err != nil {
			return xerror.EInternalError("can't encode song", err, zap.Int("id", song.ID))
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return xerror.EStorageError("can't write song", err, zap.Int("id", song.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return xerror.EStorageError("can't commit songs", err)
	}
	return nil
}

func (storage *Storage) UpdateSong(ctx context.Context, id int, fields map[string]interface{}) (*types.Song, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	args := map[string]interface{}{"id": id}
	assignments := make([]string, 0, len(names))
	for _, name := range names {
		column, ok := songColumn[name]
		if !ok {
			return nil, xerror.EInvalidField("field can not be updated", name, nil)
		}

		value := fields[name]
		if name == types.FieldGenre {
			bs, err := json.Marshal(value)
			if err != nil {
				return nil, xerror.EInvalidField("invalid genre", name, err)
			}
			value = string(bs)
		}

		args[column] = value
		assignments = append(assignments, column+" = :"+column)
	}

	if len(assignments) == 0 {
		return nil, xerror.EInvalidArgument("No valid fields to update", nil)
	}

	query := `UPDATE songs SET ` + strings.Join(assignments, ", ") + ` WHERE id = :id`
	result, err := storage.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return nil, xerror.EStorageError("can't update song", err, zap.Int("id", id))
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
	}

	return storage.GetSong(ctx, id)
}

func (storage *Storage) DeleteSong(ctx context.Context, id int) error {
	if _, err := storage.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id); err != nil {
		return xerror.EStorageError("can't delete song", err, zap.Int("id", id))
	}
	return nil
}

func (storage *Storage) SetTranslations(ctx context.Context, id int, translations map[string]types.Translation) error {
	bs, err := json.Marshal(translations)
	if err != nil {
		return xerror.EInternalError("can't encode translations", err)
	}

	result, err := storage.db.ExecContext(ctx, `UPDATE songs SET translation_cache = ? WHERE id = ?`, string(bs), id)
	if err != nil {
		return xerror.EStorageError("can't store translations", err, zap.Int("id", id))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
	}
	return nil
}
