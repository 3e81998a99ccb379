// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/validator"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

type SongOptions struct {
	// Language translates the title when set.
	Language    string
	WithArtists bool
}

type SongView struct {
	Song    types.Song
	Artists []types.SongArtist
}

func (s *Service) ListSongs(ctx context.Context) ([]types.Song, error) {
	return s.store.ListSongs(ctx)
}

func (s *Service) Song(ctx context.Context, id int, opts SongOptions) (*SongView, error) {
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &SongView{Song: *song}
	if len(opts.Language) > 0 {
		view.Song, err = s.translate(ctx, song, opts.Language)
		if err != nil {
			return nil, err
		}
	}

	if opts.WithArtists {
		view.Artists, err = s.store.QueryArtists(ctx, types.ArtistQuery{SongID: id})
		if err != nil {
			return nil, err
		}
		if view.Artists == nil {
			view.Artists = []types.SongArtist{}
		}
	}

	return view, nil
}

// TranslateSong returns the song titled in the given language.
func (s *Service) TranslateSong(ctx context.Context, id int, language string) (*types.Song, error) {
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		return nil, err
	}

	translated, err := s.translate(ctx, song, language)
	if err != nil {
		return nil, err
	}
	return &translated, nil
}

func (s *Service) translate(ctx context.Context, song *types.Song, language string) (types.Song, error) {
	if !validator.IsLanguage(language) {
		return types.Song{}, xerror.EInvalidField("unsupported language code", "language", nil, zap.String("language", language))
	}

	if _, ok := song.TranslationCache[language]; ok {
		return song.Translated(language), nil
	}

	title, err := s.translator.Translate(ctx, song.Title, SourceLanguage, language)
	if err != nil {
		return types.Song{}, err
	}

	cache := make(map[string]types.Translation, len(song.TranslationCache)+1)
	for lang, t := range song.TranslationCache {
		cache[lang] = t
	}
	cache[language] = types.Translation{Title: title}

	if err := s.store.SetTranslations(ctx, song.ID, cache); err != nil {
		return types.Song{}, err
	}

	zap.L().Debug("song title translated",
		zap.Int("id", song.ID),
		zap.String("language", language),
		zap.String("title", title))

	song.TranslationCache = cache
	return song.Translated(language), nil
}

func (s *Service) AddSong(ctx context.Context, song types.Song) (*types.Song, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}

	// translations are produced on demand only
	song.TranslationCache = nil
	if err := s.store.PutSong(ctx, song); err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *Service) DeleteSong(ctx context.Context, id int) error {
	return s.store.DeleteSong(ctx, id)
}

type fieldDecoder func(raw json.RawMessage) (interface{}, error)

func decodeAs[T any](check func(T) bool) fieldDecoder {
	return func(raw json.RawMessage) (interface{}, error) {
		if string(raw) == "null" {
			return nil, fmt.Errorf("null value")
		}

		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if check != nil && !check(v) {
			return nil, fmt.Errorf("value out of range")
		}
		return v, nil
	}
}

// updatableFields lists song fields a client may change, with their decoders.
var updatableFields = map[string]fieldDecoder{
	types.FieldTitle:       decodeAs[string](nil),
	types.FieldArtist:      decodeAs[string](nil),
	types.FieldAlbum:       decodeAs[string](nil),
	types.FieldGenre:       decodeAs[[]string](nil),
	types.FieldReleaseDate: decodeAs[string](nil),
	types.FieldDuration:    decodeAs[int](func(v int) bool { return v >= 0 }),
	types.FieldPopularity:  decodeAs[float64](nil),
}

// ParseSongFields keeps the known song fields of a partial update.
// Unknown fields are ignored, a known field holding a value of the wrong type fails.
func ParseSongFields(body map[string]json.RawMessage) (map[string]interface{}, error) {
	names := make([]string, 0, len(body))
	for name := range body {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]interface{})
	for _, name := range names {
		decode, ok := updatableFields[name]
		if !ok {
			continue
		}

		v, err := decode(body[name])
		if err != nil {
			return nil, xerror.EInvalidField(fmt.Sprintf("Invalid value for field %s", name), name, err)
		}
		fields[name] = v
	}

	if len(fields) == 0 {
		return nil, xerror.EInvalidArgument("No valid fields to update", nil)
	}
	return fields, nil
}

func (s *Service) UpdateSong(ctx context.Context, id int, body map[string]json.RawMessage) (*types.Song, error) {
	fields, err := ParseSongFields(body)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateSong(ctx, id, fields)
}
