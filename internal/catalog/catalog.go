// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package catalog

import (
	"context"

	"github.com/vpnhouse/songbook/internal/types"
)

// SourceLanguage is the language song titles are stored in.
const SourceLanguage = "en"

// Store persists songs and their artist credits.
// Missing songs are reported as xerror.EEntryNotFoundType errors.
type Store interface {
	ListSongs(ctx context.Context) ([]types.Song, error)
	GetSong(ctx context.Context, id int) (*types.Song, error)
	// PutSong creates a new song, an existing id is an xerror.EExistsType error.
	PutSong(ctx context.Context, song types.Song) error
	// PutSongs writes songs in bulk overwriting existing ones.
	PutSongs(ctx context.Context, songs []types.Song) error
	UpdateSong(ctx context.Context, id int, fields map[string]interface{}) (*types.Song, error)
	DeleteSong(ctx context.Context, id int) error
	SetTranslations(ctx context.Context, id int, translations map[string]types.Translation) error

	QueryArtists(ctx context.Context, query types.ArtistQuery) ([]types.SongArtist, error)
	PutArtists(ctx context.Context, artists []types.SongArtist) error

	Shutdown() error
	Running() bool
}

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type Service struct {
	store      Store
	translator Translator
}

func New(store Store, translator Translator) *Service {
	return &Service{
		store:      store,
		translator: translator,
	}
}

func (s *Service) Shutdown() error {
	return s.store.Shutdown()
}

func (s *Service) Running() bool {
	return s.store.Running()
}
