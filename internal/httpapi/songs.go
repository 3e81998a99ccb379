// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vpnhouse/songbook/internal/authorizer"
	"github.com/vpnhouse/songbook/internal/catalog"
	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"github.com/vpnhouse/songbook/pkg/xhttp"
	"go.uber.org/zap"
)

type songResponse struct {
	Data    types.Song         `json:"data"`
	Artists []types.SongArtist `json:"artists"`
}

type updateResponse struct {
	Message           string      `json:"message"`
	UpdatedAttributes *types.Song `json:"updatedAttributes"`
}

func parseSongID(value string, field string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, xerror.EInvalidField("Invalid song Id", field, err)
	}
	return id, nil
}

func principalField(r *http.Request) zap.Field {
	p, _ := authorizer.PrincipalFromContext(r.Context())
	return zap.String("principal", p.ID)
}

// ListSongs implements GET method on /songs endpoint
func (api *SongbookAPI) ListSongs(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		songs, err := api.catalog.ListSongs(r.Context())
		if err != nil {
			return nil, err
		}
		if songs == nil {
			songs = []types.Song{}
		}
		return dataResponse{Data: songs}, nil
	})
}

// AddSong implements POST method on /songs endpoint
func (api *SongbookAPI) AddSong(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		var song types.Song
		if err := xhttp.DecodeJSON(r, &song); err != nil {
			return nil, err
		}

		added, err := api.catalog.AddSong(r.Context(), song)
		if err != nil {
			return nil, err
		}

		zap.L().Info("song added", zap.Int("id", added.ID), principalField(r))
		return dataResponse{Data: added}, nil
	})
}

// GetSong implements GET method on /songs/{songId} endpoint
func (api *SongbookAPI) GetSong(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		id, err := parseSongID(chi.URLParam(r, "songId"), "songId")
		if err != nil {
			return nil, err
		}

		query := r.URL.Query()
		opts := catalog.SongOptions{
			Language:    query.Get("language"),
			WithArtists: query.Get("artists") == "true",
		}
		view, err := api.catalog.Song(r.Context(), id, opts)
		if err != nil {
			return nil, err
		}

		if opts.WithArtists {
			return songResponse{Data: view.Song, Artists: view.Artists}, nil
		}
		return dataResponse{Data: view.Song}, nil
	})
}

// UpdateSong implements PUT method on /songs/{songId} endpoint.
// With the language query parameter the title is translated,
// otherwise the body holds a partial update.
func (api *SongbookAPI) UpdateSong(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		id, err := parseSongID(chi.URLParam(r, "songId"), "songId")
		if err != nil {
			return nil, err
		}

		if language := r.URL.Query().Get("language"); len(language) > 0 {
			song, err := api.catalog.TranslateSong(r.Context(), id, language)
			if err != nil {
				return nil, err
			}
			return dataResponse{Data: song}, nil
		}

		var body map[string]json.RawMessage
		if r.Body == nil || r.Body == http.NoBody {
			return nil, xerror.EInvalidArgument("Invalid request body", nil)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
			return nil, xerror.EInvalidArgument("Invalid request body", err)
		}

		song, err := api.catalog.UpdateSong(r.Context(), id, body)
		if err != nil {
			return nil, err
		}

		zap.L().Info("song updated", zap.Int("id", id), principalField(r))
		return updateResponse{
			Message:           fmt.Sprintf("Song with ID %d updated successfully", id),
			UpdatedAttributes: song,
		}, nil
	})
}

// DeleteSong implements DELETE method on /songs/{songId} endpoint
func (api *SongbookAPI) DeleteSong(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		id, err := parseSongID(chi.URLParam(r, "songId"), "songId")
		if err != nil {
			return nil, err
		}

		if err := api.catalog.DeleteSong(r.Context(), id); err != nil {
			return nil, err
		}

		zap.L().Info("song deleted", zap.Int("id", id), principalField(r))
		return messageResponse{Message: fmt.Sprintf("Song with ID %d deleted successfully", id)}, nil
	})
}

// SongArtists implements GET method on /songs/artists endpoint
func (api *SongbookAPI) SongArtists(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		params := r.URL.Query()
		if !params.Has("songId") {
			return nil, xerror.EInvalidField("Missing query parameters", "songId", nil)
		}

		id, err := parseSongID(params.Get("songId"), "songId")
		if err != nil {
			return nil, err
		}

		query := types.ArtistQuery{SongID: id}
		if params.Has("roleName") {
			role := params.Get("roleName")
			query.RoleName = &role
		}
		if params.Has("artistName") {
			name := params.Get("artistName")
			query.ArtistName = &name
		}

		artists, err := api.catalog.Artists(r.Context(), query)
		if err != nil {
			return nil, err
		}
		return dataResponse{Data: artists}, nil
	})
}
