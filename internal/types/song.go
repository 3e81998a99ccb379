// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package types

import (
	"strings"

	"github.com/vpnhouse/songbook/pkg/validator"
	"github.com/vpnhouse/songbook/pkg/xerror"
)

// Song field names as they appear in JSON payloads.
const (
	FieldID               = "id"
	FieldTitle            = "title"
	FieldArtist           = "artist"
	FieldAlbum            = "album"
	FieldGenre            = "genre"
	FieldReleaseDate      = "release_date"
	FieldDuration         = "duration"
	FieldPopularity       = "popularity"
	FieldTranslationCache = "translationCache"
)

type Translation struct {
	Title string `json:"title" dynamodbav:"title"`
}

type Song struct {
	ID          int      `json:"id" dynamodbav:"id"`
	Title       string   `json:"title" dynamodbav:"title"`
	Artist      string   `json:"artist" dynamodbav:"artist"`
	Album       string   `json:"album" dynamodbav:"album"`
	Genre       []string `json:"genre" dynamodbav:"genre"`
	ReleaseDate string   `json:"release_date" dynamodbav:"release_date"`
	// Duration in seconds
	Duration   int     `json:"duration" dynamodbav:"duration"`
	Popularity float64 `json:"popularity" dynamodbav:"popularity"`

	TranslationCache map[string]Translation `json:"translationCache,omitempty" dynamodbav:"translationCache,omitempty"`
}

// Validate checks a song before it is stored.
func (s *Song) Validate() error {
	if s == nil {
		return xerror.EInvalidArgument("empty song", nil)
	}

	if s.ID <= 0 {
		return xerror.EInvalidField("song id must be positive", FieldID, nil)
	}

	if len(strings.TrimSpace(s.Title)) == 0 {
		return xerror.EInvalidField("empty song title", FieldTitle, nil)
	}

	if len(s.ReleaseDate) > 0 && !validator.IsDate(s.ReleaseDate) {
		return xerror.EInvalidField("release date must be formatted as YYYY-MM-DD", FieldReleaseDate, nil)
	}

	if s.Duration < 0 {
		return xerror.EInvalidField("negative duration", FieldDuration, nil)
	}

	return nil
}

// Translated returns a copy of the song titled in the given language,
// the original title is kept when no translation is cached.
func (s Song) Translated(language string) Song {
	if t, ok := s.TranslationCache[language]; ok && len(t.Title) > 0 {
		s.Title = t.Title
	}
	return s
}
