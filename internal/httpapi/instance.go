// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/vpnhouse/songbook/internal/authorizer"
	"github.com/vpnhouse/songbook/internal/catalog"
	"github.com/vpnhouse/songbook/internal/runtime"
)

type IdentityProvider interface {
	SignUp(ctx context.Context, username, password, email string) error
	ConfirmSignUp(ctx context.Context, username, code string) error
	SignIn(ctx context.Context, username, password string) (string, error)
}

type SongbookAPI struct {
	runtime    *runtime.SongbookRuntime
	catalog    *catalog.Service
	identity   IdentityProvider
	authorizer *authorizer.Authorizer
	arnPrefix  string
	running    bool
}

func NewSongbookHandlers(
	runtime *runtime.SongbookRuntime,
	catalog *catalog.Service,
	identity IdentityProvider,
	authorizer *authorizer.Authorizer,
	arnPrefix string,
) *SongbookAPI {
	return &SongbookAPI{
		runtime:    runtime,
		catalog:    catalog,
		identity:   identity,
		authorizer: authorizer,
		arnPrefix:  arnPrefix,
		running:    true,
	}
}

func (api *SongbookAPI) Shutdown() error {
	api.running = false
	return nil
}

func (api *SongbookAPI) Running() bool {
	return api.running
}

func (api *SongbookAPI) RegisterHandlers(r chi.Router) {
	protected := api.authorizer.Middleware(api.arnPrefix)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", api.SignUp)
		r.Post("/confirm_signup", api.ConfirmSignUp)
		r.Post("/signin", api.SignIn)
		r.Post("/signout", api.SignOut)
	})

	r.Route("/songs", func(r chi.Router) {
		r.Get("/", api.ListSongs)
		r.With(protected).Post("/", api.AddSong)
		r.Get("/artists", api.SongArtists)
		r.Get("/{songId}", api.GetSong)
		r.With(protected).Put("/{songId}", api.UpdateSong)
		r.With(protected).Delete("/{songId}", api.DeleteSong)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/authorizer", api.Authorize)
		r.With(protected).Post("/reload", api.Reload)
		r.With(protected).Put("/log_level", api.UpdateLogLevel)
	})
}

type dataResponse struct {
	Data interface{} `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}
