// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package rapidoc

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vpnhouse/songbook/pkg/version"
	"go.uber.org/zap"
)

//go:embed docs
var docs embed.FS

const indexFile = "docs/index.html"

// RegisterHandlers serves the API schema under /schemas/ and
// the interactive documentation page on /rapidoc/.
func RegisterHandlers(r chi.Router) {
	zap.L().Info("registering rapidoc handlers", zap.String("version", version.GetVersion()))

	index, err := docs.ReadFile(indexFile)
	if err != nil {
		zap.L().Error("rapidoc seems misconfigured", zap.String("path", indexFile), zap.Error(err))
		return
	}

	r.Handle("/schemas/*", http.StripPrefix("/schemas/", http.FileServer(http.FS(schemas()))))
	r.HandleFunc("/rapidoc/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(index)
	})
}
