// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"net/http"

	"github.com/vpnhouse/songbook/pkg/control"
	"github.com/vpnhouse/songbook/pkg/xhttp"
	"go.uber.org/zap"
)

type logLevelRequest struct {
	Level string `json:"level" valid:"in(debug|info|warn|error),required"`
}

// Reload implements POST method on /api/reload endpoint,
// all services are restarted once the response is sent.
func (api *SongbookAPI) Reload(w http.ResponseWriter, r *http.Request) {
	// ask the default wrapper to write OK string to the client conn
	xhttp.JSONResponse(w, func() (interface{}, error) { return nil, nil })
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	zap.L().Info("reload requested", principalField(r))
	api.runtime.Events.EmitEvent(control.EventRestart)
}

// UpdateLogLevel implements PUT method on /api/log_level endpoint
func (api *SongbookAPI) UpdateLogLevel(w http.ResponseWriter, r *http.Request) {
	var level string
	xhttp.JSONResponse(w, func() (interface{}, error) {
		var req logLevelRequest
		if err := decodeBody(r, &req, "Invalid log level"); err != nil {
			return nil, err
		}

		if err := api.runtime.Settings.SetLogLevel(req.Level); err != nil {
			return nil, err
		}

		level = req.Level
		zap.L().Info("log level changed", zap.String("level", level), principalField(r))
		return messageResponse{Message: "Log level set to " + level}, nil
	})

	if len(level) > 0 {
		api.runtime.Events.EmitEventWithInfo(control.EventSetLogLevel, level)
	}
}
