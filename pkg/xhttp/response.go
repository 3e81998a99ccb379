// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xhttp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

var jsonOkString = []byte(`"OK"`)

// JSONResponse calls the closure and respond with data or error.
// If no error, but the interface is nil it will write "OK" to the response writer.
func JSONResponse(w http.ResponseWriter, closure func() (interface{}, error)) {
	data, err := closure()
	if err != nil {
		WriteJsonError(w, err)
		return
	}

	if data != nil {
		bs, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			// log as warning, not error because it's very likely the API misuse
			zap.L().Warn("failed to marshal response into JSON", zap.String("type", fmt.Sprintf("%T", data)), zap.Error(err))
			WriteJsonError(w, err)
			return
		}

		WriteData(w, bs)
		return
	}

	WriteData(w, jsonOkString)
}

func WriteData(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write(data)
	if err != nil {
		zap.L().Error("can't write response", zap.Error(err))
	}
}

func WriteJsonError(w http.ResponseWriter, err error) {
	if err == nil {
		zap.L().Error("writeError: nil error passed")
		return
	}

	code, message := xerror.ErrorToHttpResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(message); err != nil {
		zap.L().Error("can't write response", zap.Error(err))
	}
}

func WriteJsonErrorBody(w http.ResponseWriter, code int, body *xerror.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON strictly decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return xerror.EInvalidArgument("empty request body", nil)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return xerror.EInvalidArgument("invalid request body", err)
	}
	return nil
}
