// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xhttp

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(s int) {
	r.status = s
	r.ResponseWriter.WriteHeader(s)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if len(id) == 0 {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		wr := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wr, r)

		zap.L().Info("request info",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.RequestURI),
			zap.Int("status", wr.status),
			zap.Duration("t", time.Since(start)),
		)
	})
}

// RequestID returns the id assigned to the request by the logger middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
