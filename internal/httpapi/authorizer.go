package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vpnhouse/songbook/internal/authorizer"
	"github.com/vpnhouse/songbook/pkg/xhttp"
	"go.uber.org/zap"
)

// Authorize implements POST method on /api/authorizer endpoint,
// it lets an external gateway delegate REQUEST authorization.
// An unreadable event still gets a Deny policy.
func (api *SongbookAPI) Authorize(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		req := &authorizer.Request{}
		// gateway events carry more fields than we need
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			zap.L().Warn("malformed authorization request", zap.Error(err))
			req = nil
		}

		return api.authorizer.Authorize(r.Context(), req), nil
	})
}
