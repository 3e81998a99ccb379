// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutCallerFilePath(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"main.go", "main.go"},
		{"/main.go", "/main.go"},
		{"/home/user/src/project/package/foo.go", "package/foo.go"},
		{"/build/main.go", "/build/main.go"},
	}

	for _, tt := range tests {
		out := cutCallerFilePath(tt.in)
		assert.Equal(t, tt.out, out, "expected `%s`, given `%s`", out, tt.out)
	}
}

func TestErrorToHttpResponse(t *testing.T) {
	nested := fmt.Errorf("connection refused")

	code, body := ErrorToHttpResponse(EInvalidField("bad value", "title", nested))
	assert.Equal(t, http.StatusBadRequest, code)

	var resp Response
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, ResultInvalidArgument, resp.Result)
	require.NotNil(t, resp.Field)
	assert.Equal(t, "title", *resp.Field)
	require.NotNil(t, resp.Details)
	assert.Equal(t, "connection refused", *resp.Details)
}

func TestSecretiveSerializerHidesDetails(t *testing.T) {
	code, body := ErrorToHttpResponse(WAuthenticationFailed("identity", "invalid token", fmt.Errorf("signature mismatch")))
	assert.Equal(t, http.StatusUnauthorized, code)

	var resp Response
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, ResultAuthFailed, resp.Result)
	assert.Nil(t, resp.Details)
	assert.NotContains(t, string(body), "signature")
}

func TestUnknownError(t *testing.T) {
	code, body := ErrorToHttpResponse(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(body), string(ResultUnknownError))
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", EEntryNotFound("no such song", nil))
	assert.True(t, errors.Is(err, EEntryNotFound("", nil)))
	assert.False(t, errors.Is(err, EExists("", nil)))
	assert.True(t, IsType(WForbidden("test", "denied"), EForbiddenType))
	assert.True(t, IsType(err, EEntryNotFoundType))
}

func TestWrappedErrorKeepsStatus(t *testing.T) {
	err := fmt.Errorf("song #3: %w", EInvalidField("empty title", "title", nil))
	code, body := ErrorToHttpResponse(err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), `"field": "title"`)
}
