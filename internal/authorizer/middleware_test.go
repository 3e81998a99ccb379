package authorizer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArnPrefix = "arn:aws:execute-api:us-east-1:123456789012:abcdef123/prod"

func TestMethodARN(t *testing.T) {
	assert.Equal(t, testArnPrefix+"/PUT/songs/42", MethodARN(testArnPrefix, "put", "/songs/42"))
	assert.Equal(t, testArnPrefix+"/GET/", MethodARN(testArnPrefix+"/", "GET", "/"))
}

func TestNewRequest(t *testing.T) {
	var got *Request
	r := chi.NewRouter()
	r.Put("/songs/{songId}", func(w http.ResponseWriter, r *http.Request) {
		got = NewRequest(r, testArnPrefix)
	})

	req := httptest.NewRequest(http.MethodPut, "/songs/42?language=fr", nil)
	req.Header.Set("Cookie", "token=t")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "REQUEST", got.Type)
	assert.Equal(t, testArnPrefix+"/PUT/songs/42", got.MethodArn)
	assert.Equal(t, "/songs/{songId}", got.Resource)
	assert.Equal(t, "/songs/42", got.Path)
	assert.Equal(t, http.MethodPut, got.HTTPMethod)
	assert.Equal(t, "token=t", got.Headers["Cookie"])
	assert.Equal(t, map[string]string{"language": "fr"}, got.QueryStringParameters)
	assert.Equal(t, map[string]string{"songId": "42"}, got.PathParameters)
}

func TestMiddleware(t *testing.T) {
	key, _ := testKeys(t)
	a := testAuthorizer(t, StaticKeys{{ID: testKid, Public: &key.PublicKey}})

	var principal Principal
	r := chi.NewRouter()
	r.With(a.Middleware(testArnPrefix)).Delete("/songs/{songId}", func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		principal, ok = PrincipalFromContext(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("denied without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/songs/1", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})

	t.Run("allowed with valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/songs/1", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, key, testKid, validClaims("user-42"))})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, Principal{ID: "user-42", Email: "user-42@example.com"}, principal)
	})
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	_, ok := PrincipalFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
