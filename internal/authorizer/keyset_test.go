package authorizer

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySetURL(t *testing.T) {
	assert.Equal(t,
		"https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc/.well-known/jwks.json",
		KeySetURL("eu-west-1_abc", "eu-west-1"))
	assert.Equal(t,
		"https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc",
		IssuerURL("eu-west-1_abc", "eu-west-1"))
}

func TestKeySetFetchesOnce(t *testing.T) {
	a, b := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey, "b": &b.PublicKey})
	ks := NewKeySet(srv.URL)

	for i := 0; i < 5; i++ {
		key, err := ks.Key(context.Background(), "b")
		require.NoError(t, err)
		assert.Equal(t, b.PublicKey.N, key.N)
	}
	assert.Equal(t, 1, srv.Hits())

	keys, err := ks.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Equal(t, 1, srv.Hits())
}

func TestKeySetNoKidSelectsFirst(t *testing.T) {
	a, _ := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	ks := NewKeySet(srv.URL)

	key, err := ks.Key(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey.E, key.E)
	assert.Equal(t, a.PublicKey.N, key.N)
}

func TestKeySetFailureIsNotCached(t *testing.T) {
	a, _ := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	srv.SetStatus(http.StatusInternalServerError)
	ks := NewKeySet(srv.URL)

	_, err := ks.Key(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeySetUnavailable))
	assert.Equal(t, 1, srv.Hits())

	srv.SetStatus(http.StatusOK)
	_, err = ks.Key(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits())
}

func TestKeySetMalformedDocument(t *testing.T) {
	a, _ := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	ks := NewKeySet(srv.URL)

	for _, doc := range []string{`{"keys":`, `not json`, `{"keys":[]}`} {
		srv.SetDocument([]byte(doc))
		_, err := ks.Keys(context.Background())
		assert.True(t, errors.Is(err, ErrKeySetUnavailable), doc)
	}
}

func TestKeySetNetworkError(t *testing.T) {
	a, _ := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	url := srv.URL
	srv.Close()

	ks := NewKeySet(url)
	_, err := ks.Key(context.Background(), "a")
	assert.True(t, errors.Is(err, ErrKeySetUnavailable))
}

func TestKeySetUnknownKidRefreshLimited(t *testing.T) {
	a, b := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	ks := NewKeySet(srv.URL)

	_, err := ks.Keys(context.Background())
	require.NoError(t, err)

	srv.SetDocument(keySetDocument(t, map[string]*rsa.PublicKey{"a": &a.PublicKey, "b": &b.PublicKey}))

	// fetched just now, the rotation is not picked up yet
	_, err = ks.Key(context.Background(), "b")
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.Equal(t, 1, srv.Hits())
}

func TestKeySetUnknownKidRefreshes(t *testing.T) {
	a, b := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	ks := NewKeySet(srv.URL, WithMinRefreshInterval(0))

	_, err := ks.Keys(context.Background())
	require.NoError(t, err)

	srv.SetDocument(keySetDocument(t, map[string]*rsa.PublicKey{"a": &a.PublicKey, "b": &b.PublicKey}))
	key, err := ks.Key(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, b.PublicKey.N, key.N)
	assert.Equal(t, 2, srv.Hits())

	_, err = ks.Key(context.Background(), "forged")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestKeySetConcurrentFirstUse(t *testing.T) {
	a, _ := testKeys(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &a.PublicKey})
	ks := NewKeySet(srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ks.Key(context.Background(), "a")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.GreaterOrEqual(t, srv.Hits(), 1)
}

func TestStaticKeys(t *testing.T) {
	a, b := testKeys(t)
	keys := StaticKeys{{ID: "a", Public: &a.PublicKey}, {ID: "b", Public: &b.PublicKey}}

	key, err := keys.Key(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey.N, key.N)

	key, err = keys.Key(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, b.PublicKey.N, key.N)

	_, err = keys.Key(context.Background(), "c")
	assert.True(t, errors.Is(err, ErrUnknownKey))

	_, err = StaticKeys{}.Key(context.Background(), "a")
	assert.True(t, errors.Is(err, ErrKeySetUnavailable))
}
