// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package authorizer

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3"
	"go.uber.org/zap"
)

const (
	defaultFetchTimeout    = 5 * time.Second
	defaultMinRefresh      = 5 * time.Minute
	maxKeySetDocumentBytes = 1 << 20
)

var (
	ErrKeySetUnavailable = errors.New("signing key set unavailable")
	ErrUnknownKey        = errors.New("unknown signing key")
)

// IssuerURL returns the issuer identifier of a Cognito user pool.
func IssuerURL(poolID, region string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
}

// KeySetURL returns the well-known JWKS location of a Cognito user pool.
func KeySetURL(poolID, region string) string {
	return IssuerURL(poolID, region) + "/.well-known/jwks.json"
}

// KeySource resolves the public key a token was signed with.
// An empty kid selects the first key of the set.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

type Key struct {
	ID        string
	Algorithm string
	Public    *rsa.PublicKey
}

type KeySetOption func(ks *KeySet)

func WithHTTPClient(client *http.Client) KeySetOption {
	return func(ks *KeySet) {
		ks.client = client
	}
}

// WithMinRefreshInterval limits how often an unknown kid may trigger a refetch.
func WithMinRefreshInterval(interval time.Duration) KeySetOption {
	return func(ks *KeySet) {
		ks.minRefresh = interval
	}
}

// KeySet lazily fetches and caches the signing keys published at a JWKS URL.
// A successful fetch is kept for the process lifetime, failures are not cached.
type KeySet struct {
	url        string
	client     *http.Client
	minRefresh time.Duration
	now        func() time.Time

	lock      sync.RWMutex
	keys      []Key
	fetchedAt time.Time
}

func NewKeySet(url string, opts ...KeySetOption) *KeySet {
	ks := &KeySet{
		url:        url,
		client:     &http.Client{Timeout: defaultFetchTimeout},
		minRefresh: defaultMinRefresh,
		now:        time.Now,
	}
	for _, o := range opts {
		o(ks)
	}
	return ks
}

func (ks *KeySet) URL() string {
	return ks.url
}

func (ks *KeySet) cached() ([]Key, time.Time) {
	ks.lock.RLock()
	defer ks.lock.RUnlock()
	return ks.keys, ks.fetchedAt
}

func (ks *KeySet) store(keys []Key) {
	ks.lock.Lock()
	defer ks.lock.Unlock()
	ks.keys = keys
	ks.fetchedAt = ks.now()
}

// Keys returns the cached key set, fetching it on first use.
func (ks *KeySet) Keys(ctx context.Context) ([]Key, error) {
	if keys, _ := ks.cached(); keys != nil {
		return keys, nil
	}

	// concurrent first calls may all get here, the last store wins
	return ks.refresh(ctx)
}

func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := ks.Keys(ctx)
	if err != nil {
		return nil, err
	}

	if len(kid) == 0 {
		return keys[0].Public, nil
	}

	if key := findKey(keys, kid); key != nil {
		return key, nil
	}

	_, fetchedAt := ks.cached()
	if ks.now().Sub(fetchedAt) < ks.minRefresh {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
	}

	zap.L().Info("unknown signing key id, refreshing key set", zap.String("kid", kid), zap.String("url", ks.url))
	keys, err = ks.refresh(ctx)
	if err != nil {
		return nil, err
	}

	if key := findKey(keys, kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
}

func findKey(keys []Key, kid string) *rsa.PublicKey {
	for _, k := range keys {
		if k.ID == kid {
			return k.Public
		}
	}
	return nil
}

func (ks *KeySet) refresh(ctx context.Context) ([]Key, error) {
	keys, err := ks.fetch(ctx)
	if err != nil {
		zap.L().Warn("failed to fetch signing key set", zap.String("url", ks.url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	ks.store(keys)
	zap.L().Debug("signing key set fetched", zap.String("url", ks.url), zap.Int("keys", len(keys)))
	return keys, nil
}

func (ks *KeySet) fetch(ctx context.Context) ([]Key, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ks.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxKeySetDocumentBytes)).Decode(&set); err != nil {
		return nil, fmt.Errorf("malformed key set: %w", err)
	}

	return rsaKeys(set)
}

func rsaKeys(set jose.JSONWebKeySet) ([]Key, error) {
	keys := make([]Key, 0, len(set.Keys))
	for _, jwk := range set.Keys {
		pub, ok := jwk.Key.(*rsa.PublicKey)
		if !ok {
			zap.L().Debug("skipping non-RSA key", zap.String("kid", jwk.KeyID))
			continue
		}
		keys = append(keys, Key{ID: jwk.KeyID, Algorithm: jwk.Algorithm, Public: pub})
	}

	if len(keys) == 0 {
		return nil, errors.New("key set contains no RSA keys")
	}
	return keys, nil
}

// StaticKeys is a fixed KeySource.
type StaticKeys []Key

func (s StaticKeys) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no keys configured", ErrKeySetUnavailable)
	}
	if len(kid) == 0 {
		return s[0].Public, nil
	}
	if key := findKey(s, kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
}
