package authorizer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/require"
)

const (
	testPoolID = "us-east-1_TestPool"
	testRegion = "us-east-1"
	testKid    = "test-key-1"
	testArn    = "arn:aws:execute-api:us-east-1:123456789012:abcdef123/prod/GET/songs"
)

var (
	keysOnce sync.Once
	keyA     *rsa.PrivateKey
	keyB     *rsa.PrivateKey
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	keysOnce.Do(func() {
		var err error
		keyA, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		keyB, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	})
	return keyA, keyB
}

func validClaims(sub string) *Claims {
	now := time.Now()
	return &Claims{
		Email:    sub + "@example.com",
		TokenUse: "id",
		StandardClaims: jwt.StandardClaims{
			Subject:   sub,
			Issuer:    IssuerURL(testPoolID, testRegion),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
	}
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if len(kid) > 0 {
		token.Header["kid"] = kid
	}
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func keySetDocument(t *testing.T, keys map[string]*rsa.PublicKey) []byte {
	set := jose.JSONWebKeySet{}
	for kid, pub := range keys {
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       pub,
			KeyID:     kid,
			Algorithm: "RS256",
			Use:       "sig",
		})
	}
	doc, err := json.Marshal(set)
	require.NoError(t, err)
	return doc
}

// jwksServer serves a key set document and counts hits.
type jwksServer struct {
	*httptest.Server
	hits     int32
	document atomic.Value
	status   int32
}

func newJWKSServer(t *testing.T, keys map[string]*rsa.PublicKey) *jwksServer {
	s := &jwksServer{status: http.StatusOK}
	s.document.Store(keySetDocument(t, keys))
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		status := int(atomic.LoadInt32(&s.status))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.document.Load().([]byte))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) Hits() int {
	return int(atomic.LoadInt32(&s.hits))
}

func (s *jwksServer) SetStatus(status int) {
	atomic.StoreInt32(&s.status, int32(status))
}

func (s *jwksServer) SetDocument(doc []byte) {
	s.document.Store(doc)
}

type panickingKeys struct{}

func (panickingKeys) Key(_ context.Context, _ string) (*rsa.PublicKey, error) {
	panic("key source exploded")
}
