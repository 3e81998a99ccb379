package authorizer

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier(t *testing.T) *Verifier {
	a, _ := testKeys(t)
	return NewVerifier(StaticKeys{{ID: testKid, Public: &a.PublicKey}}, IssuerURL(testPoolID, testRegion))
}

func TestVerifyValidToken(t *testing.T) {
	a, _ := testKeys(t)
	v := testVerifier(t)

	result := v.Verify(context.Background(), signToken(t, a, testKid, validClaims("user-42")))
	require.True(t, result.Verified(), "%v", result.Reason)
	assert.Equal(t, "user-42", result.Claims.Subject)
	assert.Equal(t, "user-42@example.com", result.Claims.Email)
	assert.Equal(t, "id", result.Claims.TokenUse)
}

func TestVerifyWithoutKid(t *testing.T) {
	a, _ := testKeys(t)
	v := testVerifier(t)

	result := v.Verify(context.Background(), signToken(t, a, "", validClaims("user-42")))
	assert.True(t, result.Verified(), "%v", result.Reason)
}

func TestVerifyRejects(t *testing.T) {
	a, b := testKeys(t)
	v := testVerifier(t)

	expired := validClaims("user-42")
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()

	notYet := validClaims("user-42")
	notYet.NotBefore = time.Now().Add(time.Hour).Unix()

	foreignIssuer := validClaims("user-42")
	foreignIssuer.Issuer = IssuerURL("us-east-1_Other", testRegion)

	noSubject := validClaims("")

	noExpiry := validClaims("user-42")
	noExpiry.ExpiresAt = 0

	pubDER, err := x509.MarshalPKIXPublicKey(&a.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user-42")).SignedString(pubPEM)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("user-42")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rs512 := jwt.NewWithClaims(jwt.SigningMethodRS512, validClaims("user-42"))
	rs512.Header["kid"] = testKid
	rs512Token, err := rs512.SignedString(a)
	require.NoError(t, err)

	numericKid := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("user-42"))
	numericKid.Header["kid"] = 42
	numericKidToken, err := numericKid.SignedString(a)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":             "",
		"garbage":           "abc.def.ghi",
		"wrong key":         signToken(t, b, testKid, validClaims("user-42")),
		"unknown kid":       signToken(t, a, "other", validClaims("user-42")),
		"expired":           signToken(t, a, testKid, expired),
		"not yet valid":     signToken(t, a, testKid, notYet),
		"foreign issuer":    signToken(t, a, testKid, foreignIssuer),
		"no subject":        signToken(t, a, testKid, noSubject),
		"no expiry":         signToken(t, a, testKid, noExpiry),
		"hmac with pub key": hmacToken,
		"alg none":          noneToken,
		"rs512":             rs512Token,
		"non-string key id": numericKidToken,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			result := v.Verify(context.Background(), token)
			assert.False(t, result.Verified())
			assert.Nil(t, result.Claims)
			assert.Error(t, result.Reason)
		})
	}
}

func TestVerifyKeySourceFailure(t *testing.T) {
	a, _ := testKeys(t)
	v := NewVerifier(StaticKeys{}, "")

	result := v.Verify(context.Background(), signToken(t, a, testKid, validClaims("user-42")))
	assert.False(t, result.Verified())
	assert.True(t, errors.Is(result.Reason, ErrKeySetUnavailable))
}

func TestVerifyIssuerCheckDisabled(t *testing.T) {
	a, _ := testKeys(t)
	v := NewVerifier(StaticKeys{{ID: testKid, Public: &a.PublicKey}}, "")

	claims := validClaims("user-42")
	claims.Issuer = "https://elsewhere.example.com"
	result := v.Verify(context.Background(), signToken(t, a, testKid, claims))
	assert.True(t, result.Verified(), "%v", result.Reason)
}

var _ KeySource = (*rsaKeyFunc)(nil)

type rsaKeyFunc func(kid string) (*rsa.PublicKey, error)

func (f rsaKeyFunc) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	return f(kid)
}

func TestVerifyPassesKid(t *testing.T) {
	a, _ := testKeys(t)
	var seen string
	v := NewVerifier(rsaKeyFunc(func(kid string) (*rsa.PublicKey, error) {
		seen = kid
		return &a.PublicKey, nil
	}), "")

	result := v.Verify(context.Background(), signToken(t, a, "kid-7", validClaims("user-42")))
	assert.True(t, result.Verified())
	assert.Equal(t, "kid-7", seen)
}
