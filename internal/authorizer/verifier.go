// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package authorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	jwtSigningMethod = "RS256"
	jwtKeyID         = "kid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptyToken   = errors.New("empty token")
)

// Claims of a Cognito ID token. Only Subject and Email take part in decisions.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"cognito:username,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	jwt.StandardClaims
}

// Result of a token verification: either Claims or the Reason of the failure.
type Result struct {
	Claims *Claims
	Reason error
}

func (r Result) Verified() bool {
	return r.Reason == nil && r.Claims != nil
}

type Verifier struct {
	keys   KeySource
	issuer string
	parser *jwt.Parser
}

// NewVerifier creates a RS256 token verifier. Empty issuer disables the iss check.
func NewVerifier(keys KeySource, issuer string) *Verifier {
	return &Verifier{
		keys:   keys,
		issuer: issuer,
		parser: &jwt.Parser{ValidMethods: []string{jwtSigningMethod}},
	}
}

func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		var kid string
		if value, ok := token.Header[jwtKeyID]; ok {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: unsupported key id type %T", ErrInvalidToken, value)
			}
			kid = s
		}

		return v.keys.Key(ctx, kid)
	}
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) Result {
	if len(tokenString) == 0 {
		return Result{Reason: ErrEmptyToken}
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc(ctx))
	if err != nil {
		return Result{Reason: unwrapValidation(err)}
	}

	if !token.Valid {
		return Result{Reason: ErrInvalidToken}
	}

	if method := token.Method.Alg(); method != jwtSigningMethod {
		return Result{Reason: fmt.Errorf("%w: signing method %s", ErrInvalidToken, method)}
	}

	// jwt-go skips the expiry check when exp is absent
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return Result{Reason: fmt.Errorf("%w: expiry is not set", ErrInvalidToken)}
	}

	if len(v.issuer) > 0 && claims.Issuer != v.issuer {
		return Result{Reason: fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)}
	}

	if len(claims.Subject) == 0 {
		return Result{Reason: fmt.Errorf("%w: subject is not set", ErrInvalidToken)}
	}

	return Result{Claims: claims}
}

// unwrapValidation keeps key source errors reachable for errors.Is,
// jwt.ValidationError does not implement Unwrap.
func unwrapValidation(err error) error {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Inner != nil {
		if errors.Is(ve.Inner, ErrKeySetUnavailable) || errors.Is(ve.Inner, ErrUnknownKey) || errors.Is(ve.Inner, ErrInvalidToken) {
			return ve.Inner
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, ve.Inner)
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
