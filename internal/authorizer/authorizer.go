// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package authorizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

const DefaultCookieName = "token"

const (
	reasonAllowed        = "allowed"
	reasonNoCookies      = "no_cookies"
	reasonNoToken        = "no_token"
	reasonKeyUnavailable = "key_unavailable"
	reasonInvalidToken   = "invalid_token"
	reasonInternal       = "internal_error"
)

var decisionCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "songbook",
		Subsystem: "authorizer",
		Name:      "decisions_total",
		Help:      "Authorization decisions by effect and reason",
	},
	[]string{"effect", "reason"},
)

func init() {
	prometheus.MustRegister(decisionCounter)
}

type Config struct {
	PoolID     string
	Region     string
	CookieName string
	// Issuer overrides the expected iss claim, "-" disables the check.
	Issuer string
}

type Authorizer struct {
	cookieName string
	verifier   *Verifier
	running    bool
}

func New(config Config, keys KeySource) (*Authorizer, error) {
	if len(config.PoolID) == 0 {
		return nil, xerror.EInvalidConfiguration("user pool id is not set", "pool_id", nil)
	}
	if len(config.Region) == 0 {
		return nil, xerror.EInvalidConfiguration("region is not set", "region", nil)
	}
	if keys == nil {
		return nil, xerror.EInvalidConfiguration("signing key source is not set", "jwks_url", nil)
	}

	cookieName := config.CookieName
	if len(cookieName) == 0 {
		cookieName = DefaultCookieName
	}

	issuer := config.Issuer
	switch issuer {
	case "":
		issuer = IssuerURL(config.PoolID, config.Region)
	case "-":
		issuer = ""
	}

	return &Authorizer{
		cookieName: cookieName,
		verifier:   NewVerifier(keys, issuer),
		running:    true,
	}, nil
}

func (a *Authorizer) Shutdown() error {
	a.running = false
	return nil
}

func (a *Authorizer) Running() bool {
	return a.running
}

func (a *Authorizer) CookieName() string {
	return a.cookieName
}

// Authorize never fails: any problem along the way yields a Deny response.
func (a *Authorizer) Authorize(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("authorizer panic recovered", zap.Any("panic", r))
			resp = a.deny(req, reasonInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	if req == nil {
		return a.deny(nil, reasonInternal, errors.New("nil request"))
	}

	cookies := ParseCookies(req.Headers)
	if !cookies.Present() {
		return a.deny(req, reasonNoCookies, nil)
	}

	token, _ := cookies.Get(a.cookieName)
	if len(token) == 0 {
		return a.deny(req, reasonNoToken, nil)
	}

	result := a.verifier.Verify(ctx, token)
	if !result.Verified() {
		reason := reasonInvalidToken
		if errors.Is(result.Reason, ErrKeySetUnavailable) {
			reason = reasonKeyUnavailable
		}
		return a.deny(req, reason, result.Reason)
	}

	return a.allow(req, result.Claims)
}

func (a *Authorizer) allow(req *Request, claims *Claims) *Response {
	decisionCounter.WithLabelValues(string(Allow), reasonAllowed).Inc()
	zap.L().Debug("request allowed",
		zap.String("principal", claims.Subject),
		zap.String("method_arn", req.MethodArn))

	return &Response{
		PrincipalID:    claims.Subject,
		PolicyDocument: BuildPolicy(req, Allow),
		Context: map[string]interface{}{
			"sub":   claims.Subject,
			"email": claims.Email,
		},
	}
}

func (a *Authorizer) deny(req *Request, reason string, err error) *Response {
	decisionCounter.WithLabelValues(string(Deny), reason).Inc()

	fields := []zap.Field{zap.String("reason", reason)}
	if req != nil {
		fields = append(fields, zap.String("method_arn", req.MethodArn))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	zap.L().Info("request denied", fields...)

	return &Response{
		PolicyDocument: BuildPolicy(req, Deny),
	}
}
