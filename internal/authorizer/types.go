// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package authorizer

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

const (
	policyVersion = "2012-10-17"
	invokeAction  = "execute-api:Invoke"
)

// Request is the authorization request handed over by the routing layer.
// Field names follow the API Gateway REQUEST authorizer event.
type Request struct {
	Type                  string            `json:"type"`
	MethodArn             string            `json:"methodArn"`
	Resource              string            `json:"resource,omitempty"`
	Path                  string            `json:"path,omitempty"`
	HTTPMethod            string            `json:"httpMethod,omitempty"`
	Headers               map[string]string `json:"headers"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	PathParameters        map[string]string `json:"pathParameters,omitempty"`
}

type Statement struct {
	Effect   Effect `json:"Effect"`
	Action   string `json:"Action"`
	Resource string `json:"Resource"`
}

type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Response is the decision returned to the routing layer.
type Response struct {
	PrincipalID    string                 `json:"principalId"`
	PolicyDocument PolicyDocument         `json:"policyDocument"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// Effect returns the effect of the sole policy statement.
func (r *Response) Effect() Effect {
	if r == nil || len(r.PolicyDocument.Statement) != 1 {
		return Deny
	}
	return r.PolicyDocument.Statement[0].Effect
}

func (r *Response) Allowed() bool {
	return r.Effect() == Allow
}
