// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package identity

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

const authFlowUserPassword = "USER_PASSWORD_AUTH"

// Provider registers and signs in users against a Cognito user pool app client.
type Provider struct {
	client   cognitoidentityprovideriface.CognitoIdentityProviderAPI
	clientID string
}

func New(client cognitoidentityprovideriface.CognitoIdentityProviderAPI, clientID string) *Provider {
	return &Provider{
		client:   client,
		clientID: clientID,
	}
}

func NewWithSession(sess *session.Session, clientID string) *Provider {
	return New(cognitoidentityprovider.New(sess), clientID)
}

func (p *Provider) SignUp(ctx context.Context, username, password, email string) error {
	_, err := p.client.SignUpWithContext(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
		Password: aws.String(password),
		UserAttributes: []*cognitoidentityprovider.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return mapError("sign up failed", err, zap.String("username", username))
	}

	zap.L().Info("user signed up", zap.String("username", username))
	return nil
}

func (p *Provider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.client.ConfirmSignUpWithContext(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return mapError("sign up confirmation failed", err, zap.String("username", username))
	}

	zap.L().Info("user confirmed", zap.String("username", username))
	return nil
}

// SignIn authenticates with username and password and returns the ID token.
func (p *Provider) SignIn(ctx context.Context, username, password string) (string, error) {
	out, err := p.client.InitiateAuthWithContext(ctx, &cognitoidentityprovider.InitiateAuthInput{
		ClientId: aws.String(p.clientID),
		AuthFlow: aws.String(authFlowUserPassword),
		AuthParameters: map[string]*string{
			"USERNAME": aws.String(username),
			"PASSWORD": aws.String(password),
		},
	})
	if err != nil {
		return "", mapError("sign in failed", err, zap.String("username", username))
	}

	if out.AuthenticationResult == nil || out.AuthenticationResult.IdToken == nil {
		// a challenge (e.g. NEW_PASSWORD_REQUIRED) is not supported
		return "", xerror.WAuthenticationFailed("identity", "sign in requires an unsupported challenge", nil,
			zap.String("username", username),
			zap.String("challenge", aws.StringValue(out.ChallengeName)))
	}

	return *out.AuthenticationResult.IdToken, nil
}

func mapError(description string, err error, fields ...zap.Field) error {
	switch xaws.ErrorCode(err) {
	case cognitoidentityprovider.ErrCodeNotAuthorizedException,
		cognitoidentityprovider.ErrCodeUserNotFoundException,
		cognitoidentityprovider.ErrCodeUserNotConfirmedException,
		cognitoidentityprovider.ErrCodePasswordResetRequiredException:
		return xerror.WAuthenticationFailed("identity", description, err, fields...)
	case cognitoidentityprovider.ErrCodeUsernameExistsException,
		cognitoidentityprovider.ErrCodeAliasExistsException:
		return xerror.EExists(description, err, fields...)
	case cognitoidentityprovider.ErrCodeInvalidParameterException,
		cognitoidentityprovider.ErrCodeInvalidPasswordException,
		cognitoidentityprovider.ErrCodeCodeMismatchException,
		cognitoidentityprovider.ErrCodeExpiredCodeException:
		return xerror.WInvalidArgument("identity", description, err, fields...)
	case cognitoidentityprovider.ErrCodeTooManyRequestsException,
		cognitoidentityprovider.ErrCodeLimitExceededException:
		return xerror.EUnavailable(description, err, fields...)
	}
	return xerror.EUpstreamError(description, err, fields...)
}
