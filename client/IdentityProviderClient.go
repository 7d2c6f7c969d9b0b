// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/research-marketplace/account-deletion-service/config"
	log "github.com/sirupsen/logrus"
)

const userNotFoundExceptionCode = "UserNotFoundException"

var (
	// ErrIdentityNotFound is returned when the identity provider has no account with the given username.
	ErrIdentityNotFound         = errors.New("identity not found")
	ErrIdentityProviderDisabled = errors.New("identity provider is not configured")
)

type IdentityProviderClient interface {
	DeleteIdentity(ctx context.Context, username string) error
}

// cognitoAPI is the subset of the Cognito client used here.
type cognitoAPI interface {
	AdminDeleteUser(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error)
}

func NewIdentityProviderClient(ctx context.Context, cfg config.IdentityProviderConfig) (IdentityProviderClient, error) {
	if !cfg.Enabled {
		log.Warn("Identity provider is disabled, identity deletion will be reported as failed")
		return disabledIdentityProviderClient{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	api := cognitoidentityprovider.NewFromConfig(awsCfg, func(o *cognitoidentityprovider.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newCognitoClient(api, cfg.UserPoolId), nil
}

func newCognitoClient(api cognitoAPI, userPoolId string) *cognitoClientImpl {
	return &cognitoClientImpl{api: api, userPoolId: userPoolId}
}

type cognitoClientImpl struct {
	api        cognitoAPI
	userPoolId string
}

func (c cognitoClientImpl) DeleteIdentity(ctx context.Context, username string) error {
	_, err := c.api.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolId),
		Username:   aws.String(username),
	})
	if err == nil {
		log.Debugf("Deleted identity %s from user pool %s", username, c.userPoolId)
		return nil
	}
	if isUserNotFound(err) {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, username)
	}
	return fmt.Errorf("failed to delete identity %s: %w", username, err)
}

func isUserNotFound(err error) bool {
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == userNotFoundExceptionCode
}

type disabledIdentityProviderClient struct{}

func (disabledIdentityProviderClient) DeleteIdentity(ctx context.Context, username string) error {
	return ErrIdentityProviderDisabled
}
