package client

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/research-marketplace/account-deletion-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCognito struct {
	users      map[string]bool
	err        error
	userPoolId string
}

func (f *fakeCognito) AdminDeleteUser(ctx context.Context, input *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error) {
	f.userPoolId = aws.ToString(input.UserPoolId)
	if f.err != nil {
		return nil, f.err
	}
	username := aws.ToString(input.Username)
	if !f.users[username] {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}
	delete(f.users, username)
	return &cognitoidentityprovider.AdminDeleteUserOutput{}, nil
}

func TestDeleteIdentity(t *testing.T) {
	api := &fakeCognito{users: map[string]bool{"alice@uni.edu": true}}
	c := newCognitoClient(api, "pool-1")

	require.NoError(t, c.DeleteIdentity(context.Background(), "alice@uni.edu"))
	assert.Equal(t, "pool-1", api.userPoolId)
	assert.Empty(t, api.users)
}

func TestDeleteIdentityNotFound(t *testing.T) {
	c := newCognitoClient(&fakeCognito{users: map[string]bool{}}, "pool-1")

	err := c.DeleteIdentity(context.Background(), "bob@uni.edu")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestDeleteIdentityNotFoundByErrorCode(t *testing.T) {
	api := &fakeCognito{err: &smithy.GenericAPIError{Code: "UserNotFoundException", Message: "User does not exist."}}
	c := newCognitoClient(api, "pool-1")

	err := c.DeleteIdentity(context.Background(), "bob@uni.edu")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestDeleteIdentityOtherFailure(t *testing.T) {
	api := &fakeCognito{err: &smithy.GenericAPIError{Code: "TooManyRequestsException", Message: "slow down"}}
	c := newCognitoClient(api, "pool-1")

	err := c.DeleteIdentity(context.Background(), "bob@uni.edu")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrIdentityNotFound))
	assert.Contains(t, err.Error(), "slow down")
}

func TestDisabledClient(t *testing.T) {
	c, err := NewIdentityProviderClient(context.Background(), config.IdentityProviderConfig{Enabled: false})
	require.NoError(t, err)
	assert.ErrorIs(t, c.DeleteIdentity(context.Background(), "x"), ErrIdentityProviderDisabled)
}
