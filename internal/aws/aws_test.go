package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSecretsManager struct {
	mock.Mock
}

func (m *MockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
	optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(aws.ToString(params.SecretId))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsmanager.GetSecretValueOutput), args.Error(1)
}

func TestGetSecretString_Plain(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", "arn:secret").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("plain-secret")}, nil)

	value, err := GetSecretString(context.Background(), client, "arn:secret", "")
	assert.NoError(t, err)
	assert.Equal(t, "plain-secret", value)
	client.AssertExpectations(t)
}

func TestGetSecretString_JSONKey(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", "arn:secret").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"client-secret": "s3cr3t"}`)}, nil)

	value, err := GetSecretString(context.Background(), client, "arn:secret", "client-secret")
	assert.NoError(t, err)
	assert.Equal(t, "s3cr3t", value)

	_, err = GetSecretString(context.Background(), client, "arn:secret", "missing")
	assert.Error(t, err)
}

func TestGetSecretString_Errors(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", "arn:denied").Return(nil, errors.New("access denied"))
	client.On("GetSecretValue", "arn:binary").Return(&secretsmanager.GetSecretValueOutput{}, nil)
	client.On("GetSecretValue", "arn:plain").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("not json")}, nil)

	_, err := GetSecretString(context.Background(), client, "arn:denied", "")
	assert.ErrorContains(t, err, "access denied")

	_, err = GetSecretString(context.Background(), client, "arn:binary", "")
	assert.Error(t, err)

	_, err = GetSecretString(context.Background(), client, "arn:plain", "key")
	assert.Error(t, err)
}
