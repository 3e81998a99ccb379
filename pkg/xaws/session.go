package xaws

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

type Config struct {
	Region string `yaml:"region" valid:"aws_region,required"`
	// Endpoint overrides the service endpoint, e.g. for a local DynamoDB.
	Endpoint string `yaml:"endpoint,omitempty" valid:"url"`
}

// NewSession creates an AWS session using the default credentials chain.
func NewSession(config Config) (*session.Session, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if len(config.Endpoint) > 0 {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, xerror.EInvalidConfiguration("can't create AWS session", "aws", err)
	}

	zap.L().Debug("AWS session created", zap.String("region", config.Region), zap.String("endpoint", config.Endpoint))
	return sess, nil
}

// ErrorCode returns the AWS error code of err or an empty string.
func ErrorCode(err error) string {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code()
	}
	return ""
}
