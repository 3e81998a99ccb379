package xaws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	err := awserr.New("ConditionalCheckFailedException", "condition failed", nil)
	assert.Equal(t, "ConditionalCheckFailedException", ErrorCode(err))
	assert.Equal(t, "ConditionalCheckFailedException", ErrorCode(fmt.Errorf("put: %w", err)))
	assert.Empty(t, ErrorCode(errors.New("plain")))
	assert.Empty(t, ErrorCode(nil))
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession(Config{Region: "eu-west-1", Endpoint: "http://localhost:8000"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", *sess.Config.Region)
	assert.Equal(t, "http://localhost:8000", *sess.Config.Endpoint)
}
