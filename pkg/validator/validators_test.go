// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAddr(t *testing.T) {
	assert.True(t, isListenAddr(":8080"))
	assert.True(t, isListenAddr("127.0.0.1:80"))
	assert.True(t, isListenAddr("localhost:443"))
	assert.False(t, isListenAddr("8080"))
	assert.False(t, isListenAddr(":http-alt"))
}

func TestRegionAndLanguage(t *testing.T) {
	assert.True(t, IsRegion("eu-west-1"))
	assert.True(t, IsRegion("us-gov-west-1"))
	assert.False(t, IsRegion("EU-WEST-1"))
	assert.False(t, IsRegion("eu-west"))

	assert.True(t, IsLanguage("fr"))
	assert.True(t, IsLanguage("zh-TW"))
	assert.False(t, IsLanguage("french"))
	assert.False(t, IsLanguage(""))
}

func TestValidateStruct(t *testing.T) {
	type authConfig struct {
		PoolID    string `valid:"pool_id,required"`
		Region    string `valid:"aws_region,required"`
		ARNPrefix string `valid:"execute_api_arn"`
	}

	err := ValidateStruct(authConfig{
		PoolID:    "eu-west-1_AbCdEf123",
		Region:    "eu-west-1",
		ARNPrefix: "arn:aws:execute-api:eu-west-1:123456789012:abcdef/dev",
	})
	require.NoError(t, err)

	err = ValidateStruct(authConfig{Region: "eu-west-1"})
	require.Error(t, err)

	err = ValidateStruct(authConfig{PoolID: "eu-west-1_x", Region: "eu-west-1", ARNPrefix: "arn:aws:s3:::bucket"})
	require.Error(t, err)
}

func TestDate(t *testing.T) {
	assert.True(t, IsDate("1975-10-31"))
	assert.False(t, IsDate("31/10/1975"))
}
