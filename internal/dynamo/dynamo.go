// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/cenkalti/backoff"
)

const (
	// batchWriteLimit is the maximum number of requests in a single BatchWriteItem call.
	batchWriteLimit = 25

	artistRoleIndex = "roleIx"

	backoffInitialInterval = 100 * time.Millisecond
	backoffMaxInterval     = 2 * time.Second
	backoffMaxElapsedTime  = 30 * time.Second
)

type Tables struct {
	Songs   string
	Artists string
}

// Storage keeps the catalog in DynamoDB: songs keyed by id,
// artists keyed by songId and artistName with the roleIx index on roleName.
type Storage struct {
	client  dynamodbiface.DynamoDBAPI
	tables  Tables
	backoff func() backoff.BackOff
	running bool
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffInitialInterval
	b.MaxInterval = backoffMaxInterval
	b.MaxElapsedTime = backoffMaxElapsedTime
	return b
}

func New(client dynamodbiface.DynamoDBAPI, tables Tables) *Storage {
	return &Storage{
		client:  client,
		tables:  tables,
		backoff: defaultBackoff,
		running: true,
	}
}

func NewWithSession(sess *session.Session, tables Tables) *Storage {
	return New(dynamodb.New(sess), tables)
}

func (s *Storage) Shutdown() error {
	s.running = false
	return nil
}

func (s *Storage) Running() bool {
	return s.running
}
