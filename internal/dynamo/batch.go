package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cenkalti/backoff"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

var errUnprocessed = errors.New("unprocessed items left")

// batchWrite puts items in chunks of batchWriteLimit,
// unprocessed items are resent with exponential backoff.
func (s *Storage) batchWrite(ctx context.Context, table string, items []map[string]*dynamodb.AttributeValue) error {
	for start := 0; start < len(items); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(items) {
			end = len(items)
		}

		requests := make([]*dynamodb.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, &dynamodb.WriteRequest{
				PutRequest: &dynamodb.PutRequest{Item: item},
			})
		}

		if err := s.writeChunk(ctx, table, requests); err != nil {
			return err
		}
	}

	zap.L().Debug("batch written", zap.String("table", table), zap.Int("items", len(items)))
	return nil
}

func (s *Storage) writeChunk(ctx context.Context, table string, requests []*dynamodb.WriteRequest) error {
	pending := map[string][]*dynamodb.WriteRequest{table: requests}

	op := func() error {
		out, err := s.client.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if len(out.UnprocessedItems) > 0 {
			pending = out.UnprocessedItems
			return errUnprocessed
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(s.backoff(), ctx)); err != nil {
		return xerror.EStorageError("can't write batch", err, zap.String("table", table), zap.Int("items", len(requests)))
	}
	return nil
}

func isRetryable(err error) bool {
	switch xaws.ErrorCode(err) {
	case dynamodb.ErrCodeProvisionedThroughputExceededException,
		dynamodb.ErrCodeRequestLimitExceeded,
		dynamodb.ErrCodeInternalServerError:
		return true
	}
	return false
}
