// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package dynamo

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

func songKey(id int) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		types.FieldID: {N: aws.String(strconv.Itoa(id))},
	}
}

func songExists() expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name(types.FieldID))
}

func (s *Storage) ListSongs(ctx context.Context) ([]types.Song, error) {
	var songs []types.Song
	input := &dynamodb.ScanInput{TableName: aws.String(s.tables.Songs)}
	for {
		out, err := s.client.ScanWithContext(ctx, input)
		if err != nil {
			return nil, xerror.EStorageError("can't scan songs", err)
		}

		var page []types.Song
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, xerror.EStorageError("malformed song records", err)
		}
		songs = append(songs, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs, nil
}

func (s *Storage) GetSong(ctx context.Context, id int) (*types.Song, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Songs),
		Key:       songKey(id),
	})
	if err != nil {
		return nil, xerror.EStorageError("can't get song", err, zap.Int("id", id))
	}
	if len(out.Item) == 0 {
		return nil, xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
	}

	var song types.Song
	if err := dynamodbattribute.UnmarshalMap(out.Item, &song); err != nil {
		return nil, xerror.EStorageError("malformed song record", err, zap.Int("id", id))
	}
	return &song, nil
}

func (s *Storage) PutSong(ctx context.Context, song types.Song) error {
	item, err := dynamodbattribute.MarshalMap(song)
	if err != nil {
		return xerror.EInternalError("can't encode song", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(types.FieldID))).
		Build()
	if err != nil {
		return xerror.EInternalError("can't build condition", err)
	}

	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tables.Songs),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if xaws.ErrorCode(err) == dynamodb.ErrCodeConditionalCheckFailedException {
			return xerror.EExists("song already exists", nil, zap.Int("id", song.ID))
		}
		return xerror.EStorageError("can't put song", err, zap.Int("id", song.ID))
	}
	return nil
}

func (s *Storage) PutSongs(ctx context.Context, songs []types.Song) error {
	items := make([]map[string]*dynamodb.AttributeValue, 0, len(songs))
	for _, song := range songs {
		item, err := dynamodbattribute.MarshalMap(song)
		if err != nil {
			return xerror.EInternalError("can't encode song", err, zap.Int("id", song.ID))
		}
		items = append(items, item)
	}
	return s.batchWrite(ctx, s.tables.Songs, items)
}

func (s *Storage) UpdateSong(ctx context.Context, id int, fields map[string]interface{}) (*types.Song, error) {
	if len(fields) == 0 {
		return nil, xerror.EInvalidArgument("No valid fields to update", nil)
	}

	var update expression.UpdateBuilder
	for name, value := range fields {
		if name == types.FieldID || name == types.FieldTranslationCache {
			return nil, xerror.EInvalidField("field can not be updated", name, nil)
		}
		update = update.Set(expression.Name(name), expression.Value(value))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(songExists()).Build()
	if err != nil {
		return nil, xerror.EInternalError("can't build update expression", err)
	}

	out, err := s.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tables.Songs),
		Key:                       songKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllNew),
	})
	if err != nil {
		if xaws.ErrorCode(err) == dynamodb.ErrCodeConditionalCheckFailedException {
			return nil, xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
		}
		return nil, xerror.EStorageError("can't update song", err, zap.Int("id", id))
	}

	var song types.Song
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &song); err != nil {
		return nil, xerror.EStorageError("malformed song record", err, zap.Int("id", id))
	}
	return &song, nil
}

func (s *Storage) DeleteSong(ctx context.Context, id int) error {
	_, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tables.Songs),
		Key:       songKey(id),
	})
	if err != nil {
		return xerror.EStorageError("can't delete song", err, zap.Int("id", id))
	}
	return nil
}

func (s *Storage) SetTranslations(ctx context.Context, id int, translations map[string]types.Translation) error {
	update := expression.Set(expression.Name(types.FieldTranslationCache), expression.Value(translations))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(songExists()).Build()
	if err != nil {
		return xerror.EInternalError("can't build update expression", err)
	}

	_, err = s.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tables.Songs),
		Key:                       songKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if xaws.ErrorCode(err) == dynamodb.ErrCodeConditionalCheckFailedException {
			return xerror.EEntryNotFound("song not found", nil, zap.Int("id", id))
		}
		return xerror.EStorageError("can't store translations", err, zap.Int("id", id))
	}
	return nil
}
