package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

const (
	keySongID     = "songId"
	keyArtistName = "artistName"
	keyRoleName   = "roleName"
)

func (s *Storage) QueryArtists(ctx context.Context, query types.ArtistQuery) ([]types.SongArtist, error) {
	input := &dynamodb.QueryInput{TableName: aws.String(s.tables.Artists)}

	keyCond := expression.Key(keySongID).Equal(expression.Value(query.SongID))
	switch {
	case query.RoleName != nil:
		input.IndexName = aws.String(artistRoleIndex)
		keyCond = keyCond.And(expression.KeyBeginsWith(expression.Key(keyRoleName), *query.RoleName))
	case query.ArtistName != nil:
		keyCond = keyCond.And(expression.KeyBeginsWith(expression.Key(keyArtistName), *query.ArtistName))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, xerror.EInternalError("can't build key condition", err)
	}
	input.KeyConditionExpression = expr.KeyCondition()
	input.ExpressionAttributeNames = expr.Names()
	input.ExpressionAttributeValues = expr.Values()

	var artists []types.SongArtist
	for {
		out, err := s.client.QueryWithContext(ctx, input)
		if err != nil {
			return nil, xerror.EStorageError("can't query song artists", err, zap.Int("song_id", query.SongID))
		}

		var page []types.SongArtist
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, xerror.EStorageError("malformed song artist records", err)
		}
		artists = append(artists, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return artists, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *Storage) PutArtists(ctx context.Context, artists []types.SongArtist) error {
	items := make([]map[string]*dynamodb.AttributeValue, 0, len(artists))
	for _, a := range artists {
		item, err := dynamodbattribute.MarshalMap(a)
		if err != nil {
			return xerror.EInternalError("can't encode song artist", err)
		}
		items = append(items, item)
	}
	return s.batchWrite(ctx, s.tables.Artists, items)
}
