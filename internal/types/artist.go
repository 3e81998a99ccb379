package types

import (
	"github.com/vpnhouse/songbook/pkg/xerror"
)

// SongArtist is a credit of an artist on a song, unique by (SongID, ArtistName).
type SongArtist struct {
	SongID          int    `json:"songId" db:"song_id" dynamodbav:"songId"`
	ArtistName      string `json:"artistName" db:"artist_name" dynamodbav:"artistName"`
	RoleName        string `json:"roleName" db:"role_name" dynamodbav:"roleName"`
	RoleDescription string `json:"roleDescription" db:"role_description" dynamodbav:"roleDescription"`
}

func (a *SongArtist) Validate() error {
	if a == nil {
		return xerror.EInvalidArgument("empty song artist", nil)
	}
	if a.SongID <= 0 {
		return xerror.EInvalidField("song id must be positive", "songId", nil)
	}
	if len(a.ArtistName) == 0 {
		return xerror.EInvalidField("empty artist name", "artistName", nil)
	}
	return nil
}

// ArtistQuery selects the artists of a song. RoleName takes precedence
// over ArtistName, both are prefix matches.
type ArtistQuery struct {
	SongID     int
	ArtistName *string
	RoleName   *string
}
