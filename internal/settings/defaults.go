package settings

const (
	DefaultListenAddr         = ":8080"
	DefaultRegion             = "eu-west-1"
	DefaultCookieName         = "token"
	DefaultKeyRefreshInterval = "5m"
	DefaultKeyFetchTimeout    = "5s"
	DefaultHTTPTimeout        = "30s"
	DefaultSongsTable         = "Songs"
	DefaultArtistsTable       = "SongArtists"

	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Environment variables injected by the deployment, they take precedence over the config file.
const (
	EnvUserPoolID      = "USER_POOL_ID"
	EnvClientID        = "CLIENT_ID"
	EnvRegion          = "REGION"
	EnvTableName       = "TABLE_NAME"
	EnvArtistTableName = "ARTIST_TABLE_NAME"
)
