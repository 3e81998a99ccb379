// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package settings

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vpnhouse/songbook/internal/authorizer"
	"github.com/vpnhouse/songbook/pkg/human"
	"github.com/vpnhouse/songbook/pkg/sentry"
	"github.com/vpnhouse/songbook/pkg/validator"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir = "/opt/songbook/"
	configFileName   = "config.yaml"
)

type Config struct {
	LogLevel    string            `yaml:"log_level"`
	HTTP        HttpConfig        `yaml:"http"`
	AWS         xaws.Config       `yaml:"aws"`
	Auth        AuthConfig        `yaml:"auth"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Translation TranslationConfig `yaml:"translation"`

	// optional configuration
	Sentry *sentry.Config `yaml:"sentry,omitempty"`

	// path to the config file, or default path in case of safe defaults.
	path string
	fs   afero.Fs

	// mu guards RW access to the Config
	mu sync.RWMutex
}

type HttpConfig struct {
	// ListenAddr for HTTP server, default: ":8080"
	ListenAddr string `yaml:"listen_addr" valid:"listen_addr,required"`
	// CORS enables corresponding middleware for the local development
	CORS bool `yaml:"cors"`
	// Enable prometheus metrics on "/metrics" path
	Prometheus bool `yaml:"prometheus"`
	// Rapidoc serves the API documentation on "/rapidoc/"
	Rapidoc      bool           `yaml:"rapidoc"`
	ReadTimeout  human.Interval `yaml:"read_timeout"`
	WriteTimeout human.Interval `yaml:"write_timeout"`
}

type AuthConfig struct {
	// Overridden by USER_POOL_ID
	UserPoolID string `yaml:"user_pool_id" valid:"pool_id"`
	// App client used to sign users in, overridden by CLIENT_ID
	ClientID   string `yaml:"client_id"`
	CookieName string `yaml:"cookie_name"`
	// JWKSURL overrides the user pool key set location
	JWKSURL string `yaml:"jwks_url,omitempty" valid:"url"`
	// Issuer overrides the expected token issuer, "-" disables the check
	Issuer string `yaml:"issuer,omitempty"`
	// KeyRefreshInterval limits refetches of the key set caused by unknown key ids
	KeyRefreshInterval human.Interval `yaml:"key_refresh_interval"`
	KeyFetchTimeout    human.Interval `yaml:"key_fetch_timeout"`
	// MethodARNPrefix is "arn:aws:execute-api:<region>:<account>:<api-id>/<stage>"
	MethodARNPrefix string `yaml:"method_arn_prefix" valid:"execute_api_arn"`
}

func (a AuthConfig) KeySetURL(region string) string {
	if len(a.JWKSURL) > 0 {
		return a.JWKSURL
	}
	return authorizer.KeySetURL(a.UserPoolID, region)
}

type CatalogConfig struct {
	Backend    string `yaml:"backend" valid:"in(sqlite|dynamodb)"`
	SQLitePath string `yaml:"sqlite_path" valid:"path"`
	// Overridden by TABLE_NAME
	SongsTable string `yaml:"songs_table"`
	// Overridden by ARTIST_TABLE_NAME
	ArtistsTable string `yaml:"artists_table"`
}

type TranslationConfig struct {
	Enabled bool `yaml:"enabled"`
}

func (s *Config) AuthorizerConfig() authorizer.Config {
	return authorizer.Config{
		PoolID:     s.Auth.UserPoolID,
		Region:     s.AWS.Region,
		CookieName: s.Auth.CookieName,
		Issuer:     s.Auth.Issuer,
	}
}

func LoadStatic(configDir string) (*Config, error) {
	return staticConfigFromFS(afero.NewOsFs(), configDir, os.LookupEnv)
}

func staticConfigFromFS(fs afero.Fs, configDir string, lookupEnv func(string) (string, bool)) (*Config, error) {
	if len(configDir) == 0 {
		configDir = defaultConfigDir
	}

	var c *Config
	pathToStatic := filepath.Join(configDir, configFileName)
	_, err := fs.Stat(pathToStatic)
	switch {
	case os.IsNotExist(err):
		zap.L().Warn("no static config file, using safe defaults", zap.String("path", pathToStatic))
		c = safeDefaults(configDir)
	case err == nil:
		c, err = loadStaticConfig(fs, pathToStatic)
		if err != nil {
			return nil, err
		}
	default:
		return nil, xerror.EInternalError("failed to stat the static config path", err, zap.String("path", pathToStatic))
	}

	c.fs = fs
	c.applyEnv(lookupEnv)

	if err := validator.ValidateStruct(c); err != nil {
		return nil, xerror.EInvalidConfiguration("config validation failed", "config", err)
	}

	// do extra validation of cross-related fields
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func loadStaticConfig(fs afero.Fs, path string) (*Config, error) {
	fd, err := fs.Open(path)
	if err != nil {
		return nil, xerror.EInternalError("failed to open config file "+path, err)
	}

	defer fd.Close()

	c := safeDefaults(filepath.Dir(path))
	// an empty document keeps the defaults
	if err := yaml.NewDecoder(fd).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, xerror.EInternalError("failed to unmarshal config", err)
	}

	c.path = path
	return c, nil
}

func (s *Config) applyEnv(lookupEnv func(string) (string, bool)) {
	overrides := []struct {
		name  string
		field *string
	}{
		{EnvUserPoolID, &s.Auth.UserPoolID},
		{EnvClientID, &s.Auth.ClientID},
		{EnvRegion, &s.AWS.Region},
		{EnvTableName, &s.Catalog.SongsTable},
		{EnvArtistTableName, &s.Catalog.ArtistsTable},
	}

	for _, o := range overrides {
		if v, ok := lookupEnv(o.name); ok && len(v) > 0 {
			zap.L().Debug("config value overridden from environment", zap.String("name", o.name))
			*o.field = v
		}
	}
}

// validate validates dependent fields, prevents from
// logical errors in configurations.
func (s *Config) validate() error {
	if len(s.Auth.UserPoolID) == 0 {
		return xerror.EInvalidConfiguration("auth.user_pool_id is required", "auth.user_pool_id", nil)
	}
	if len(s.AWS.Region) == 0 {
		return xerror.EInvalidConfiguration("aws.region is required", "aws.region", nil)
	}

	switch s.Catalog.Backend {
	case BackendSQLite:
		if len(s.Catalog.SQLitePath) == 0 {
			return xerror.EInvalidConfiguration("catalog.sqlite_path is required", "catalog.sqlite_path", nil)
		}
	case BackendDynamoDB:
		if len(s.Catalog.SongsTable) == 0 || len(s.Catalog.ArtistsTable) == 0 {
			return xerror.EInvalidConfiguration("catalog tables must be set for the dynamodb backend", "catalog.songs_table", nil)
		}
	}

	if len(s.Auth.CookieName) == 0 {
		s.Auth.CookieName = DefaultCookieName
	}
	if s.Auth.KeyFetchTimeout.Value() <= 0 {
		s.Auth.KeyFetchTimeout = human.MustParseInterval(DefaultKeyFetchTimeout)
	}
	if s.Auth.KeyRefreshInterval.Value() <= 0 {
		s.Auth.KeyRefreshInterval = human.MustParseInterval(DefaultKeyRefreshInterval)
	}

	return nil
}

// safeDefaults provides safe static config with paths started with the rootDir
func safeDefaults(rootDir string) *Config {
	return &Config{
		path:     filepath.Join(rootDir, configFileName),
		LogLevel: "debug",
		HTTP: HttpConfig{
			ListenAddr:   DefaultListenAddr,
			Prometheus:   true,
			ReadTimeout:  human.MustParseInterval(DefaultHTTPTimeout),
			WriteTimeout: human.MustParseInterval(DefaultHTTPTimeout),
		},
		AWS: xaws.Config{
			Region: DefaultRegion,
		},
		Auth: AuthConfig{
			CookieName:         DefaultCookieName,
			KeyRefreshInterval: human.MustParseInterval(DefaultKeyRefreshInterval),
			KeyFetchTimeout:    human.MustParseInterval(DefaultKeyFetchTimeout),
		},
		Catalog: CatalogConfig{
			Backend:      BackendSQLite,
			SQLitePath:   filepath.Join(rootDir, "songbook.sqlite3"),
			SongsTable:   DefaultSongsTable,
			ArtistsTable: DefaultArtistsTable,
		},
	}
}

// SetLogLevel changes the configured log level and persists the config.
func (s *Config) SetLogLevel(level string) error {
	s.mu.Lock()
	s.LogLevel = level
	s.mu.Unlock()

	return s.Flush()
}

// Flush writes the effective configuration back to its file.
func (s *Config) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, err := yaml.Marshal(s)
	if err != nil {
		return xerror.EInternalError("failed to marshal config", err)
	}

	fs := s.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	data := append([]byte("# WARNING\n# This file is managed automatically.\n# Changes may by overridden.\n\n"), bs...)
	if err := afero.WriteFile(fs, s.path, data, 0600); err != nil {
		return xerror.WInternalError("config", "failed to write config", err, zap.String("path", s.path))
	}
	return nil
}
