// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xstorage

import (
	"embed"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// MigrationsRoot is the directory inside the embedded FS
// holding the *.sql migration files.
const MigrationsRoot = "db/migrations"

// NewSqlite3 opens the database at path and applies all pending migrations.
// Use ":memory:" for an ephemeral database.
func NewSqlite3(path string, migrations embed.FS) (*sqlx.DB, error) {
	sqlDB, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, xerror.EStorageError("can't open database", err, zap.String("path", path))
	}

	if path == ":memory:" {
		// every new connection to :memory: is a new empty database
		sqlDB.SetMaxOpenConns(1)
	}

	migrationSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       MigrationsRoot,
	}

	n, err := migrate.Exec(sqlDB.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		_ = sqlDB.Close()
		return nil, xerror.EStorageError("can't perform migration", err)
	}

	zap.L().Debug("database is ready", zap.String("path", path), zap.Int("migrations_applied", n))
	return sqlDB, nil
}
