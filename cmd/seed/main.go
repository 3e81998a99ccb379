package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
	"github.com/vpnhouse/songbook/internal/catalog"
	"github.com/vpnhouse/songbook/internal/dynamo"
	"github.com/vpnhouse/songbook/internal/settings"
	"github.com/vpnhouse/songbook/internal/storage"
	"github.com/vpnhouse/songbook/internal/translator"
	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/control"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	cfgDirFlag  = flag.String("cfg", "", "path to the configuration directory, leave empty for default")
	songsFlag   = flag.String("songs", "songs.json", "path to the JSON array of songs")
	artistsFlag = flag.String("artists", "", "path to the JSON array of song artists, optional")
	timeoutFlag = flag.Duration("timeout", 5*time.Minute, "seeding deadline")
)

func readJSON(fs afero.Fs, path string, v interface{}) error {
	bs, err := afero.ReadFile(fs, path)
	if err != nil {
		return xerror.EInternalError("failed to read "+path, err)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return xerror.EInvalidArgument("failed to parse "+path, err)
	}
	return nil
}

func openStore(cfg *settings.Config) (catalog.Store, error) {
	if cfg.Catalog.Backend != settings.BackendDynamoDB {
		return storage.New(cfg.Catalog.SQLitePath)
	}

	sess, err := xaws.NewSession(cfg.AWS)
	if err != nil {
		return nil, err
	}
	return dynamo.NewWithSession(sess, dynamo.Tables{
		Songs:   cfg.Catalog.SongsTable,
		Artists: cfg.Catalog.ArtistsTable,
	}), nil
}

func run() error {
	cfg, err := settings.LoadStatic(*cfgDirFlag)
	if err != nil {
		return err
	}
	control.InitLogger(cfg.LogLevel)

	fs := afero.NewOsFs()
	var songs []types.Song
	if err := readJSON(fs, *songsFlag, &songs); err != nil {
		return err
	}
	var artists []types.SongArtist
	if len(*artistsFlag) > 0 {
		if err := readJSON(fs, *artistsFlag, &artists); err != nil {
			return err
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	return catalog.New(store, translator.Noop{}).Seed(ctx, songs, artists)
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		for _, e := range multierr.Errors(err) {
			zap.L().Error("seed failed", zap.Error(e))
		}
		os.Exit(1)
	}
}
