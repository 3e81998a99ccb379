package main

import (
	"flag"
	"net/http"
	"time"

	sentryio "github.com/getsentry/sentry-go"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vpnhouse/songbook/internal/authorizer"
	"github.com/vpnhouse/songbook/internal/catalog"
	"github.com/vpnhouse/songbook/internal/dynamo"
	"github.com/vpnhouse/songbook/internal/httpapi"
	"github.com/vpnhouse/songbook/internal/identity"
	"github.com/vpnhouse/songbook/internal/runtime"
	"github.com/vpnhouse/songbook/internal/settings"
	"github.com/vpnhouse/songbook/internal/storage"
	"github.com/vpnhouse/songbook/internal/translator"
	"github.com/vpnhouse/songbook/pkg/control"
	"github.com/vpnhouse/songbook/pkg/rapidoc"
	"github.com/vpnhouse/songbook/pkg/sentry"
	"github.com/vpnhouse/songbook/pkg/version"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"github.com/vpnhouse/songbook/pkg/xhttp"
	"go.uber.org/zap"
)

func initServices(runtime *runtime.SongbookRuntime) error {
	cfg := runtime.Settings
	zap.L().Info("starting songbook",
		zap.String("version", version.GetVersion()),
		zap.String("backend", cfg.Catalog.Backend))
	if err := sentry.ConfigureGlobal(cfg.Sentry, version.GetVersion()); err != nil {
		return err
	}

	awsSession, err := xaws.NewSession(cfg.AWS)
	if err != nil {
		return err
	}

	// Initialize catalog storage
	var store catalog.Store
	switch cfg.Catalog.Backend {
	case settings.BackendDynamoDB:
		store = dynamo.NewWithSession(awsSession, dynamo.Tables{
			Songs:   cfg.Catalog.SongsTable,
			Artists: cfg.Catalog.ArtistsTable,
		})
	default:
		store, err = storage.New(cfg.Catalog.SQLitePath)
		if err != nil {
			return err
		}
	}
	runtime.Services.RegisterService("storage", store)

	var titleTranslator catalog.Translator = translator.Noop{}
	if cfg.Translation.Enabled {
		titleTranslator = translator.NewWithSession(awsSession)
	}

	songs := catalog.New(store, titleTranslator)
	runtime.Services.RegisterService("catalog", songs)

	keys := authorizer.NewKeySet(
		cfg.Auth.KeySetURL(cfg.AWS.Region),
		authorizer.WithHTTPClient(&http.Client{Timeout: cfg.Auth.KeyFetchTimeout.Value()}),
		authorizer.WithMinRefreshInterval(cfg.Auth.KeyRefreshInterval.Value()),
	)
	cookieAuthorizer, err := authorizer.New(cfg.AuthorizerConfig(), keys)
	if err != nil {
		return err
	}
	runtime.Services.RegisterService("authorizer", cookieAuthorizer)

	users := identity.NewWithSession(awsSession, cfg.Auth.ClientID)

	// Prepare songbook HTTP API
	songbookAPI := httpapi.NewSongbookHandlers(runtime, songs, users, cookieAuthorizer, cfg.Auth.MethodARNPrefix)
	runtime.Services.RegisterService("api", songbookAPI)

	opts := []xhttp.Option{
		xhttp.WithLogger(),
		xhttp.WithTimeouts(cfg.HTTP.ReadTimeout.Value(), cfg.HTTP.WriteTimeout.Value()),
	}
	if cfg.HTTP.Prometheus {
		opts = append(opts, xhttp.WithMetrics())
	}
	if cfg.HTTP.CORS {
		opts = append(opts, xhttp.WithCORS())
	}

	// register handlers of all modules
	hs := xhttp.New(opts...)
	songbookAPI.RegisterHandlers(hs.Router())
	if cfg.HTTP.Rapidoc {
		rapidoc.RegisterHandlers(hs.Router())
	}
	hs.Router().Handle("/health", xhttp.NewHealthCheck(func() error {
		if !store.Running() {
			return xerror.EUnavailable("catalog storage is down", nil)
		}
		return nil
	}))

	// Startup HTTP API
	if err := hs.Run(cfg.HTTP.ListenAddr); err != nil {
		return err
	}
	runtime.Services.RegisterService("httpServer", hs)

	return nil
}

var cfgDirFlag = flag.String("cfg", "", "path to the configuration directory, leave empty for default")

func main() {
	defer sentryio.Flush(2 * time.Second)
	flag.Parse()

	staticConf, err := settings.LoadStatic(*cfgDirFlag)
	if err != nil {
		panic(err)
	}

	r := runtime.New(staticConf, initServices)
	control.Exec(r)
}
