// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package runtime

import (
	"github.com/vpnhouse/songbook/internal/settings"
	"github.com/vpnhouse/songbook/pkg/control"
	"go.uber.org/zap"
)

type Flags struct {
	RestartRequired bool
}

type ServicesInitFunc func(runtime *SongbookRuntime) error

type SongbookRuntime struct {
	SetLogLevel control.ChangeLevelFunc
	Events      *control.EventManager
	Services    *control.ServiceMap
	Settings    *settings.Config
	Flags       Flags
	starter     ServicesInitFunc
}

func (runtime *SongbookRuntime) EventChannel() chan control.Event {
	return runtime.Events.EventChannel()
}

func New(static *settings.Config, starter ServicesInitFunc) *SongbookRuntime {
	updateLogLevelFn := control.InitLogger(static.LogLevel)
	return &SongbookRuntime{
		Settings:    static,
		SetLogLevel: updateLogLevelFn,
		Events:      control.NewEventManager(),
		Services:    control.NewServiceMap(),
		starter:     starter,
	}
}

func (runtime *SongbookRuntime) ProcessEvents(event control.Event) {
	switch event.Type {
	case control.EventSetLogLevel:
		level, _ := event.Info.(string)
		_ = runtime.SetLogLevel(level)
	case control.EventRestart:
		runtime.Flags.RestartRequired = true
		if err := runtime.Restart(); err != nil {
			zap.L().Fatal("service restart failed", zap.Error(err))
		}
	default:
		zap.L().Error("ignoring unsupported event type", zap.Int("type", event.Type))
	}
}

func (runtime *SongbookRuntime) Start() error {
	return runtime.starter(runtime)
}

func (runtime *SongbookRuntime) Stop() error {
	return runtime.Services.Shutdown()
}

func (runtime *SongbookRuntime) Restart() error {
	// Shutdown services
	err := runtime.Stop()
	if err != nil {
		return err
	}

	// Clear restart-required flag
	runtime.Flags.RestartRequired = false

	// Start new services
	return runtime.Start()
}
