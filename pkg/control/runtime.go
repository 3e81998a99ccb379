// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package control

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

type Runtime interface {
	Start() error
	Stop() error
	Restart() error
	EventChannel() chan Event
	ProcessEvents(Event)
}

// Exec starts the runtime and blocks until SIGINT or SIGTERM.
// SIGHUP restarts all services.
func Exec(r Runtime) {
	// Shutdown services whenever application terminates
	defer func(r Runtime) {
		if err := r.Stop(); err != nil {
			zap.L().Fatal("can't stop services", zap.Error(err))
		}
	}(r)

	if err := r.Start(); err != nil {
		zap.L().Fatal("can't start services", zap.Error(err))
	}

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	eventChannel := r.EventChannel()
	for {
		select {
		case sig := <-sigChannel:
			zap.L().Info("signal received", zap.String("signal", sig.String()))
			if sig != syscall.SIGHUP {
				return
			}

			if err := r.Restart(); err != nil {
				// we can't guarantee that services are working normally.
				zap.L().Fatal("can't restart services", zap.Error(err))
			}
		case event := <-eventChannel:
			r.ProcessEvents(event)
		}
	}
}
