// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package control

import (
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ChangeLevelFunc func(string) error

// InitLogger replaces the global zap logger and returns a function
// that changes its level at runtime.
func InitLogger(initialLevel string) ChangeLevelFunc {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(initialLevel)); err != nil {
		panic("failed to parse log level: " + err.Error())
	}

	var z *zap.Logger
	if logLevel.Level() == zapcore.DebugLevel {
		z = zapDevelopment(logLevel)
	} else {
		z = zapProduction(logLevel)
	}

	zap.ReplaceGlobals(z)
	return func(level string) error {
		err := logLevel.UnmarshalText([]byte(level))
		if err != nil {
			return xerror.EInvalidArgument("invalid logging level", err, zap.String("level", level))
		}

		return nil
	}
}

func zapProduction(lvl zap.AtomicLevel) *zap.Logger {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = lvl
	z, err := loggerConfig.Build()
	if err != nil {
		panic(err)
	}

	return z
}

func zapDevelopment(lvl zap.AtomicLevel) *zap.Logger {
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	loggerConfig := zap.Config{
		Level:            lvl,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		Encoding:         "console",
		EncoderConfig:    encoder,
	}

	z, err := loggerConfig.Build()
	if err != nil {
		panic(err)
	}

	return z
}
